package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
)

type pieceCacheKey struct {
	piece chess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

// renderPieceImage rasterizes a disc for the piece's side and stamps the
// piece letter on it. Results are cached per piece and size.
func renderPieceImage(piece chess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	style := stylesFor(piece.Color)
	icon, err := oksvg.ReadIconStream(bytes.NewReader(sanitizeSVG(discSVG(style))))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	face, err := letterFace(size)
	if err != nil {
		return nil, err
	}
	drawer := &font.Drawer{Dst: img, Face: face, Src: image.NewUniform(style.text)}
	ascent := face.Metrics().Ascent.Ceil()
	drawCenteredText(drawer, string(piece.Kind.Letter()), size/2, size/2+ascent/2-1)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}

type pieceStyle struct {
	fill, stroke string
	text         color.Color
}

func stylesFor(c chess.Color) pieceStyle {
	if c == chess.White {
		return pieceStyle{fill: "#f8f8f8", stroke: "#1e1e1e", text: color.RGBA{30, 30, 30, 255}}
	}
	return pieceStyle{fill: "#262626", stroke: "#f0f0f0", text: color.RGBA{245, 245, 245, 255}}
}
