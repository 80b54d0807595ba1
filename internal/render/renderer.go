package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"

	"github.com/park285/cheese-chess/internal/chess"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const DefaultSquareSize = 80

// Options carries the read-only overlays drawn on top of the board.
type Options struct {
	Selected     *chess.Square
	Destinations chess.SquareSet
	LastMove     *chess.Move
	Coordinates  bool
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *chess.Board, opts Options) ([]byte, error)
}

type Renderer struct {
	squareSize int
}

func New(squareSize int) *Renderer {
	if squareSize < 16 {
		squareSize = DefaultSquareSize
	}
	return &Renderer{squareSize: squareSize}
}

func (r *Renderer) SquareSize() int { return r.squareSize }

func (r *Renderer) margin(opts Options) int {
	if !opts.Coordinates {
		return 0
	}
	return r.squareSize / 3
}

// Render draws the board into a new image. board is never modified.
func (r *Renderer) Render(ctx context.Context, board *chess.Board, opts Options) (*image.RGBA, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	margin := r.margin(opts)
	boardSize := r.squareSize * chess.Size
	origin := image.Point{X: margin, Y: 0}
	img := image.NewRGBA(image.Rect(0, 0, boardSize+margin, boardSize+margin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(marginColor), image.Point{}, imagedraw.Src)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	drawSquares(img, r.squareSize, origin)
	if opts.LastMove != nil {
		drawSquareOverlay(img, opts.LastMove.From, r.squareSize, origin, lastMoveColor)
		drawSquareOverlay(img, opts.LastMove.To, r.squareSize, origin, lastMoveColor)
	}
	if opts.Selected != nil && opts.Selected.Valid() {
		fillSquare(img, *opts.Selected, r.squareSize, origin, highlightColor)
	}
	if err := drawPieces(ctx, img, board, r.squareSize, origin); err != nil {
		return nil, err
	}
	for _, sq := range opts.Destinations.Sorted() {
		rect := squareRect(sq, r.squareSize, origin)
		center := image.Point{X: rect.Min.X + r.squareSize/2, Y: rect.Min.Y + r.squareSize/2}
		drawDisc(img, center, r.squareSize/5, highlightColor)
	}
	if opts.Coordinates {
		if err := drawCoordinates(img, r.squareSize, origin, margin); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func (r *Renderer) RenderPNG(ctx context.Context, board *chess.Board, opts Options) ([]byte, error) {
	img, err := r.Render(ctx, board, opts)
	if err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

var (
	lightSquare         = color.RGBA{240, 217, 181, 255}
	darkSquare          = color.RGBA{181, 136, 99, 255}
	highlightColor      = color.RGBA{186, 202, 68, 255}
	lastMoveColor       = color.NRGBA{R: 246, G: 246, B: 105, A: 90}
	marginColor         = color.RGBA{48, 46, 43, 255}
	coordinateTextColor = color.RGBA{220, 220, 220, 255}
)

func drawSquares(dst imagedraw.Image, squareSize int, origin image.Point) {
	for row := 0; row < chess.Size; row++ {
		for col := 0; col < chess.Size; col++ {
			fillSquare(dst, chess.Sq(row, col), squareSize, origin, squareColor(row, col))
		}
	}
}

func fillSquare(dst imagedraw.Image, sq chess.Square, squareSize int, origin image.Point, clr color.Color) {
	imagedraw.Draw(dst, squareRect(sq, squareSize, origin), image.NewUniform(clr), image.Point{}, imagedraw.Src)
}

func drawSquareOverlay(img *image.RGBA, sq chess.Square, squareSize int, origin image.Point, clr color.Color) {
	imagedraw.Draw(img, squareRect(sq, squareSize, origin), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawPieces(ctx context.Context, dst imagedraw.Image, board *chess.Board, squareSize int, origin image.Point) error {
	for row := 0; row < chess.Size; row++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for col := 0; col < chess.Size; col++ {
			sq := chess.Sq(row, col)
			piece := board.At(sq)
			if piece.IsEmpty() {
				continue
			}
			img, err := renderPieceImage(piece, squareSize)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, squareRect(sq, squareSize, origin), img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func drawCoordinates(dst imagedraw.Image, squareSize int, origin image.Point, margin int) error {
	face, err := captionFace(squareSize)
	if err != nil {
		return err
	}
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + chess.Size*squareSize

	for i := 0; i < chess.Size; i++ {
		rankCenter := origin.Y + i*squareSize + squareSize/2
		drawCenteredText(drawer, string(rune('8'-i)), origin.X-margin/2, rankCenter+ascent/2)
		fileCenter := origin.X + i*squareSize + squareSize/2
		drawCenteredText(drawer, string(rune('a'+i)), fileCenter, boardEndY+(margin+ascent)/2)
	}
	return nil
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	if radius <= 0 {
		img.Set(center.X, center.Y, clr)
		return
	}
	rSquared := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > rSquared {
				continue
			}
			if p := (image.Point{X: center.X + x, Y: center.Y + y}); p.In(img.Bounds()) {
				img.Set(p.X, p.Y, clr)
			}
		}
	}
}

func squareRect(sq chess.Square, squareSize int, origin image.Point) image.Rectangle {
	x := origin.X + sq.Col*squareSize
	y := origin.Y + sq.Row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

// top-left square (a8) is light
func squareColor(row, col int) color.Color {
	if (row+col)%2 == 0 {
		return lightSquare
	}
	return darkSquare
}
