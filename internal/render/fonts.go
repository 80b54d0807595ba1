package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontsOnce           sync.Once
	boldFont, plainFont *opentype.Font
	fontsErr            error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		boldFont, fontsErr = opentype.Parse(gobold.TTF)
		if fontsErr != nil {
			return
		}
		plainFont, fontsErr = opentype.Parse(goregular.TTF)
	})
	return fontsErr
}

// Faces hold glyph buffers and are not safe for concurrent use, so each
// render gets its own.
func letterFace(squareSize int) (font.Face, error) {
	return newFace(true, float64(squareSize)*0.42)
}

func captionFace(squareSize int) (font.Face, error) {
	return newFace(false, float64(squareSize)*0.2)
}

func newFace(bold bool, points float64) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	src := plainFont
	if bold {
		src = boldFont
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: points, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new font face: %w", err)
	}
	return f, nil
}
