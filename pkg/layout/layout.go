// Package layout arranges sequence frames into a sprite sheet.
package layout

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/transform"

	"github.com/1F47E/go-iconreel/pkg/errs"
	"github.com/1F47E/go-iconreel/pkg/imaging"
)

// DefaultTileWidth matches the scale=100:-1 filter of the external encoder.
const DefaultTileWidth = 100

// Grid returns the sprite sheet size in tiles for n frames: 4 columns when
// n is even, 3 when odd. The rule is kept as is, 6 frames still get 4
// columns and an unfilled second row.
func Grid(n int) (width, height int) {
	if n <= 0 {
		return 0, 0
	}
	width = 3
	if n%2 == 0 {
		width = 4
	}
	height = (n + width - 1) / width
	return width, height
}

// FilterComplex is the ffmpeg -filter_complex value that tiles n frames.
func FilterComplex(n, tileWidth int) string {
	if tileWidth <= 0 {
		tileWidth = DefaultTileWidth
	}
	w, h := Grid(n)
	return fmt.Sprintf("scale=%d:-1,tile=%dx%d", tileWidth, w, h)
}

// Compose scales every frame to tileWidth (height keeps the aspect of the
// first frame) and tiles them row-major on a transparent canvas.
func Compose(frames []image.Image, tileWidth int) (*imaging.PixelBuffer, error) {
	if len(frames) == 0 {
		return nil, errs.Invalid("layout", "no frames to compose")
	}
	if tileWidth <= 0 {
		tileWidth = DefaultTileWidth
	}
	first := frames[0].Bounds()
	if first.Empty() {
		return nil, errs.Invalid("layout", "first frame is empty")
	}
	tileHeight := first.Dy() * tileWidth / first.Dx()
	if tileHeight < 1 {
		tileHeight = 1
	}

	cols, rows := Grid(len(frames))
	sheet := imaging.NewPixelBuffer(cols*tileWidth, rows*tileHeight)
	for i, frame := range frames {
		tile := transform.Resize(frame, tileWidth, tileHeight, transform.Linear)
		x := (i % cols) * tileWidth
		y := (i / cols) * tileHeight
		r := image.Rect(x, y, x+tileWidth, y+tileHeight)
		draw.Draw(sheet.NRGBA, r, tile, image.Point{}, draw.Src)
	}
	return sheet, nil
}
