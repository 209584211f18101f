// Package imaging holds the pixel buffer produced by a render backend and
// the encoders that turn it into file bytes.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/h2non/filetype"

	"github.com/1F47E/go-iconreel/pkg/errs"
)

// JPEGQuality is fixed so that encoding stays deterministic.
const JPEGQuality = 90

type Format int

const (
	PNG Format = iota
	JPEG
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png", "":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return PNG, errs.Invalid("imaging", "unsupported file format %q", s)
}

// Extension is the file extension without a dot.
func (f Format) Extension() string {
	if f == JPEG {
		return "jpg"
	}
	return "png"
}

func (f Format) String() string {
	if f == JPEG {
		return "jpeg"
	}
	return "png"
}

// PixelBuffer is a width x height grid of non-premultiplied RGBA8 samples.
type PixelBuffer struct {
	*image.NRGBA
}

func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// FromImage copies any image into a fresh buffer anchored at 0,0.
func FromImage(img image.Image) *PixelBuffer {
	b := img.Bounds()
	buf := NewPixelBuffer(b.Dx(), b.Dy())
	draw.Draw(buf.NRGBA, buf.Bounds(), img, b.Min, draw.Src)
	return buf
}

// Width and Height are 0 for a nil or unallocated buffer.
func (p *PixelBuffer) Width() int {
	if p == nil || p.NRGBA == nil {
		return 0
	}
	return p.Bounds().Dx()
}

func (p *PixelBuffer) Height() int {
	if p == nil || p.NRGBA == nil {
		return 0
	}
	return p.Bounds().Dy()
}

// Fill sets every sample to c.
func (p *PixelBuffer) Fill(c color.NRGBA) {
	draw.Draw(p.NRGBA, p.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Equal compares dimensions and raw samples.
func (p *PixelBuffer) Equal(o *PixelBuffer) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Bounds().Size() != o.Bounds().Size() {
		return false
	}
	for y := 0; y < p.Height(); y++ {
		a := p.Pix[y*p.Stride : y*p.Stride+p.Width()*4]
		b := o.Pix[y*o.Stride : y*o.Stride+o.Width()*4]
		if !bytes.Equal(a, b) {
			return false
		}
	}
	return true
}

// HasTransparency reports whether any sample has alpha below 255.
func (p *PixelBuffer) HasTransparency() bool {
	for y := 0; y < p.Height(); y++ {
		row := p.Pix[y*p.Stride : y*p.Stride+p.Width()*4]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 0xff {
				return true
			}
		}
	}
	return false
}

// Encode compresses the buffer. PNG keeps alpha, JPEG drops it.
func Encode(buf *PixelBuffer, format Format) ([]byte, error) {
	if buf.Width() == 0 || buf.Height() == 0 {
		return nil, errs.Invalid("imaging: encode", "empty pixel buffer")
	}
	var out bytes.Buffer
	switch format {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(&out, buf.NRGBA); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case JPEG:
		if err := jpeg.Encode(&out, buf.NRGBA, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		return nil, errs.Invalid("imaging: encode", "unsupported format %d", format)
	}
	return out.Bytes(), nil
}

// Decode reads PNG or JPEG bytes back into a buffer.
func Decode(data []byte) (*PixelBuffer, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	var img image.Image
	switch format {
	case PNG:
		img, err = png.Decode(bytes.NewReader(data))
	case JPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return &PixelBuffer{nrgba}, nil
	}
	return FromImage(img), nil
}

// Sniff detects the image format from the leading magic bytes.
func Sniff(data []byte) (Format, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return PNG, fmt.Errorf("sniff: %w", err)
	}
	switch kind.Extension {
	case "png":
		return PNG, nil
	case "jpg":
		return JPEG, nil
	}
	return PNG, errs.Invalid("imaging: sniff", "not a png or jpeg image (%s)", kind.MIME.Value)
}
