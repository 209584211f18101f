package imaging

import "image/color"

// Solid returns a size x size buffer filled with c.
func Solid(size int, c color.NRGBA) *PixelBuffer {
	buf := NewPixelBuffer(size, size)
	buf.Fill(c)
	return buf
}

// Checkerboard alternates a and b in cells of cell pixels.
func Checkerboard(size, cell int, a, b color.NRGBA) *PixelBuffer {
	if cell <= 0 {
		cell = 1
	}
	buf := NewPixelBuffer(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				buf.SetNRGBA(x, y, a)
			} else {
				buf.SetNRGBA(x, y, b)
			}
		}
	}
	return buf
}
