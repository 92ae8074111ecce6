package imaging

import (
	"fmt"
	"image"
	"image/color"
)

// Mask is a binary image where true marks a foreground (ink) pixel.
//
// Pixels are stored row-major starting at (0,0); a mask always has its origin
// at the top-left regardless of the bounds of the image it was derived from.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMask creates an all-background mask of the given size.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At reports whether (x, y) is foreground. Coordinates outside the mask are background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set marks (x, y) as foreground or background. Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Area returns Width*Height.
func (m *Mask) Area() int {
	return m.Width * m.Height
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	out := &Mask{Width: m.Width, Height: m.Height, Pix: make([]bool, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// Union sets every pixel that is foreground in other as foreground in m.
func (m *Mask) Union(other *Mask) error {
	if other.Width != m.Width || other.Height != m.Height {
		return fmt.Errorf("mask size mismatch: %dx%d vs %dx%d", m.Width, m.Height, other.Width, other.Height)
	}
	for i, v := range other.Pix {
		if v {
			m.Pix[i] = true
		}
	}
	return nil
}

// Gray renders the mask as an 8-bit image with foreground at 255.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			img.Pix[(i/m.Width)*img.Stride+i%m.Width] = 255
		}
	}
	return img
}

// MaskFromGray thresholds a grayscale image: pixels strictly above level become foreground.
func MaskFromGray(img image.Image, level uint8) *Mask {
	bounds := img.Bounds()
	m := NewMask(bounds.Dx(), bounds.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			g := color.GrayModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.Gray)
			if g.Y > level {
				m.Pix[y*m.Width+x] = true
			}
		}
	}
	return m
}

// maskFromRGBA marks pixels whose red channel is above mid-grey. bild
// returns morphology results of a Gray() mask as RGBA with R=G=B.
func maskFromRGBA(img *image.RGBA) *Mask {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	m := NewMask(w, h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			m.Pix[y*w+x] = row[x*4] > 127
		}
	}
	return m
}

// maskFromDark marks the pixels a bild threshold turned black.
func maskFromDark(img *image.Gray) *Mask {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	m := NewMask(w, h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			m.Pix[y*w+x] = row[x] == 0
		}
	}
	return m
}
