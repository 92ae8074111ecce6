package imaging

import "github.com/anthonynsimon/bild/effect"

// Morphology uses a square structuring element of side 2*radius+1, the
// window bild's effect.Dilate/Erode and OpenCV's MORPH_RECT share. Pixels
// beyond the border take the value of the nearest edge pixel, so marks
// touching the edge are not eaten away by erosion.

// Close fills small gaps inside marks: iterations dilations followed by the
// same number of erosions.
func Close(m *Mask, radius, iterations int) *Mask {
	out := m
	for i := 0; i < iterations; i++ {
		out = dilate(out, radius)
	}
	for i := 0; i < iterations; i++ {
		out = erode(out, radius)
	}
	return out
}

// Open removes speckle smaller than the element: erosions then dilations.
func Open(m *Mask, radius, iterations int) *Mask {
	out := m
	for i := 0; i < iterations; i++ {
		out = erode(out, radius)
	}
	for i := 0; i < iterations; i++ {
		out = dilate(out, radius)
	}
	return out
}

// Dilate grows foreground by radius pixels in every direction.
func Dilate(m *Mask, radius int) *Mask {
	return dilate(m, radius)
}

// Erode keeps a pixel only when its whole (2*radius+1)² window is foreground.
func Erode(m *Mask, radius int) *Mask {
	return erode(m, radius)
}

func bildDilate(m *Mask, radius int) *Mask {
	if radius <= 0 || m.Area() == 0 {
		return m.Clone()
	}
	return maskFromRGBA(effect.Dilate(m.Gray(), float64(radius)))
}

func bildErode(m *Mask, radius int) *Mask {
	if radius <= 0 || m.Area() == 0 {
		return m.Clone()
	}
	return maskFromRGBA(effect.Erode(m.Gray(), float64(radius)))
}
