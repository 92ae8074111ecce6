//go:build gocv

package imaging

import (
	"image"
	"log"

	"gocv.io/x/gocv"
)

// MorphologyBackend names the morphology implementation compiled into the binary.
const MorphologyBackend = "opencv"

func dilate(m *Mask, radius int) *Mask {
	return morph(m, radius, gocv.Dilate, bildDilate)
}

func erode(m *Mask, radius int) *Mask {
	return morph(m, radius, gocv.Erode, bildErode)
}

// morph applies one OpenCV dilation or erosion with a MORPH_RECT kernel.
func morph(m *Mask, radius int, op func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat), fallback func(*Mask, int) *Mask) *Mask {
	if radius <= 0 || m.Area() == 0 {
		return m.Clone()
	}

	src, err := maskMat(m)
	if err != nil {
		log.Printf("gocv mat creation failed, falling back to bild: %v", err)
		return fallback(m, radius)
	}
	defer src.Close()

	side := 2*radius + 1
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: side, Y: side})
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	op(src, &dst, kernel)

	return maskFromMat(dst, m.Width, m.Height)
}

// maskMat copies m into an 8-bit single-channel Mat with foreground at 255.
func maskMat(m *Mask) (gocv.Mat, error) {
	buf := make([]byte, len(m.Pix))
	for i, v := range m.Pix {
		if v {
			buf[i] = 255
		}
	}
	return gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8U, buf)
}

// maskFromMat marks every non-zero pixel of an 8-bit single-channel Mat.
func maskFromMat(mat gocv.Mat, width, height int) *Mask {
	out := NewMask(width, height)
	for i, v := range mat.ToBytes() {
		if i >= len(out.Pix) {
			break
		}
		out.Pix[i] = v != 0
	}
	return out
}
