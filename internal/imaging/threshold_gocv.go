//go:build gocv

package imaging

import (
	"image"
	"log"

	"gocv.io/x/gocv"
)

// otsuMask thresholds gray with OpenCV's THRESH_OTSU, inverted so dark
// pixels are foreground.
func otsuMask(gray *image.Gray) *Mask {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	if w*h == 0 {
		return NewMask(w, h)
	}

	buf := make([]byte, 0, w*h)
	for y := 0; y < h; y++ {
		buf = append(buf, gray.Pix[y*gray.Stride:y*gray.Stride+w]...)
	}
	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, buf)
	if err != nil {
		log.Printf("gocv mat creation failed, falling back to native Otsu: %v", err)
		return levelOtsuMask(gray)
	}
	defer src.Close()

	// OpenCV splits a flat plane anyway; treat it as having no marks
	minVal, maxVal, _, _ := gocv.MinMaxLoc(src)
	if minVal == maxVal {
		return NewMask(w, h)
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Threshold(src, &dst, 0, 255, gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)

	return maskFromMat(dst, w, h)
}
