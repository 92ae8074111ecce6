package imaging

import (
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
)

// roundingBias makes bild's convolution round to the nearest level instead
// of truncating, so a flat plane keeps its value through every pass.
const roundingBias = 0.5

// gaussian5 is the standard 5x5 Gaussian kernel with sigma ≈ 1.4:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
var gaussian5 = &convolution.Kernel{
	Matrix: []float64{
		1, 4, 7, 4, 1,
		4, 16, 26, 16, 4,
		7, 26, 41, 26, 7,
		4, 16, 26, 16, 4,
		1, 4, 7, 4, 1,
	},
	Width:  5,
	Height: 5,
}

// Grayscale converts an image to a single 8-bit luminance channel with its
// origin at (0,0).
func Grayscale(img image.Image) *image.Gray {
	return lumaPlane(effect.Grayscale(img))
}

// GaussianBlur5 applies a 5x5 Gaussian blur to reduce noise before thresholding.
// Border pixels use clamped (replicated) edge values.
func GaussianBlur5(src *image.Gray) *image.Gray {
	opts := convolution.Options{Bias: roundingBias, KeepAlpha: true}
	return lumaPlane(convolution.Convolve(originGray(src), gaussian5.Normalized(), &opts))
}

// LocalMean returns the Gaussian-weighted neighbourhood mean of every pixel.
// radius follows bild's blur.Gaussian convention: kernel length
// ceil(2*radius+1) and weights exp(-x²/(4·radius)).
func LocalMean(src *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return originGray(src)
	}

	length := int(math.Ceil(2*radius + 1))
	k := convolution.NewKernel(length, 1)
	for i, x := 0, -radius; i < length; i, x = i+1, x+1 {
		k.Matrix[i] = math.Exp(-(x * x / 4 / radius))
	}
	norm := k.Normalized()

	// separable: rows then columns
	opts := convolution.Options{Bias: roundingBias, KeepAlpha: true}
	out := convolution.Convolve(originGray(src), norm, &opts)
	out = convolution.Convolve(out, norm.Transposed(), &opts)
	return lumaPlane(out)
}

// lumaPlane copies the red channel of a grey RGBA image (R=G=B, as bild
// returns them) into an *image.Gray with origin (0,0).
func lumaPlane(img *image.RGBA) *image.Gray {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			dst[x] = src[x*4]
		}
	}
	return out
}

// originGray returns img re-based so its bounds start at (0,0). The input is
// returned unchanged when it already does.
func originGray(img *image.Gray) *image.Gray {
	if img.Rect.Min == (image.Point{}) {
		return img
	}
	out := image.NewGray(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	draw.Draw(out, out.Rect, img, img.Rect.Min, draw.Src)
	return out
}
