package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/segment"
	"gonum.org/v1/gonum/floats"
)

// ThresholdInput carries the planes a threshold strategy may read.
type ThresholdInput struct {
	// Color is the (scaled) source image.
	Color image.Image
	// Gray is the denoised luminance plane with origin (0,0).
	Gray *image.Gray
}

// ThresholdStrategy produces a foreground mask from the input planes.
// Strategies are independent; the preprocessor unions their outputs.
type ThresholdStrategy func(in ThresholdInput) *Mask

// Strategy names accepted by StrategyByName.
const (
	StrategyAdaptive = "adaptive"
	StrategyOtsu     = "otsu"
	StrategyFixed    = "fixed"
	StrategyInk      = "ink"
)

// DefaultStrategies is the order used when no strategies are configured.
var DefaultStrategies = []string{StrategyAdaptive, StrategyOtsu, StrategyFixed, StrategyInk}

// StrategyByName resolves a configured strategy name to its implementation.
func StrategyByName(name string, opts PreprocessOptions) (ThresholdStrategy, error) {
	switch name {
	case StrategyAdaptive:
		return AdaptiveThreshold(opts.AdaptiveRadius, opts.AdaptiveOffset), nil
	case StrategyOtsu:
		return OtsuThreshold(), nil
	case StrategyFixed:
		return FixedThreshold(opts.FixedCutoff), nil
	case StrategyInk:
		return InkColorThreshold(opts.Ink), nil
	default:
		return nil, fmt.Errorf("unknown threshold strategy: %s", name)
	}
}

// AdaptiveThreshold marks pixels that are at least offset levels darker than
// their Gaussian-weighted neighbourhood. Dark pixels in a uniformly dark area
// are not marked; the global strategies cover solid fills.
func AdaptiveThreshold(radius, offset float64) ThresholdStrategy {
	return func(in ThresholdInput) *Mask {
		gray := in.Gray
		mean := LocalMean(gray, radius)
		w, h := gray.Rect.Dx(), gray.Rect.Dy()
		m := NewMask(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := float64(gray.Pix[y*gray.Stride+x])
				if v <= float64(mean.Pix[y*mean.Stride+x])-offset {
					m.Pix[y*w+x] = true
				}
			}
		}
		return m
	}
}

// OtsuThreshold marks pixels at or below the level that maximises the
// between-class variance of the luminance histogram. A single-intensity
// plane yields an empty mask.
func OtsuThreshold() ThresholdStrategy {
	return func(in ThresholdInput) *Mask {
		return otsuMask(in.Gray)
	}
}

// FixedThreshold marks pixels at or below cutoff.
func FixedThreshold(cutoff uint8) ThresholdStrategy {
	return func(in ThresholdInput) *Mask {
		return darkMask(in.Gray, cutoff)
	}
}

// OtsuLevel computes Otsu's threshold for an 8-bit plane. Pixels <= level
// form the dark class. ok is false when the plane holds a single intensity.
func OtsuLevel(gray *image.Gray) (level uint8, ok bool) {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	if w*h == 0 {
		return 0, false
	}

	hist := make([]float64, 256)
	for y := 0; y < h; y++ {
		for _, v := range gray.Pix[y*gray.Stride : y*gray.Stride+w] {
			hist[v]++
		}
	}
	moments := make([]float64, 256)
	for i, c := range hist {
		moments[i] = float64(i) * c
	}
	weight := floats.CumSum(make([]float64, 256), hist)
	moment := floats.CumSum(make([]float64, 256), moments)
	total, sumAll := weight[255], moment[255]

	bestVar := -1.0
	for t := 0; t < 255; t++ {
		weightDark := weight[t]
		if weightDark == 0 {
			continue
		}
		weightLight := total - weightDark
		if weightLight == 0 {
			break
		}
		diff := moment[t]/weightDark - (sumAll-moment[t])/weightLight
		between := weightDark * weightLight * diff * diff
		if between > bestVar {
			bestVar = between
			level = uint8(t)
			ok = true
		}
	}
	return level, ok
}

// levelOtsuMask thresholds gray at its OtsuLevel.
func levelOtsuMask(gray *image.Gray) *Mask {
	level, ok := OtsuLevel(gray)
	if !ok {
		return NewMask(gray.Rect.Dx(), gray.Rect.Dy())
	}
	return darkMask(gray, level)
}

// darkMask marks pixels at or below level using bild's segment.Threshold.
// bild ranks a grey pixel as 0.3R+0.6G+0.1B in floating point, which can
// truncate an exact grey value one level down, so a pixel exactly one level
// above the cutoff may also be marked.
func darkMask(gray *image.Gray, level uint8) *Mask {
	if level == 255 {
		m := NewMask(gray.Rect.Dx(), gray.Rect.Dy())
		for i := range m.Pix {
			m.Pix[i] = true
		}
		return m
	}
	return maskFromDark(segment.Threshold(gray, level+1))
}
