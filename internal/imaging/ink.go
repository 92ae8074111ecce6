package imaging

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// InkRange is an HSV window selecting coloured (non-black) pen or pencil marks.
//
// Hue is in degrees (0-360). Saturation and value are fractions (0-1).
// A window whose HueMin is greater than HueMax wraps through 0° (e.g. red).
type InkRange struct {
	HueMin float64 `yaml:"hue_min" json:"hue_min"`
	HueMax float64 `yaml:"hue_max" json:"hue_max"`
	SatMin float64 `yaml:"sat_min" json:"sat_min"`
	ValMin float64 `yaml:"val_min" json:"val_min"`
}

// DefaultInkRange selects purple and blue ink.
func DefaultInkRange() InkRange {
	return InkRange{HueMin: 200, HueMax: 320, SatMin: 0.2, ValMin: 0.2}
}

// Contains reports whether an HSV triple falls inside the window.
func (r InkRange) Contains(h, s, v float64) bool {
	if s < r.SatMin || v < r.ValMin {
		return false
	}
	if r.HueMin <= r.HueMax {
		return h >= r.HueMin && h <= r.HueMax
	}
	return h >= r.HueMin || h <= r.HueMax
}

// InkColorThreshold marks pixels of the colour image whose HSV value lies in r.
func InkColorThreshold(r InkRange) ThresholdStrategy {
	return func(in ThresholdInput) *Mask {
		bounds := in.Color.Bounds()
		m := NewMask(bounds.Dx(), bounds.Dy())
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				c, ok := colorful.MakeColor(in.Color.At(x+bounds.Min.X, y+bounds.Min.Y))
				if !ok {
					// fully transparent
					continue
				}
				h, s, v := c.Hsv()
				if r.Contains(h, s, v) {
					m.Pix[y*m.Width+x] = true
				}
			}
		}
		return m
	}
}

// InkCoverage returns the fraction of pixels in img matched by r. It is used
// by the sheet info tool to hint whether coloured ink is present.
func InkCoverage(img image.Image, r InkRange) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}
	m := InkColorThreshold(r)(ThresholdInput{Color: img})
	return float64(m.Count()) / float64(m.Area())
}
