package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// PreprocessOptions tunes the conversion from a raw sheet to a binary mask.
type PreprocessOptions struct {
	// MaxDimension caps the longer image side; larger images are scaled down
	// before any other work. Zero disables scaling. Images are never upscaled.
	MaxDimension int `yaml:"max_dimension" json:"max_dimension"`

	// Strategies lists the threshold strategies to union, in order.
	// Empty means DefaultStrategies.
	Strategies []string `yaml:"strategies" json:"strategies"`

	// AdaptiveRadius is the neighbourhood radius of the adaptive strategy.
	AdaptiveRadius float64 `yaml:"adaptive_radius" json:"adaptive_radius"`

	// AdaptiveOffset is how much darker than its neighbourhood a pixel must be.
	AdaptiveOffset float64 `yaml:"adaptive_offset" json:"adaptive_offset"`

	// FixedCutoff is the luminance at or below which the fixed strategy marks a pixel.
	FixedCutoff uint8 `yaml:"fixed_cutoff" json:"fixed_cutoff"`

	// Ink is the colour window of the ink strategy.
	Ink InkRange `yaml:"ink" json:"ink"`

	// MorphRadius is the half-width of the square window (side 2r+1) used
	// for closing and opening.
	MorphRadius int `yaml:"morph_radius" json:"morph_radius"`

	CloseIterations int `yaml:"close_iterations" json:"close_iterations"`
	OpenIterations  int `yaml:"open_iterations" json:"open_iterations"`
}

// DefaultPreprocessOptions returns the options used for typical phone photos
// and 300 DPI scans.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		MaxDimension:    2000,
		Strategies:      append([]string(nil), DefaultStrategies...),
		AdaptiveRadius:  7,
		AdaptiveOffset:  10,
		FixedCutoff:     150,
		Ink:             DefaultInkRange(),
		MorphRadius:     1,
		CloseIterations: 2,
		OpenIterations:  1,
	}
}

// Prepared holds the planes produced by Preprocess.
type Prepared struct {
	// Color is the scaled source image.
	Color image.Image
	// Gray is the denoised luminance plane.
	Gray *image.Gray
	// Mask is the cleaned binary mark mask.
	Mask *Mask
	// Scale is the factor applied to the source (1 when not scaled).
	Scale float64
}

// Preprocess normalizes a sheet image into a binary mask of candidate marks.
//
// # Algorithm
//
//  1. Scale down so the longer side is at most MaxDimension
//  2. Convert to grayscale and apply a 5x5 Gaussian blur
//  3. Run each threshold strategy and union the masks: a pixel marked by
//     any strategy is foreground
//  4. Morphological closing (fill gaps inside marks) then opening (drop speckle)
func Preprocess(img image.Image, opts PreprocessOptions) (*Prepared, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	scaled, scale := ScaleDown(img, opts.MaxDimension)
	gray := GaussianBlur5(Grayscale(scaled))

	names := opts.Strategies
	if len(names) == 0 {
		names = DefaultStrategies
	}
	strategies := make([]ThresholdStrategy, 0, len(names))
	for _, name := range names {
		s, err := StrategyByName(name, opts)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}

	in := ThresholdInput{Color: scaled, Gray: gray}
	mask, err := UnionMasks(in, strategies)
	if err != nil {
		return nil, err
	}

	mask = Close(mask, opts.MorphRadius, opts.CloseIterations)
	mask = Open(mask, opts.MorphRadius, opts.OpenIterations)

	return &Prepared{
		Color: scaled,
		Gray:  gray,
		Mask:  mask,
		Scale: scale,
	}, nil
}

// UnionMasks folds the strategies' outputs with set union.
func UnionMasks(in ThresholdInput, strategies []ThresholdStrategy) (*Mask, error) {
	out := NewMask(in.Gray.Rect.Dx(), in.Gray.Rect.Dy())
	for i, s := range strategies {
		if err := out.Union(s(in)); err != nil {
			return nil, fmt.Errorf("strategy %d: %w", i, err)
		}
	}
	return out, nil
}

// ScaleDown shrinks img so neither side exceeds maxDim, preserving aspect
// ratio. It returns the image unchanged (scale 1) when it already fits or
// maxDim is not positive.
func ScaleDown(img image.Image, maxDim int) (image.Image, float64) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img, 1
	}
	scaled := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	return scaled, float64(scaled.Bounds().Dx()) / float64(w)
}
