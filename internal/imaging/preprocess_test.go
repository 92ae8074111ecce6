package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestPreprocess_DarkMark(t *testing.T) {
	img := solidImage(200, 200, color.White)
	fillDisc(img, 100, 100, 20, color.Black)

	p, err := Preprocess(img, DefaultPreprocessOptions())
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}

	if p.Scale != 1 {
		t.Errorf("Scale: got %f, want 1", p.Scale)
	}
	if p.Mask.Width != 200 || p.Mask.Height != 200 {
		t.Errorf("mask size: got %dx%d, want 200x200", p.Mask.Width, p.Mask.Height)
	}
	if !p.Mask.At(100, 100) {
		t.Error("disc centre should be foreground")
	}
	if p.Mask.At(5, 5) || p.Mask.At(190, 20) {
		t.Error("white background should stay background")
	}
}

func TestPreprocess_InkOnly(t *testing.T) {
	img := solidImage(120, 120, color.White)
	fillDisc(img, 60, 60, 15, color.RGBA{120, 60, 230, 255})

	opts := DefaultPreprocessOptions()
	opts.Strategies = []string{StrategyInk}

	p, err := Preprocess(img, opts)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if !p.Mask.At(60, 60) {
		t.Error("coloured ink should be picked up by the ink strategy")
	}
	if p.Mask.At(10, 10) {
		t.Error("background should stay clear")
	}
}

func TestPreprocess_ScalesDown(t *testing.T) {
	img := solidImage(300, 100, color.White)

	opts := DefaultPreprocessOptions()
	opts.MaxDimension = 150

	p, err := Preprocess(img, opts)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if p.Mask.Width != 150 || p.Mask.Height != 50 {
		t.Errorf("mask size: got %dx%d, want 150x50", p.Mask.Width, p.Mask.Height)
	}
	if math.Abs(p.Scale-0.5) > 1e-9 {
		t.Errorf("Scale: got %f, want 0.5", p.Scale)
	}
}

func TestPreprocess_UnknownStrategy(t *testing.T) {
	opts := DefaultPreprocessOptions()
	opts.Strategies = []string{"otsu", "sobel"}

	if _, err := Preprocess(solidImage(10, 10, color.White), opts); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}

func TestPreprocess_EmptyImage(t *testing.T) {
	if _, err := Preprocess(image.NewRGBA(image.Rect(0, 0, 0, 0)), DefaultPreprocessOptions()); err == nil {
		t.Error("expected an error for an empty image")
	}
}

func TestScaleDown_NeverUpscales(t *testing.T) {
	img := solidImage(40, 20, color.White)
	out, scale := ScaleDown(img, 100)
	if out != image.Image(img) || scale != 1 {
		t.Error("an image that already fits should be returned unchanged")
	}

	out, scale = ScaleDown(img, 0)
	if out != image.Image(img) || scale != 1 {
		t.Error("maxDim 0 should disable scaling")
	}
}

func TestUnionMasks(t *testing.T) {
	in := ThresholdInput{Gray: grayPlane(4, 1, 255)}
	left := func(in ThresholdInput) *Mask {
		m := NewMask(4, 1)
		m.Set(0, 0, true)
		return m
	}
	right := func(in ThresholdInput) *Mask {
		m := NewMask(4, 1)
		m.Set(3, 0, true)
		return m
	}

	m, err := UnionMasks(in, []ThresholdStrategy{left, right})
	if err != nil {
		t.Fatalf("UnionMasks failed: %v", err)
	}
	if !m.At(0, 0) || !m.At(3, 0) || m.Count() != 2 {
		t.Errorf("union should hold exactly both marks, got %d pixels", m.Count())
	}

	wrong := func(in ThresholdInput) *Mask { return NewMask(2, 2) }
	if _, err := UnionMasks(in, []ThresholdStrategy{wrong}); err == nil {
		t.Error("expected an error when a strategy returns the wrong size")
	}
}
