package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverlayBox is one annotated region in a debug overlay.
type OverlayBox struct {
	Rect   image.Rectangle
	Marked bool
	// Label is drawn above the box when non-empty.
	Label string
}

// OverlayStyle holds the overlay colours as hex strings ("#RRGGBB" or "#RRGGBBAA").
// Unparsable values fall back to the defaults.
type OverlayStyle struct {
	Marked   string `yaml:"marked" json:"marked"`
	Unmarked string `yaml:"unmarked" json:"unmarked"`
	Column   string `yaml:"column" json:"column"`
}

// DefaultOverlayStyle returns green for marked, red for unmarked and blue
// column separators.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{Marked: "#00C000", Unmarked: "#FF0000", Column: "#0080FF"}
}

// OverlayResult contains the annotated image.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Overlay draws region boxes and vertical column separators over a copy of img
// and returns it PNG-encoded as base64. Box and separator coordinates are in
// the image's own pixel space with (0,0) at the top-left.
func Overlay(img image.Image, boxes []OverlayBox, separators []int, style OverlayStyle) (*OverlayResult, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	result := imaging.Clone(img)
	width, height := result.Bounds().Dx(), result.Bounds().Dy()

	defaults := DefaultOverlayStyle()
	markedColor := colorOrDefault(style.Marked, defaults.Marked)
	unmarkedColor := colorOrDefault(style.Unmarked, defaults.Unmarked)
	columnColor := colorOrDefault(style.Column, defaults.Column)

	for _, x := range separators {
		if x < 0 || x >= width {
			continue
		}
		for y := 0; y < height; y++ {
			result.Set(x, y, columnColor)
		}
	}

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}
	for _, b := range boxes {
		c := unmarkedColor
		if b.Marked {
			c = markedColor
		}
		drawRect(result, b.Rect, c, 2)
		if b.Label != "" {
			drawLabel(result, b.Rect.Min.X, b.Rect.Min.Y-labelHeight-2, b.Label, labelColor, bgColor)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &OverlayResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

func colorOrDefault(hex, fallback string) color.RGBA {
	if c, err := parseHexColor(hex); err == nil {
		return c
	}
	c, _ := parseHexColor(fallback)
	return c
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawRect outlines r with the given stroke width, clipped to the image.
func drawRect(img draw.Image, r image.Rectangle, c color.Color, stroke int) {
	r = r.Canon()
	for i := 0; i < stroke; i++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setClipped(img, x, r.Min.Y+i, c)
			setClipped(img, x, r.Max.Y-1-i, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setClipped(img, r.Min.X+i, y, c)
			setClipped(img, r.Max.X-1-i, y, c)
		}
	}
}

func setClipped(img draw.Image, x, y int, c color.Color) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.Set(x, y, c)
	}
}

const labelHeight = 13

// drawLabel draws text in basicfont's 7x13 face on a filled background box
// whose top-left corner is (x, y).
func drawLabel(img draw.Image, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	labelWidth := font.MeasureString(face, text).Ceil()

	bgRect := image.Rect(x-1, y-1, x+labelWidth+1, y+labelHeight+1).Intersect(img.Bounds())
	draw.Draw(img, bgRect, &image.Uniform{C: bg}, image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}
