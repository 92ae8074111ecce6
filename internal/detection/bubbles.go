package detection

import (
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// AreaMode selects how the accepted area band is derived.
type AreaMode string

const (
	// AreaDynamic scales the area band with the image size, clamped by the
	// absolute MinArea and MaxArea.
	AreaDynamic AreaMode = "dynamic"

	// AreaFixed uses MinArea and MaxArea unchanged.
	AreaFixed AreaMode = "fixed"
)

// FilterOptions are the shape tests a contour must pass to become a Bubble.
type FilterOptions struct {
	AreaMode AreaMode `yaml:"area_mode" json:"area_mode"`

	// MinArea and MaxArea are absolute bounds in square pixels.
	MinArea float64 `yaml:"min_area" json:"min_area"`
	MaxArea float64 `yaml:"max_area" json:"max_area"`

	// MinAreaFraction and MaxAreaFraction are fractions of the image area,
	// used in AreaDynamic mode.
	MinAreaFraction float64 `yaml:"min_area_fraction" json:"min_area_fraction"`
	MaxAreaFraction float64 `yaml:"max_area_fraction" json:"max_area_fraction"`

	// MinCircularity is the lowest accepted 4π·area/perimeter².
	MinCircularity float64 `yaml:"min_circularity" json:"min_circularity"`

	// AspectTolerance is the largest accepted |width/height - 1|.
	AspectTolerance float64 `yaml:"aspect_tolerance" json:"aspect_tolerance"`
}

// DefaultFilterOptions returns the bounds tuned for 300 DPI scans and phone photos.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		AreaMode:        AreaDynamic,
		MinArea:         50,
		MaxArea:         10000,
		MinAreaFraction: 0.00003,
		MaxAreaFraction: 0.02,
		MinCircularity:  0.1,
		AspectTolerance: 0.7,
	}
}

// Validate reports the first inconsistent option.
func (o FilterOptions) Validate() error {
	switch o.AreaMode {
	case AreaDynamic, AreaFixed:
	default:
		return fmt.Errorf("invalid area_mode %q (want %q or %q)", o.AreaMode, AreaDynamic, AreaFixed)
	}
	if o.MinArea < 0 || o.MaxArea <= 0 || o.MinArea > o.MaxArea {
		return fmt.Errorf("invalid area bounds [%g, %g]", o.MinArea, o.MaxArea)
	}
	if o.AreaMode == AreaDynamic && (o.MinAreaFraction < 0 || o.MaxAreaFraction <= 0 || o.MinAreaFraction > o.MaxAreaFraction) {
		return fmt.Errorf("invalid area fractions [%g, %g]", o.MinAreaFraction, o.MaxAreaFraction)
	}
	if o.MinCircularity < 0 || o.MinCircularity > 1 {
		return fmt.Errorf("min_circularity must be within [0, 1], got %g", o.MinCircularity)
	}
	if o.AspectTolerance < 0 {
		return fmt.Errorf("aspect_tolerance must not be negative, got %g", o.AspectTolerance)
	}
	return nil
}

// AreaBounds returns the inclusive area band for an image of the given size.
func (o FilterOptions) AreaBounds(width, height int) (float64, float64) {
	if o.AreaMode == AreaFixed {
		return o.MinArea, o.MaxArea
	}
	total := float64(width) * float64(height)
	return math.Max(o.MinArea, o.MinAreaFraction*total), math.Min(o.MaxArea, o.MaxAreaFraction*total)
}

// Bubble is a contour that passed the shape filter, with its measurements.
// Bubbles are never modified after FilterBubbles returns them.
type Bubble struct {
	Contour   Contour `json:"-"`
	Area      float64 `json:"area"`
	Perimeter float64 `json:"perimeter"`
	Box       Rect    `json:"bounding_box"`

	// CenterX and CenterY are the bounding-box centre, x + width/2 and
	// y + height/2 with integer division.
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`

	Circularity float64 `json:"circularity"`
	AspectRatio float64 `json:"aspect_ratio"`

	// FillRatio is FilledPixels divided by the bounding-box area.
	FillRatio    float64 `json:"fill_ratio"`
	FilledPixels int     `json:"filled_pixels"`
}

// FilterStats counts how many contours each test rejected.
type FilterStats struct {
	Contours            int     `json:"contours"`
	RejectedArea        int     `json:"rejected_area"`
	RejectedCircularity int     `json:"rejected_circularity"`
	RejectedAspect      int     `json:"rejected_aspect"`
	Accepted            int     `json:"accepted"`
	MinArea             float64 `json:"min_area"`
	MaxArea             float64 `json:"max_area"`
}

// FilterBubbles keeps the contours that look like answer bubbles and
// measures how much of each is filled in the mask.
//
// # Tests (in order)
//
//  1. Area within AreaBounds (inclusive)
//  2. Non-zero perimeter and circularity 4π·area/perimeter² at least MinCircularity
//  3. Non-degenerate box with |width/height - 1| at most AspectTolerance
//
// The fill ratio counts mask foreground pixels enclosed by the contour
// (holes included in the enclosed region) over the bounding-box area.
//
// The result is sorted by (CenterY, CenterX).
func FilterBubbles(contours []Contour, m *imaging.Mask, opts FilterOptions) ([]Bubble, FilterStats) {
	minArea, maxArea := opts.AreaBounds(m.Width, m.Height)
	stats := FilterStats{
		Contours: len(contours),
		MinArea:  minArea,
		MaxArea:  maxArea,
	}

	bubbles := make([]Bubble, 0)
	for _, c := range contours {
		area := c.Area()
		if area < minArea || area > maxArea {
			stats.RejectedArea++
			continue
		}

		perimeter := c.Perimeter()
		if perimeter == 0 {
			stats.RejectedCircularity++
			continue
		}
		circularity := 4 * math.Pi * area / (perimeter * perimeter)
		if circularity < opts.MinCircularity {
			stats.RejectedCircularity++
			continue
		}

		box := c.BoundingRect()
		if box.Width == 0 || box.Height == 0 {
			stats.RejectedAspect++
			continue
		}
		aspect := float64(box.Width) / float64(box.Height)
		if math.Abs(aspect-1) > opts.AspectTolerance {
			stats.RejectedAspect++
			continue
		}

		filled := enclosedForeground(c, box, m)
		bubbles = append(bubbles, Bubble{
			Contour:      c,
			Area:         area,
			Perimeter:    perimeter,
			Box:          box,
			CenterX:      float64(box.X + box.Width/2),
			CenterY:      float64(box.Y + box.Height/2),
			Circularity:  circularity,
			AspectRatio:  aspect,
			FillRatio:    float64(filled) / float64(box.Area()),
			FilledPixels: filled,
		})
	}

	SortBubbles(bubbles)
	stats.Accepted = len(bubbles)
	return bubbles, stats
}

// SortBubbles orders bubbles top-to-bottom, then left-to-right.
func SortBubbles(bubbles []Bubble) {
	sort.SliceStable(bubbles, func(i, j int) bool {
		if bubbles[i].CenterY != bubbles[j].CenterY {
			return bubbles[i].CenterY < bubbles[j].CenterY
		}
		return bubbles[i].CenterX < bubbles[j].CenterX
	})
}

// enclosedForeground counts mask foreground pixels on or inside the contour.
//
// The box is padded by one pixel and the background is flooded
// (4-connected) from the padding with the contour points as walls. Every
// cell the flood does not reach is enclosed.
func enclosedForeground(c Contour, box Rect, m *imaging.Mask) int {
	w, h := box.Width+2, box.Height+2
	ox, oy := box.X-1, box.Y-1

	wall := make([]bool, w*h)
	for _, p := range c.Points {
		wall[(p.Y-oy)*w+(p.X-ox)] = true
	}

	reached := make([]bool, w*h)
	stack := []Point{{X: 0, Y: 0}}
	reached[0] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range [4]Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}} {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			idx := ny*w + nx
			if reached[idx] || wall[idx] {
				continue
			}
			reached[idx] = true
			stack = append(stack, Point{X: nx, Y: ny})
		}
	}

	count := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if !reached[y*w+x] && m.At(x+ox, y+oy) {
				count++
			}
		}
	}
	return count
}
