package detection

import (
	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// drawDisc marks every pixel within radius of (cx, cy).
func drawDisc(m *imaging.Mask, cx, cy, radius int) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				m.Set(x, y, true)
			}
		}
	}
}

// drawRing marks pixels whose distance from (cx, cy) is within
// (outer-thickness, outer].
func drawRing(m *imaging.Mask, cx, cy, outer, thickness int) {
	inner := outer - thickness
	for y := cy - outer; y <= cy+outer; y++ {
		for x := cx - outer; x <= cx+outer; x++ {
			dx, dy := x-cx, y-cy
			d2 := dx*dx + dy*dy
			if d2 <= outer*outer && d2 > inner*inner {
				m.Set(x, y, true)
			}
		}
	}
}

// fillBox marks the w×h block with top-left corner (x, y).
func fillBox(m *imaging.Mask, x, y, w, h int) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			m.Set(xx, yy, true)
		}
	}
}

// bubbleAt builds a synthetic 20x20 bubble centred on (cx, cy).
func bubbleAt(cx, cy int, fill float64) Bubble {
	return Bubble{
		Box:         Rect{X: cx - 10, Y: cy - 10, Width: 20, Height: 20},
		CenterX:     float64(cx),
		CenterY:     float64(cy),
		Area:        300,
		Circularity: 0.9,
		AspectRatio: 1,
		FillRatio:   fill,
	}
}

// grid builds rows×cols bubbles with the given origin and spacing, all with
// the same fill.
func grid(x0, y0, cols, rows, spacing int, fill float64) []Bubble {
	out := make([]Bubble, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, bubbleAt(x0+c*spacing, y0+r*spacing, fill))
		}
	}
	return out
}
