package omr

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/omr-tools-mcp/internal/detection"
	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// DebugReport describes what every stage saw for one sheet. It carries no
// answers; it exists to tune thresholds and diagnose bad scans.
type DebugReport struct {
	RunID    string `json:"run_id"`
	FilePath string `json:"file_path"`

	// ContourBackend is "native" or "opencv".
	ContourBackend string `json:"contour_backend"`

	// Width and Height are the dimensions analysed, after any scale-down.
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`

	MaskForeground int                   `json:"mask_foreground_pixels"`
	ContoursFound  int                   `json:"contours_found"`
	Filter         detection.FilterStats `json:"filter"`
	TotalBubbles   int                   `json:"total_bubbles"`
	Bubbles        []detection.Bubble    `json:"bubbles"`
	Columns        []DebugColumn         `json:"columns"`

	// ConfidenceThreshold is the fill ratio used for above_confidence_threshold.
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	Overlay *imaging.OverlayResult `json:"overlay,omitempty"`

	ProcessingTime float64   `json:"processing_time"`
	Code           ErrorCode `json:"code,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// DebugColumn is one inferred column with its rows.
type DebugColumn struct {
	Index int        `json:"index"`
	Left  float64    `json:"left"`
	Right float64    `json:"right"`
	Rows  []DebugRow `json:"rows"`
}

// DebugRow is one inferred row, left to right.
type DebugRow struct {
	MeanY   float64       `json:"mean_y"`
	Bubbles []DebugBubble `json:"bubbles"`
}

// DebugBubble is a bubble's place within its row. Letter is empty for
// positions beyond the requested number of choices.
type DebugBubble struct {
	Position       int     `json:"position"`
	Letter         string  `json:"letter,omitempty"`
	CenterX        float64 `json:"center_x"`
	CenterY        float64 `json:"center_y"`
	FillRatio      float64 `json:"fill_ratio"`
	AboveThreshold bool    `json:"above_confidence_threshold"`
}

// Debug runs the pipeline on path up to layout inference and reports the
// intermediate results. With overlay set, the report includes the analysed
// image annotated with bubble boxes and column separators.
func (p *Processor) Debug(path string, totalQuestions, choices int, overlay bool) (report DebugReport) {
	start := time.Now()
	cfg := p.cfg
	report = DebugReport{
		RunID:               uuid.NewString(),
		FilePath:            path,
		ContourBackend:      detection.Backend,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("Recovered panic in debug run %s: %v", report.RunID, r)
			report.Code, report.Error = Classify(fmt.Errorf("internal failure: %v", r), path)
		}
		report.ProcessingTime = elapsed(start)
	}()

	a, err := p.analyze(path, totalQuestions, choices, cfg)
	if err != nil {
		p.debugf("[%s] debug run failed: %v", report.RunID, err)
		report.Code, report.Error = Classify(err, path)
		return report
	}

	mask := a.prepared.Mask
	report.Width, report.Height = mask.Width, mask.Height
	report.Scale = a.prepared.Scale
	report.MaskForeground = mask.Count()
	report.ContoursFound = len(a.contours)
	report.Filter = a.stats
	report.TotalBubbles = len(a.bubbles)
	report.Bubbles = a.bubbles
	report.Columns = debugColumns(a.columns, choices, cfg.ConfidenceThreshold)

	if overlay {
		boxes, separators := overlayShapes(a.columns, cfg.ConfidenceThreshold)
		out, err := imaging.Overlay(a.prepared.Color, boxes, separators, cfg.Overlay)
		if err != nil {
			p.logger.Printf("Failed to draw overlay for %s: %v", path, err)
			report.Code, report.Error = Classify(err, path)
			return report
		}
		report.Overlay = out
	}

	p.debugf("[%s] %s: %d contours, %d bubbles, %d columns",
		report.RunID, path, report.ContoursFound, report.TotalBubbles, len(report.Columns))
	return report
}

func debugColumns(columns []detection.Column, choices int, threshold float64) []DebugColumn {
	out := make([]DebugColumn, 0, len(columns))
	for _, col := range columns {
		dc := DebugColumn{Index: col.Index, Left: col.Left, Right: col.Right}
		for _, row := range col.Rows {
			dr := DebugRow{MeanY: row.MeanY}
			for i, b := range row.Bubbles {
				db := DebugBubble{
					Position:       i,
					CenterX:        b.CenterX,
					CenterY:        b.CenterY,
					FillRatio:      b.FillRatio,
					AboveThreshold: b.FillRatio > threshold,
				}
				if i < choices {
					db.Letter = detection.ChoiceLetter(i)
				}
				dr.Bubbles = append(dr.Bubbles, db)
			}
			dc.Rows = append(dc.Rows, dr)
		}
		out = append(out, dc)
	}
	return out
}

// overlayShapes converts the layout to overlay boxes, labelling the first
// bubble of every row with its column and row number.
func overlayShapes(columns []detection.Column, threshold float64) ([]imaging.OverlayBox, []int) {
	var boxes []imaging.OverlayBox
	var separators []int
	for _, col := range columns {
		if col.Index > 0 {
			separators = append(separators, int(math.Round(col.Left)))
		}
		for r, row := range col.Rows {
			for i, b := range row.Bubbles {
				box := imaging.OverlayBox{
					Rect:   image.Rect(b.Box.X, b.Box.Y, b.Box.X+b.Box.Width, b.Box.Y+b.Box.Height),
					Marked: b.FillRatio > threshold,
				}
				if i == 0 {
					box.Label = fmt.Sprintf("%d.%d", col.Index+1, r+1)
				}
				boxes = append(boxes, box)
			}
		}
	}
	return boxes, separators
}
