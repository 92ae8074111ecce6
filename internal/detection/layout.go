package detection

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// LayoutOptions tunes column and row inference.
type LayoutOptions struct {
	// ColumnGapFloor is the smallest x gap, in pixels, that can separate columns.
	ColumnGapFloor float64 `yaml:"column_gap_floor" json:"column_gap_floor"`

	// ColumnGapStdDevs is k in median + k·stddev, the adaptive separator threshold.
	ColumnGapStdDevs float64 `yaml:"column_gap_stddevs" json:"column_gap_stddevs"`

	// RowGapPercentile picks the typical small y gap (0-1).
	RowGapPercentile float64 `yaml:"row_gap_percentile" json:"row_gap_percentile"`

	// RowGapMultiplier scales the typical small gap into a row threshold.
	RowGapMultiplier float64 `yaml:"row_gap_multiplier" json:"row_gap_multiplier"`

	// RowThresholdFloor is the minimum row threshold in pixels.
	RowThresholdFloor float64 `yaml:"row_threshold_floor" json:"row_threshold_floor"`

	// RowHeightFactor sets a second floor as a fraction of the median bubble height.
	RowHeightFactor float64 `yaml:"row_height_factor" json:"row_height_factor"`
}

// DefaultLayoutOptions returns the defaults used for printed answer sheets.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		ColumnGapFloor:    40,
		ColumnGapStdDevs:  2,
		RowGapPercentile:  0.9,
		RowGapMultiplier:  2,
		RowThresholdFloor: 10,
		RowHeightFactor:   0.5,
	}
}

// Validate reports the first out-of-range option.
func (o LayoutOptions) Validate() error {
	if o.ColumnGapFloor < 0 || o.ColumnGapStdDevs < 0 {
		return fmt.Errorf("column gap settings must not be negative")
	}
	if o.RowGapPercentile <= 0 || o.RowGapPercentile > 1 {
		return fmt.Errorf("row_gap_percentile must be within (0, 1], got %g", o.RowGapPercentile)
	}
	if o.RowGapMultiplier < 0 || o.RowThresholdFloor <= 0 || o.RowHeightFactor < 0 {
		return fmt.Errorf("row threshold settings must be positive")
	}
	return nil
}

// Row is the choice set of one question: bubbles sharing a vertical band,
// ordered left to right.
type Row struct {
	Bubbles []Bubble `json:"bubbles"`
	MeanY   float64  `json:"mean_y"`
}

// Column is a block of questions sharing a horizontal band, rows ordered
// top to bottom. Left and Right are the separator positions, or the outer
// edges of the member bubbles for the first and last column.
type Column struct {
	Index int     `json:"index"`
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
	Rows  []Row   `json:"rows"`
}

// AnalyzeLayout partitions bubbles into columns and each column into rows.
// Every bubble lands in exactly one row of exactly one column.
func AnalyzeLayout(bubbles []Bubble, opts LayoutOptions) []Column {
	if len(bubbles) == 0 {
		return nil
	}

	separators := ColumnSeparators(bubbles, opts)
	buckets := make([][]Bubble, len(separators)+1)
	for _, b := range bubbles {
		i := sort.SearchFloat64s(separators, b.CenterX)
		buckets[i] = append(buckets[i], b)
	}

	columns := make([]Column, 0, len(buckets))
	for i, members := range buckets {
		if len(members) == 0 {
			continue
		}
		left, right := boxExtent(members)
		if i > 0 {
			left = separators[i-1]
		}
		if i < len(separators) {
			right = separators[i]
		}
		SortBubbles(members)
		columns = append(columns, Column{
			Index: len(columns),
			Left:  left,
			Right: right,
			Rows:  GroupRows(members, opts),
		})
	}
	return columns
}

// ColumnSeparators returns the ascending x positions that split bubbles into
// columns, or nil for a single column.
//
// # Algorithm
//
//  1. Cluster sorted x-centers: a center within half the median bubble width
//     of the previous one belongs to the same position
//  2. Take the gaps between consecutive positions
//  3. A gap larger than max(ColumnGapFloor, median + k·stddev) separates
//     columns; the separator sits at the gap midpoint
func ColumnSeparators(bubbles []Bubble, opts LayoutOptions) []float64 {
	positions := xPositions(bubbles)
	if len(positions) < 2 {
		return nil
	}

	gaps := make([]float64, len(positions)-1)
	for i := 1; i < len(positions); i++ {
		gaps[i-1] = positions[i] - positions[i-1]
	}
	sorted := append([]float64(nil), gaps...)
	sort.Float64s(sorted)

	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	std := 0.0
	if len(gaps) > 1 {
		_, std = stat.MeanStdDev(gaps, nil)
	}
	threshold := math.Max(opts.ColumnGapFloor, median+opts.ColumnGapStdDevs*std)

	var separators []float64
	for i, g := range gaps {
		if g > threshold {
			separators = append(separators, positions[i]+g/2)
		}
	}
	return separators
}

// xPositions clusters the bubbles' x-centers into distinct column positions.
func xPositions(bubbles []Bubble) []float64 {
	xs := make([]float64, len(bubbles))
	widths := make([]float64, len(bubbles))
	for i, b := range bubbles {
		xs[i] = b.CenterX
		widths[i] = float64(b.Box.Width)
	}
	sort.Float64s(xs)
	sort.Float64s(widths)
	tolerance := stat.Quantile(0.5, stat.Empirical, widths, nil) / 2

	positions := make([]float64, 0, len(xs))
	sum, n := xs[0], 1
	last := xs[0]
	for _, x := range xs[1:] {
		if x-last <= tolerance {
			sum += x
			n++
		} else {
			positions = append(positions, sum/float64(n))
			sum, n = x, 1
		}
		last = x
	}
	return append(positions, sum/float64(n))
}

// RowThreshold returns the largest y distance from a row's running mean at
// which a bubble still joins that row.
//
// Gaps between consecutive y-centers that are smaller than the median
// bubble height are the within-row jitter; their RowGapPercentile quantile
// times RowGapMultiplier is the base threshold, floored by
// RowThresholdFloor and RowHeightFactor × median height.
func RowThreshold(bubbles []Bubble, opts LayoutOptions) float64 {
	floor := opts.RowThresholdFloor
	if len(bubbles) == 0 {
		return floor
	}

	ys := make([]float64, len(bubbles))
	heights := make([]float64, len(bubbles))
	for i, b := range bubbles {
		ys[i] = b.CenterY
		heights[i] = float64(b.Box.Height)
	}
	sort.Float64s(ys)
	sort.Float64s(heights)
	medianHeight := stat.Quantile(0.5, stat.Empirical, heights, nil)

	small := make([]float64, 0, len(ys))
	for i := 1; i < len(ys); i++ {
		if g := ys[i] - ys[i-1]; g < medianHeight {
			small = append(small, g)
		}
	}
	base := 0.0
	if len(small) > 0 {
		sort.Float64s(small)
		base = stat.Quantile(opts.RowGapPercentile, stat.Empirical, small, nil) * opts.RowGapMultiplier
	}

	return math.Max(floor, math.Max(opts.RowHeightFactor*medianHeight, base))
}

// GroupRows splits bubbles (sorted by y, then x) into rows. A bubble starts
// a new row when its y-center is more than RowThreshold away from the
// running mean y of the current row. Rows are returned x-sorted.
func GroupRows(bubbles []Bubble, opts LayoutOptions) []Row {
	if len(bubbles) == 0 {
		return nil
	}
	threshold := RowThreshold(bubbles, opts)

	rows := make([]Row, 0)
	current := []Bubble{bubbles[0]}
	sumY := bubbles[0].CenterY

	flush := func() {
		row := Row{Bubbles: current, MeanY: sumY / float64(len(current))}
		sort.SliceStable(row.Bubbles, func(i, j int) bool {
			return row.Bubbles[i].CenterX < row.Bubbles[j].CenterX
		})
		rows = append(rows, row)
	}

	for _, b := range bubbles[1:] {
		mean := sumY / float64(len(current))
		if math.Abs(b.CenterY-mean) <= threshold {
			current = append(current, b)
			sumY += b.CenterY
			continue
		}
		flush()
		current = []Bubble{b}
		sumY = b.CenterY
	}
	flush()
	return rows
}

func boxExtent(bubbles []Bubble) (float64, float64) {
	left, right := math.Inf(1), math.Inf(-1)
	for _, b := range bubbles {
		left = math.Min(left, float64(b.Box.X))
		right = math.Max(right, float64(b.Box.X+b.Box.Width))
	}
	return left, right
}
