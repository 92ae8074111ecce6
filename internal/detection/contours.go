package detection

import (
	"math"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Rect is an axis-aligned bounding box. Width and Height count pixels, so a
// single pixel has size 1x1.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns Width*Height.
func (r Rect) Area() int {
	return r.Width * r.Height
}

// Contour is the ordered outer boundary of one connected foreground region.
// Consecutive points are 8-adjacent and the chain is implicitly closed.
type Contour struct {
	Points []Point `json:"points"`
}

// Area returns the polygon area enclosed by the boundary chain (shoelace
// formula). Regions one pixel wide have zero area.
func (c Contour) Area() float64 {
	n := len(c.Points)
	if n < 3 {
		return 0
	}
	sum := 0
	for i := 0; i < n; i++ {
		p, q := c.Points[i], c.Points[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// Perimeter returns the length of the closed boundary chain. Diagonal steps
// count √2.
func (c Contour) Perimeter() float64 {
	n := len(c.Points)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		p, q := c.Points[i], c.Points[(i+1)%n]
		total += math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
	}
	return total
}

// BoundingRect returns the smallest Rect containing every boundary point.
func (c Contour) BoundingRect() Rect {
	if len(c.Points) == 0 {
		return Rect{}
	}
	minX, minY := c.Points[0].X, c.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range c.Points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}

// Moore neighbourhood in clockwise order starting west (y grows downward).
var mooreDirs = [8]Point{
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
}

func dirIndex(dx, dy int) int {
	for i, d := range mooreDirs {
		if d.X == dx && d.Y == dy {
			return i
		}
	}
	return 0
}

// TraceExternalContours finds the outer boundary of every 8-connected
// foreground region of m that is not nested inside a hole of another region.
//
// # Algorithm
//
//  1. Flood the background (4-connected) from the image border to find
//     the area outside every region
//  2. Label 8-connected foreground components in raster order with an
//     iterative flood fill. A component is external when it touches the
//     image border or the outside background; components sitting in a hole
//     are dropped
//  3. Trace each external component clockwise with Moore-neighbour tracing
//     from its top-left pixel, stopping when the start pixel is left in the
//     same direction as the first step (Jacob's criterion)
//
// Contours are returned in raster order of their starting pixel.
func TraceExternalContours(m *imaging.Mask) []Contour {
	if m == nil || m.Area() == 0 {
		return nil
	}
	width, height := m.Width, m.Height
	outside := outsideBackground(m)

	labels := make([]int32, width*height)
	contours := make([]Contour, 0)
	var next int32

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if !m.Pix[idx] || labels[idx] != 0 {
				continue
			}
			next++
			size, external := labelComponent(m, outside, labels, x, y, next)
			if !external {
				continue
			}
			contours = append(contours, traceBoundary(m, labels, next, Point{X: x, Y: y}, size))
		}
	}
	return contours
}

// outsideBackground marks background pixels 4-connected to the image border.
func outsideBackground(m *imaging.Mask) []bool {
	width, height := m.Width, m.Height
	outside := make([]bool, width*height)
	stack := make([]Point, 0, 2*(width+height))

	push := func(x, y int) {
		idx := y*width + x
		if m.Pix[idx] || outside[idx] {
			return
		}
		outside[idx] = true
		stack = append(stack, Point{X: x, Y: y})
	}
	for x := 0; x < width; x++ {
		push(x, 0)
		push(x, height-1)
	}
	for y := 0; y < height; y++ {
		push(0, y)
		push(width-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < width-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < height-1 {
			push(p.X, p.Y+1)
		}
	}
	return outside
}

// labelComponent performs iterative flood-fill from a starting pixel,
// writing label into every 8-connected foreground pixel. It returns the
// component size and whether the component touches the border or the
// outside background.
func labelComponent(m *imaging.Mask, outside []bool, labels []int32, startX, startY int, label int32) (int, bool) {
	width, height := m.Width, m.Height
	stack := []Point{{X: startX, Y: startY}}
	labels[startY*width+startX] = label
	size := 0
	external := false

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++

		if p.X == 0 || p.Y == 0 || p.X == width-1 || p.Y == height-1 {
			external = true
		}

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				idx := ny*width + nx
				if !m.Pix[idx] {
					if !external && (dx == 0 || dy == 0) && outside[idx] {
						external = true
					}
					continue
				}
				if labels[idx] != 0 {
					continue
				}
				labels[idx] = label
				stack = append(stack, Point{X: nx, Y: ny})
			}
		}
	}
	return size, external
}

// traceBoundary walks the outer boundary of the component carrying label,
// starting from its top-left pixel. The west neighbour of start is always
// background because start is the first component pixel in raster order.
func traceBoundary(m *imaging.Mask, labels []int32, label int32, start Point, size int) Contour {
	width, height := m.Width, m.Height
	inComponent := func(x, y int) bool {
		if x < 0 || y < 0 || x >= width || y >= height {
			return false
		}
		return labels[y*width+x] == label
	}

	points := []Point{start}
	cur := start
	backtrack := 0 // W
	firstDir := -1
	limit := 4*size + 8

	for i := 0; i < limit; i++ {
		dir := -1
		for k := 1; k <= 8; k++ {
			d := (backtrack + k) % 8
			if inComponent(cur.X+mooreDirs[d].X, cur.Y+mooreDirs[d].Y) {
				dir = d
				break
			}
		}
		if dir < 0 {
			// isolated pixel
			break
		}
		if cur == start && firstDir >= 0 && dir == firstDir {
			break
		}
		if firstDir < 0 {
			firstDir = dir
		}

		nextPt := Point{X: cur.X + mooreDirs[dir].X, Y: cur.Y + mooreDirs[dir].Y}
		// the last background cell examined, seen from the new pixel
		prev := Point{X: cur.X + mooreDirs[(dir+7)%8].X, Y: cur.Y + mooreDirs[(dir+7)%8].Y}
		backtrack = dirIndex(prev.X-nextPt.X, prev.Y-nextPt.Y)
		cur = nextPt
		points = append(points, cur)
	}

	if n := len(points); n > 1 && points[n-1] == start {
		points = points[:n-1]
	}
	return Contour{Points: points}
}
