package detection

import (
	"math"
	"testing"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

func TestTraceExternalContours_Square(t *testing.T) {
	m := imaging.NewMask(10, 10)
	fillBox(m, 2, 2, 5, 5)

	contours := TraceExternalContours(m)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	c := contours[0]

	if got := c.BoundingRect(); got != (Rect{X: 2, Y: 2, Width: 5, Height: 5}) {
		t.Errorf("BoundingRect: got %+v", got)
	}
	if len(c.Points) != 16 {
		t.Errorf("boundary points: got %d, want 16", len(c.Points))
	}
	if c.Area() != 16 {
		t.Errorf("Area: got %f, want 16", c.Area())
	}
	if c.Perimeter() != 16 {
		t.Errorf("Perimeter: got %f, want 16", c.Perimeter())
	}
	if c.Points[0] != (Point{X: 2, Y: 2}) {
		t.Errorf("trace should start at the top-left pixel, got %+v", c.Points[0])
	}
}

func TestTraceExternalContours_ClockwiseOrder(t *testing.T) {
	m := imaging.NewMask(4, 4)
	fillBox(m, 1, 1, 2, 2)

	contours := TraceExternalContours(m)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	want := []Point{{1, 1}, {2, 1}, {2, 2}, {1, 2}}
	got := contours[0].Points
	if len(got) != len(want) {
		t.Fatalf("points: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTraceExternalContours_SinglePixel(t *testing.T) {
	m := imaging.NewMask(5, 5)
	m.Set(2, 2, true)

	contours := TraceExternalContours(m)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	c := contours[0]
	if len(c.Points) != 1 {
		t.Errorf("points: got %d, want 1", len(c.Points))
	}
	if c.Area() != 0 || c.Perimeter() != 0 {
		t.Errorf("single pixel should have zero area and perimeter, got %f and %f", c.Area(), c.Perimeter())
	}
}

func TestTraceExternalContours_Line(t *testing.T) {
	m := imaging.NewMask(5, 3)
	fillBox(m, 1, 1, 3, 1)

	c := TraceExternalContours(m)[0]
	if len(c.Points) != 4 {
		t.Errorf("a 3-pixel line is walked out and back: got %d points, want 4", len(c.Points))
	}
	if c.Perimeter() != 4 {
		t.Errorf("Perimeter: got %f, want 4", c.Perimeter())
	}
	if c.Area() != 0 {
		t.Errorf("Area: got %f, want 0", c.Area())
	}
}

func TestTraceExternalContours_DiagonalConnectivity(t *testing.T) {
	m := imaging.NewMask(6, 6)
	m.Set(1, 1, true)
	m.Set(2, 2, true)
	m.Set(3, 3, true)

	if n := len(TraceExternalContours(m)); n != 1 {
		t.Errorf("diagonal pixels should form one region, got %d", n)
	}
}

func TestTraceExternalContours_ExternalOnly(t *testing.T) {
	m := imaging.NewMask(20, 20)
	drawRing(m, 10, 10, 8, 2)
	m.Set(10, 10, true) // dot inside the hole

	contours := TraceExternalContours(m)
	if len(contours) != 1 {
		t.Fatalf("nested region should be dropped: got %d contours, want 1", len(contours))
	}
	if got := contours[0].BoundingRect(); got.Width != 17 || got.Height != 17 {
		t.Errorf("contour should be the ring's outer boundary, got %+v", got)
	}
}

func TestTraceExternalContours_RasterOrder(t *testing.T) {
	m := imaging.NewMask(30, 30)
	fillBox(m, 20, 2, 3, 3)
	fillBox(m, 2, 2, 3, 3)
	fillBox(m, 5, 20, 3, 3)

	contours := TraceExternalContours(m)
	if len(contours) != 3 {
		t.Fatalf("expected 3 contours, got %d", len(contours))
	}
	starts := []Point{{2, 2}, {20, 2}, {5, 20}}
	for i, want := range starts {
		if contours[i].Points[0] != want {
			t.Errorf("contour %d starts at %+v, want %+v", i, contours[i].Points[0], want)
		}
	}
}

func TestTraceExternalContours_TouchesBorder(t *testing.T) {
	m := imaging.NewMask(10, 10)
	fillBox(m, 0, 0, 4, 4)

	contours := TraceExternalContours(m)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	if contours[0].Area() != 9 {
		t.Errorf("Area: got %f, want 9", contours[0].Area())
	}
}

func TestTraceExternalContours_Disc(t *testing.T) {
	m := imaging.NewMask(120, 120)
	drawDisc(m, 60, 60, 40)

	contours := TraceExternalContours(m)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	c := contours[0]

	ideal := math.Pi * 40 * 40
	if math.Abs(c.Area()-ideal)/ideal > 0.05 {
		t.Errorf("Area: got %f, want about %f", c.Area(), ideal)
	}
	circularity := 4 * math.Pi * c.Area() / (c.Perimeter() * c.Perimeter())
	if circularity < 0.8 {
		t.Errorf("disc circularity: got %f, want > 0.8", circularity)
	}
}

func TestTraceExternalContours_Empty(t *testing.T) {
	if got := TraceExternalContours(imaging.NewMask(0, 0)); got != nil {
		t.Errorf("empty mask should give nil, got %v", got)
	}
	if got := TraceExternalContours(imaging.NewMask(8, 8)); len(got) != 0 {
		t.Errorf("blank mask should give no contours, got %d", len(got))
	}
}

func TestFindExternalContours_MatchesTrace(t *testing.T) {
	m := imaging.NewMask(40, 40)
	drawDisc(m, 10, 10, 6)
	drawRing(m, 28, 28, 8, 3)

	found := FindExternalContours(m)
	if len(found) != 2 {
		t.Fatalf("expected 2 contours, got %d", len(found))
	}
	traced := TraceExternalContours(m)
	for i := range found {
		if found[i].BoundingRect() != traced[i].BoundingRect() {
			t.Errorf("contour %d: backend %s box %+v, native box %+v",
				i, Backend, found[i].BoundingRect(), traced[i].BoundingRect())
		}
	}
}

func TestRect_Area(t *testing.T) {
	if got := (Rect{Width: 4, Height: 3}).Area(); got != 12 {
		t.Errorf("Area: got %d, want 12", got)
	}
}
