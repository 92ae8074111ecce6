//go:build gocv

package detection

import (
	"log"
	"sort"

	"gocv.io/x/gocv"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// FindExternalContours returns the outer boundary of every external
// foreground region in m using OpenCV (RETR_EXTERNAL, CHAIN_APPROX_NONE).
func FindExternalContours(m *imaging.Mask) []Contour {
	if m == nil || m.Area() == 0 {
		return nil
	}

	buf := make([]byte, len(m.Pix))
	for i, v := range m.Pix {
		if v {
			buf[i] = 255
		}
	}
	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8U, buf)
	if err != nil {
		log.Printf("gocv mat creation failed, falling back to native tracing: %v", err)
		return TraceExternalContours(m)
	}
	defer mat.Close()

	pv := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer pv.Close()

	contours := make([]Contour, 0, pv.Size())
	for i := 0; i < pv.Size(); i++ {
		pts := pv.At(i).ToPoints()
		c := Contour{Points: make([]Point, len(pts))}
		for j, p := range pts {
			c.Points[j] = Point{X: p.X, Y: p.Y}
		}
		contours = append(contours, c)
	}
	sortContours(contours)
	return contours
}

// Backend names the contour implementation compiled into the binary.
const Backend = "opencv"

// sortContours orders contours by the raster position of their first point.
func sortContours(contours []Contour) {
	sort.SliceStable(contours, func(i, j int) bool {
		a, b := contours[i].Points, contours[j].Points
		if len(a) == 0 || len(b) == 0 {
			return len(a) > len(b)
		}
		if a[0].Y != b[0].Y {
			return a[0].Y < b[0].Y
		}
		return a[0].X < b[0].X
	})
}
