//go:build !gocv

package detection

import "github.com/ironsheep/omr-tools-mcp/internal/imaging"

// FindExternalContours returns the outer boundary of every external
// foreground region in m, traced in pure Go.
func FindExternalContours(m *imaging.Mask) []Contour {
	return TraceExternalContours(m)
}

// Backend names the contour implementation compiled into the binary.
const Backend = "native"
