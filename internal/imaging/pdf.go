package imaging

import (
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func init() {
	// keep pdfcpu from writing its config.yml into the user's config dir
	api.DisableConfigDir()
}

// PageRasterizer renders the first page of a document to a raster image.
type PageRasterizer interface {
	RasterizeFirstPage(path string, dpi int) (image.Image, error)
}

// PageRasterizerFunc adapts a function to PageRasterizer.
type PageRasterizerFunc func(path string, dpi int) (image.Image, error)

// RasterizeFirstPage calls f.
func (f PageRasterizerFunc) RasterizeFirstPage(path string, dpi int) (image.Image, error) {
	return f(path, dpi)
}

// PageCount returns the number of pages in a PDF document.
func PageCount(path string) (n int, err error) {
	// pdfcpu can panic on badly damaged cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while reading PDF: %v", r)
		}
	}()
	n, err = api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	return n, nil
}

// PopplerRasterizer renders pages with the pdftoppm command from poppler-utils.
type PopplerRasterizer struct {
	// Command is the pdftoppm executable; resolved through PATH.
	Command string
}

// NewPopplerRasterizer returns a rasterizer using "pdftoppm" from PATH.
func NewPopplerRasterizer() *PopplerRasterizer {
	return &PopplerRasterizer{Command: "pdftoppm"}
}

// RasterizeFirstPage renders page 1 of the document to PNG in a private
// temporary directory and decodes it. The directory is removed before return.
func (p *PopplerRasterizer) RasterizeFirstPage(path string, dpi int) (image.Image, error) {
	bin, err := exec.LookPath(p.Command)
	if err != nil {
		return nil, fmt.Errorf("no PDF to image converter found: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "omr-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command(bin, "-png", "-f", "1", "-l", "1", "-r", strconv.Itoa(dpi), path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, out)
	}

	// pdftoppm pads the page number depending on the page count
	for _, suffix := range []string{"-1.png", "-01.png", "-001.png", "-0001.png"} {
		candidate := prefix + suffix
		if _, err := os.Stat(candidate); err == nil {
			return decodeFile(candidate)
		}
	}
	return nil, fmt.Errorf("pdftoppm produced no output")
}
