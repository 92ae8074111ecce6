package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Loader errors. Callers classify them with errors.Is.
var (
	// ErrNotFound is returned when the path does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrUnreadableImage is returned when the file exists but yields no image:
	// corrupt bytes, an unsupported codec or a document without pages.
	ErrUnreadableImage = errors.New("could not load image file")

	// ErrRasterize is returned when a document could not be rendered to a raster.
	ErrRasterize = errors.New("page rasterization failed")
)

// DefaultDPI is the resolution used to render document pages.
const DefaultDPI = 300

// Loader decodes sheet files into images.
//
// Image formats (PNG, JPEG) are decoded directly. PDF documents are checked
// for at least one page and their first page is rendered through the
// configured PageRasterizer. A Loader holds no per-file state and is safe
// for concurrent use.
type Loader struct {
	Rasterizer PageRasterizer
	DPI        int
}

// NewLoader returns a Loader that renders PDFs with pdftoppm at DefaultDPI.
func NewLoader() *Loader {
	return &Loader{
		Rasterizer: NewPopplerRasterizer(),
		DPI:        DefaultDPI,
	}
}

// Load returns the decoded image at path as *image.NRGBA.
//
// # Errors
//
//   - ErrNotFound if the file does not exist
//   - ErrUnreadableImage if decoding yields no image
//   - ErrRasterize if a PDF page could not be rendered
func (l *Loader) Load(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	var (
		img image.Image
		err error
	)
	if IsDocument(path) {
		img, err = l.loadDocument(path)
	} else {
		img, err = decodeFile(path)
	}
	if err != nil {
		return nil, err
	}

	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrUnreadableImage)
	}
	return imaging.Clone(img), nil
}

func (l *Loader) loadDocument(path string) (image.Image, error) {
	pages, err := PageCount(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if pages == 0 {
		return nil, fmt.Errorf("%w: could not convert PDF to image - no pages found", ErrUnreadableImage)
	}

	if l.Rasterizer == nil {
		return nil, fmt.Errorf("%w: no rasterizer configured", ErrRasterize)
	}
	dpi := l.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	img, err := l.Rasterizer.RasterizeFirstPage(path, dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	return img, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return img, nil
}

// IsDocument reports whether path names a page-description format.
func IsDocument(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ImageInfo contains metadata about a sheet file.
type ImageInfo struct {
	// Width is the image width in pixels (first page for documents).
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "pdf" or "unknown", based on the file extension.
	Format string `json:"format"`

	// Pages is the page count for documents and 1 for images.
	Pages int `json:"pages"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// InkCoverage is the fraction of pixels in the default coloured-ink window.
	InkCoverage float64 `json:"ink_coverage"`
}

// LoadImageInfo loads a sheet and returns metadata about it.
func LoadImageInfo(l *Loader, path string) (*ImageInfo, error) {
	img, err := l.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	pages := 1
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".pdf":
		format = "pdf"
		if n, err := PageCount(path); err == nil {
			pages = n
		}
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		Pages:         pages,
		FileSizeBytes: stat.Size(),
		InkCoverage:   InkCoverage(img, DefaultInkRange()),
	}, nil
}
