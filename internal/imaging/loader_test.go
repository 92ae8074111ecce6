package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestImage creates a simple test image file and returns its path.
// The caller is responsible for removing the file.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	tmpFile, err := os.CreateTemp("", "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

// writeMinimalPDF writes a one-page PDF with a correct cross-reference table.
func writeMinimalPDF(t *testing.T, dir string) string {
	t.Helper()
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(dir, "sheet.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write pdf: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader returned nil")
	}
	if l.Rasterizer == nil {
		t.Fatal("NewLoader did not set a rasterizer")
	}
	if l.DPI != DefaultDPI {
		t.Errorf("DPI: got %d, want %d", l.DPI, DefaultDPI)
	}
}

func TestLoader_Load(t *testing.T) {
	l := NewLoader()
	imgPath := createTestImage(t, 100, 80, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	img, err := l.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := img.(*image.NRGBA); !ok {
		t.Errorf("Load returned %T, want *image.NRGBA", img)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 80 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x80", bounds.Dx(), bounds.Dy())
	}
}

func TestLoader_Load_NonExistent(t *testing.T) {
	l := NewLoader()
	_, err := l.Load("/nonexistent/path/to/image.png")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load error: got %v, want ErrNotFound", err)
	}
}

func TestLoader_Load_InvalidImage(t *testing.T) {
	l := NewLoader()

	tmpFile, err := os.CreateTemp("", "invalid-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.WriteString("not an image")
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	_, err = l.Load(tmpFile.Name())
	if !errors.Is(err, ErrUnreadableImage) {
		t.Errorf("Load error: got %v, want ErrUnreadableImage", err)
	}
}

func TestLoader_Load_PDF(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeMinimalPDF(t, dir)

	var gotPath string
	var gotDPI int
	l := &Loader{
		DPI: 300,
		Rasterizer: PageRasterizerFunc(func(path string, dpi int) (image.Image, error) {
			gotPath, gotDPI = path, dpi
			return image.NewRGBA(image.Rect(0, 0, 40, 30)), nil
		}),
	}

	img, err := l.Load(pdfPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if gotPath != pdfPath || gotDPI != 300 {
		t.Errorf("rasterizer called with (%s, %d), want (%s, 300)", gotPath, gotDPI, pdfPath)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("unexpected dimensions: got %dx%d, want 40x30", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestLoader_Load_PDFRasterizeFailure(t *testing.T) {
	pdfPath := writeMinimalPDF(t, t.TempDir())
	l := &Loader{
		Rasterizer: PageRasterizerFunc(func(string, int) (image.Image, error) {
			return nil, errors.New("boom")
		}),
	}

	_, err := l.Load(pdfPath)
	if !errors.Is(err, ErrRasterize) {
		t.Errorf("Load error: got %v, want ErrRasterize", err)
	}
}

func TestLoader_Load_CorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	called := false
	l := &Loader{
		Rasterizer: PageRasterizerFunc(func(string, int) (image.Image, error) {
			called = true
			return nil, nil
		}),
	}

	_, err := l.Load(path)
	if !errors.Is(err, ErrUnreadableImage) {
		t.Errorf("Load error: got %v, want ErrUnreadableImage", err)
	}
	if called {
		t.Error("rasterizer should not run for an unreadable document")
	}
}

func TestPageCount(t *testing.T) {
	n, err := PageCount(writeMinimalPDF(t, t.TempDir()))
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if n != 1 {
		t.Errorf("PageCount: got %d, want 1", n)
	}
}

func TestLoader_ConcurrentLoad(t *testing.T) {
	l := NewLoader()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})
	defer os.Remove(imgPath)

	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	l := NewLoader()
	imgPath := createTestImage(t, 200, 150, color.RGBA{255, 128, 64, 255})
	defer os.Remove(imgPath)

	info, err := LoadImageInfo(l, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 200 {
		t.Errorf("Width: got %d, want 200", info.Width)
	}
	if info.Height != 150 {
		t.Errorf("Height: got %d, want 150", info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.Pages != 1 {
		t.Errorf("Pages: got %d, want 1", info.Pages)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
	if info.InkCoverage != 0 {
		t.Errorf("InkCoverage: got %f, want 0 for orange fill", info.InkCoverage)
	}
}

func TestLoadImageInfo_FormatDetection(t *testing.T) {
	l := NewLoader()

	tests := []struct {
		ext    string
		format string
	}{
		{".png", "png"},
		{".jpg", "jpeg"},
		{".jpeg", "jpeg"},
		{".JPG", "jpeg"},
		{".xyz", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			tmpPath := filepath.Join(t.TempDir(), "test-format"+tt.ext)

			// Create a valid PNG regardless of extension
			img := image.NewRGBA(image.Rect(0, 0, 10, 10))
			f, err := os.Create(tmpPath)
			if err != nil {
				t.Fatalf("failed to create file: %v", err)
			}
			png.Encode(f, img)
			f.Close()

			info, err := LoadImageInfo(l, tmpPath)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}

			if info.Format != tt.format {
				t.Errorf("Format for %s: got %s, want %s", tt.ext, info.Format, tt.format)
			}
		})
	}
}

func TestLoadImageInfo_NonExistent(t *testing.T) {
	_, err := LoadImageInfo(NewLoader(), "/nonexistent/image.png")
	if err == nil {
		t.Error("LoadImageInfo should fail for non-existent file")
	}
}
