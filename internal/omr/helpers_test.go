package omr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

const (
	bubbleRadius   = 50
	ringThickness  = 6
	bubbleSpacing  = 130
	sheetChoices   = 4
	sheetQuestions = 5
)

// sheetLayout places printed bubble outlines on a white page. marked reports
// whether the bubble at (column block, row, choice) is filled in.
type sheetLayout struct {
	width, height int
	blocks        []int // x of the first choice in each column block
	top           int   // y of the first row
	rows          int
	choices       int
	marked        func(block, row, choice int) bool
}

func (s sheetLayout) draw() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for b, x0 := range s.blocks {
		for r := 0; r < s.rows; r++ {
			for c := 0; c < s.choices; c++ {
				cx, cy := x0+c*bubbleSpacing, s.top+r*bubbleSpacing
				if s.marked != nil && s.marked(b, r, c) {
					drawCircle(img, cx, cy, bubbleRadius, 0)
				} else {
					drawCircle(img, cx, cy, bubbleRadius, bubbleRadius-ringThickness)
				}
			}
		}
	}
	return img
}

// drawCircle paints black the pixels whose distance from (cx, cy) lies in
// (inner, outer]. inner 0 gives a solid disc.
func drawCircle(img *image.RGBA, cx, cy, outer, inner int) {
	black := color.RGBA{0, 0, 0, 255}
	for y := cy - outer; y <= cy+outer; y++ {
		for x := cx - outer; x <= cx+outer; x++ {
			d2 := (x-cx)*(x-cx) + (y-cy)*(y-cy)
			if d2 > outer*outer {
				continue
			}
			if inner > 0 && d2 <= inner*inner {
				continue
			}
			img.Set(x, y, black)
		}
	}
}

// singleColumnSheet is a 4-choice, 5-question sheet in one column block.
func singleColumnSheet(marked func(block, row, choice int) bool) sheetLayout {
	return sheetLayout{
		width:   720,
		height:  760,
		blocks:  []int{100},
		top:     100,
		rows:    sheetQuestions,
		choices: sheetChoices,
		marked:  marked,
	}
}

// twoColumnSheet is a 4-choice, 10-question sheet split over two blocks.
func twoColumnSheet(marked func(block, row, choice int) bool) sheetLayout {
	return sheetLayout{
		width:   1280,
		height:  700,
		blocks:  []int{80, 800},
		top:     80,
		rows:    sheetQuestions,
		choices: sheetChoices,
		marked:  marked,
	}
}

func writePNG(t *testing.T, img image.Image, name string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return writeFile(t, name, buf.Bytes())
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// writeOnePagePDF writes a valid single-page PDF with no content.
func writeOnePagePDF(t *testing.T) string {
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

	return writeFile(t, "sheet.pdf", buf.Bytes())
}

func newTestProcessor(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	p, err := New(DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}
