package omr

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDebug(t *testing.T) {
	sheet := twoColumnSheet(func(block, row, choice int) bool { return block == 0 && choice == 1 })
	path := writePNG(t, sheet.draw(), "sheet.png")

	report := newTestProcessor(t).Debug(path, 10, 4, false)

	require.Empty(t, report.Error)
	_, err := uuid.Parse(report.RunID)
	require.NoError(t, err, "run ID should be a UUID")
	require.Equal(t, 1280, report.Width)
	require.Equal(t, 700, report.Height)
	require.Equal(t, 1.0, report.Scale)
	require.Equal(t, 40, report.ContoursFound)
	require.Equal(t, 40, report.Filter.Accepted)
	require.Equal(t, 40, report.TotalBubbles)
	require.Len(t, report.Bubbles, 40)
	require.Nil(t, report.Overlay)

	require.Len(t, report.Columns, 2)
	for c, col := range report.Columns {
		require.Equal(t, c, col.Index)
		require.Len(t, col.Rows, 5)
		for _, row := range col.Rows {
			require.Len(t, row.Bubbles, 4)
			for i, b := range row.Bubbles {
				require.Equal(t, i, b.Position)
				require.Equal(t, string(rune('A'+i)), b.Letter)
				want := c == 0 && i == 1
				require.Equal(t, want, b.AboveThreshold, "column %d position %d fill %f", c, i, b.FillRatio)
			}
		}
	}

	// diagnostics only: no answer map in the JSON
	data, err := json.Marshal(report)
	require.NoError(t, err)
	require.NotContains(t, string(data), `"answers"`)
	require.Contains(t, string(data), `"above_confidence_threshold":true`)
}

func TestDebug_Overlay(t *testing.T) {
	path := writePNG(t, twoColumnSheet(nil).draw(), "sheet.png")

	report := newTestProcessor(t).Debug(path, 10, 4, true)

	require.Empty(t, report.Error)
	require.NotNil(t, report.Overlay)
	require.Equal(t, "image/png", report.Overlay.MimeType)

	data, err := base64.StdEncoding.DecodeString(report.Overlay.ImageBase64)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 1280, img.Bounds().Dx())
	require.Equal(t, 700, img.Bounds().Dy())
}

func TestDebug_Failure(t *testing.T) {
	report := newTestProcessor(t).Debug(writeFile(t, "empty.png", nil), 5, 4, true)

	require.Equal(t, CodeUnsupportedFormat, report.Code)
	require.Contains(t, report.Error, "Invalid input")
	require.NotEmpty(t, report.RunID)
	require.Zero(t, report.TotalBubbles)
	require.Nil(t, report.Overlay)
}

func TestOverlayShapes(t *testing.T) {
	path := writePNG(t, twoColumnSheet(func(block, row, choice int) bool { return choice == 0 }).draw(), "sheet.png")
	p := newTestProcessor(t)
	a, err := p.analyze(path, 10, 4, p.cfg)
	require.NoError(t, err)

	boxes, separators := overlayShapes(a.columns, p.cfg.ConfidenceThreshold)
	require.Len(t, boxes, 40)
	require.Len(t, separators, 1)
	require.InDelta(t, 635, separators[0], 3)

	labels := 0
	for _, b := range boxes {
		if b.Label != "" {
			labels++
			require.True(t, b.Marked, "row labels sit on the first bubble, which is marked here")
		}
	}
	require.Equal(t, 10, labels)
}
