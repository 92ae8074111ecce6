package omr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/omr-tools-mcp/internal/detection"
)

// DefaultMaxFileBytes is the largest sheet file accepted (10 MiB).
const DefaultMaxFileBytes = 10 << 20

// DefaultExtensions are the sheet file extensions accepted by default.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".pdf"}

// ValidateFile checks a sheet file before any decoding: it must exist, be a
// regular file, hold between 1 and maxBytes bytes and carry one of the
// allowed extensions (case-insensitive). A non-positive maxBytes falls back
// to DefaultMaxFileBytes.
func ValidateFile(path string, maxBytes int64, allowedExt []string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrUnsupportedFormat, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !hasExtension(allowedExt, ext) {
		return fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}

	size := info.Size()
	if size == 0 {
		return fmt.Errorf("%w: file is empty", ErrUnsupportedFormat)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	if size > maxBytes {
		return fmt.Errorf("%w: file is %d bytes, limit is %d", ErrUnsupportedFormat, size, maxBytes)
	}
	return nil
}

func hasExtension(allowed []string, ext string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}

// checkArgs validates the per-call question and choice counts.
func checkArgs(totalQuestions, choices int) error {
	if totalQuestions <= 0 {
		return fmt.Errorf("%w: total_questions must be positive, got %d", ErrInvalidArgument, totalQuestions)
	}
	if choices < 1 || choices > detection.MaxChoices {
		return fmt.Errorf("%w: number_of_choices must be between 1 and %d, got %d",
			ErrInvalidArgument, detection.MaxChoices, choices)
	}
	return nil
}
