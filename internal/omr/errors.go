package omr

import (
	"errors"
	"strings"

	"github.com/ironsheep/omr-tools-mcp/internal/imaging"
)

// Pipeline errors. Stages wrap them with fmt.Errorf("...: %w", err) and
// Classify maps them to a Result code at the boundary.
var (
	// ErrNotFound is returned when the sheet path does not exist.
	ErrNotFound = imaging.ErrNotFound

	// ErrUnsupportedFormat is returned for a disallowed extension, an empty
	// or oversized file.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrUnreadableImage is returned when the file cannot be decoded.
	ErrUnreadableImage = imaging.ErrUnreadableImage

	// ErrRasterize is returned when a PDF page could not be rendered.
	ErrRasterize = imaging.ErrRasterize

	// ErrNoRegionsDetected is returned when the mask yields no contours.
	ErrNoRegionsDetected = errors.New("no bubbles detected")

	// ErrNoValidRegions is returned when every contour fails the shape filter.
	ErrNoValidRegions = errors.New("no valid bubbles after filtering")

	// ErrInvalidArgument is returned for out-of-range question or choice
	// counts and for an invalid per-call configuration.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrorCode identifies the failure class of a Result.
type ErrorCode string

// Error codes carried in Result.Code.
const (
	CodeOK                ErrorCode = ""
	CodeNotFound          ErrorCode = "not_found"
	CodeUnsupportedFormat ErrorCode = "unsupported_format"
	CodeNoRegions         ErrorCode = "no_regions_detected"
	CodeNoValidRegions    ErrorCode = "no_valid_regions"
	CodeInvalidArgument   ErrorCode = "invalid_argument"
	CodeInternal          ErrorCode = "internal_error"
)

// User-facing messages. Callers match on these prefixes.
const (
	msgSuccess          = "OMR sheet processed successfully"
	msgNotFoundPrefix   = "File not found: "
	msgInvalidPrefix    = "Invalid input: "
	msgProcessingPrefix = "Error processing OMR sheet: "

	msgUnsupported = "Unsupported file format. Please use JPG, JPEG, PNG, or PDF"
	msgUnreadable  = "Could not load image file. The file may be corrupted or in an unsupported format."
	msgNoRegions   = "No bubbles detected in the image. Please check the image quality and format."
	msgNoValid     = "No valid bubbles found after filtering. Please check the image quality."
)

// Classify maps a pipeline error to its code and user-facing message.
//
// # Mapping
//
//	ErrNotFound            -> not_found           "File not found: <path>"
//	ErrUnsupportedFormat   -> unsupported_format  "Invalid input: Unsupported file format..."
//	ErrUnreadableImage     -> unsupported_format  "Invalid input: Could not load image file..."
//	ErrNoRegionsDetected   -> no_regions_detected "Invalid input: No bubbles detected..."
//	ErrNoValidRegions      -> no_valid_regions    "Invalid input: No valid bubbles found..."
//	ErrInvalidArgument     -> invalid_argument    "Invalid input: <detail>"
//	anything else          -> internal_error      "Error processing OMR sheet: <err>"
func Classify(err error, path string) (ErrorCode, string) {
	switch {
	case err == nil:
		return CodeOK, msgSuccess
	case errors.Is(err, ErrNotFound):
		return CodeNotFound, msgNotFoundPrefix + path
	case errors.Is(err, ErrUnsupportedFormat):
		return CodeUnsupportedFormat, msgInvalidPrefix + msgUnsupported
	case errors.Is(err, ErrUnreadableImage):
		if strings.Contains(err.Error(), "no pages found") {
			return CodeUnsupportedFormat, msgInvalidPrefix + "Could not convert PDF to image - no pages found"
		}
		return CodeUnsupportedFormat, msgInvalidPrefix + msgUnreadable
	case errors.Is(err, ErrNoRegionsDetected):
		return CodeNoRegions, msgInvalidPrefix + msgNoRegions
	case errors.Is(err, ErrNoValidRegions):
		return CodeNoValidRegions, msgInvalidPrefix + msgNoValid
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument, msgInvalidPrefix + strings.TrimPrefix(err.Error(), ErrInvalidArgument.Error()+": ")
	case errors.Is(err, ErrRasterize):
		return CodeInternal, msgProcessingPrefix + "PDF conversion error: " + err.Error()
	default:
		return CodeInternal, msgProcessingPrefix + err.Error()
	}
}
