// Package imaging loads answer sheets and turns them into binary mark masks.
//
// This package implements the raster half of bubble-sheet reading: decoding
// the sheet file, normalizing it to a working size and separating pencil or
// ink marks from the paper. The result of Preprocess is a Mask that the
// detection package traces for candidate bubbles.
//
// # Loading
//
// Loader decodes PNG and JPEG files directly. PDF documents are validated
// with pdfcpu and their first page is rendered through a PageRasterizer
// (pdftoppm by default). LoadImageInfo reports dimensions, format and page
// count without running detection.
//
// # Preprocessing
//
// Preprocess runs the following steps:
//  1. Scale the image down so its longer side fits MaxDimension
//  2. Convert to grayscale and apply a 5x5 Gaussian blur
//  3. Run every configured ThresholdStrategy and union their masks
//  4. Close small gaps, then open away isolated speckle
//
// Four strategies are built in: adaptive (local mean), Otsu (global
// histogram split), fixed (absolute darkness cutoff) and ink (HSV range for
// colored pens). StrategyByName resolves their configured names.
//
// Filtering, thresholding and morphology run on bild. Building with the
// gocv tag moves morphology and the Otsu split onto OpenCV; MorphologyBackend
// reports which one is compiled in.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Masks and grayscale planes always have their origin at (0, 0)
//
// # Overlays
//
// Overlay draws detected bubbles, row labels and column separators onto a
// copy of the sheet and returns it as base64 PNG for debugging.
//
// # Thread Safety
//
// Loader holds no per-file state and may be shared between goroutines. All
// other functions are stateless and never modify their inputs.
//
// # Error Handling
//
// Loader errors wrap ErrNotFound, ErrUnreadableImage or ErrRasterize so
// callers can classify them with errors.Is.
package imaging
