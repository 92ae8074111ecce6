// Package omr extracts multiple-choice answers from answer-sheet images.
//
// It ties together the raster stages in package imaging and the geometry
// stages in package detection and turns every outcome into a Result that is
// safe to hand to a client.
//
// # Pipeline
//
//  1. ValidateFile: existence, extension, 0 < size <= MaxFileBytes
//  2. imaging.Loader: decode PNG/JPEG, or render page 1 of a PDF
//  3. imaging.Preprocess: grayscale, blur, threshold union, closing/opening
//  4. detection.FindExternalContours
//  5. detection.FilterBubbles: area band, circularity, aspect ratio
//  6. detection.AnalyzeLayout: columns, then rows within each column
//  7. detection.ExtractAnswers and detection.Confidence
//
// # Results
//
// Process never returns an error. Failures are classified into an ErrorCode
// and a message beginning with "File not found: ", "Invalid input: " or
// "Error processing OMR sheet: ", with empty answers and zero confidence.
//
// # Configuration
//
// Config carries every threshold of the pipeline. It is loaded from YAML
// with LoadConfig and fixed when the Processor is built; use
// ProcessWithConfig to try other settings for one call.
//
// # Concurrency
//
// A Processor holds no mutable state. Calls may run concurrently, and
// ProcessBatch fans independent sheets out over a bounded worker group.
package omr
