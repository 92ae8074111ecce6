// Package detection turns a binary mark mask into answer-sheet structure.
//
// This package implements the geometric half of bubble-sheet reading. It
// finds candidate regions in the mask produced by the imaging package and
// keeps the ones shaped like answer bubbles. The sheet layout is inferred
// from their positions and one choice is read per question.
//
// # Pipeline
//
//  1. Region detection: FindExternalContours traces the outer boundary of
//     every foreground region that is not nested inside another region
//  2. Region filtering: FilterBubbles applies area, circularity and aspect
//     tests and measures each bubble's fill ratio against the mask
//  3. Layout: AnalyzeLayout splits bubbles into columns using x-gap
//     statistics, then into rows inside each column using y-gap statistics
//  4. Answers: ExtractAnswers numbers rows across columns and picks the most
//     filled bubble above the threshold in each row
//  5. Confidence: Confidence folds mark strength and completeness into one
//     score
//
// Every stage is a pure function of its inputs. Nothing is cached and no
// input is modified, so the functions are safe for concurrent use.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Rect widths and heights count pixels (a single pixel is 1x1)
//
// # Contour Backends
//
// The default build traces contours in pure Go. Building with the gocv tag
// backs FindExternalContours with OpenCV's findContours; both return the
// same external, unsimplified boundaries in raster order. Backend reports
// which one was compiled in.
//
// # Limitations
//
// The layout heuristics assume an upright sheet: rows are horizontal and
// columns vertical. Skewed photographs may merge or split rows.
package detection
