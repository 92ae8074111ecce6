package omr

import (
	"time"

	"github.com/ironsheep/omr-tools-mcp/internal/detection"
)

// Result is the outcome of processing one sheet.
//
// On failure Answers is empty, Confidence and TotalBubblesDetected are zero
// and Message starts with one of "File not found: ", "Invalid input: " or
// "Error processing OMR sheet: ".
type Result struct {
	// Success is true when answers were extracted (possibly none).
	Success bool `json:"success"`

	// Answers maps 1-based question numbers to choice letters.
	// Unanswered questions are absent.
	Answers detection.AnswerMap `json:"answers"`

	// Confidence is the heuristic quality score in [0, 1], two decimals.
	Confidence float64 `json:"confidence"`

	// ProcessingTime is the wall-clock duration of the call in seconds.
	ProcessingTime float64 `json:"processing_time"`

	// TotalBubblesDetected counts the regions that passed the shape filter.
	TotalBubblesDetected int `json:"total_bubbles_detected"`

	// Message is a human-readable status line.
	Message string `json:"message"`

	// Code classifies failures; empty on success.
	Code ErrorCode `json:"code,omitempty"`
}

func success(answers detection.AnswerMap, confidence float64, bubbles int, start time.Time) Result {
	return Result{
		Success:              true,
		Answers:              answers,
		Confidence:           confidence,
		ProcessingTime:       elapsed(start),
		TotalBubblesDetected: bubbles,
		Message:              msgSuccess,
	}
}

func failure(err error, path string, start time.Time) Result {
	code, msg := Classify(err, path)
	return Result{
		Success:        false,
		Answers:        detection.AnswerMap{},
		ProcessingTime: elapsed(start),
		Message:        msg,
		Code:           code,
	}
}

func elapsed(start time.Time) float64 {
	return time.Since(start).Seconds()
}
