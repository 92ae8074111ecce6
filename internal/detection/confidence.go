package detection

import "math"

// Confidence scores a whole extraction in [0, 1]:
//
//	0.4·avgFill + 0.4·answerRatio + 0.2·detectionRatio
//
// avgFill is the mean fill ratio over bubbles above threshold (0 if none),
// answerRatio is answered/totalQuestions and detectionRatio is
// bubbles/(totalQuestions·choices), both capped at 1. The result is rounded
// to two decimals. No bubbles gives 0.
func Confidence(bubbles []Bubble, answers AnswerMap, totalQuestions, choices int, threshold float64) float64 {
	if len(bubbles) == 0 {
		return 0
	}

	sum, n := 0.0, 0
	for _, b := range bubbles {
		if b.FillRatio > threshold {
			sum += b.FillRatio
			n++
		}
	}
	avgFill := 0.0
	if n > 0 {
		avgFill = sum / float64(n)
	}

	answerRatio := 0.0
	if totalQuestions > 0 {
		answerRatio = math.Min(1, float64(len(answers))/float64(totalQuestions))
	}

	detectionRatio := 0.0
	if expected := totalQuestions * choices; expected > 0 {
		detectionRatio = math.Min(1, float64(len(bubbles))/float64(expected))
	}

	score := math.Min(1, 0.4*avgFill+0.4*answerRatio+0.2*detectionRatio)
	score = math.Max(0, score)
	return math.Round(score*100) / 100
}
