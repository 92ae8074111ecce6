package detection

import (
	"encoding/json"
	"sort"
	"strconv"
)

// MaxChoices is the number of letters available for choices (A-Z).
const MaxChoices = 26

// AnswerMap maps 1-based question numbers to choice letters. Unanswered
// questions are absent.
type AnswerMap map[int]string

// MarshalJSON encodes the map with stringified question numbers as keys and
// never as null.
func (a AnswerMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(a))
	for q, letter := range a {
		out[strconv.Itoa(q)] = letter
	}
	return json.Marshal(out)
}

// Questions returns the answered question numbers in ascending order.
func (a AnswerMap) Questions() []int {
	qs := make([]int, 0, len(a))
	for q := range a {
		qs = append(qs, q)
	}
	sort.Ints(qs)
	return qs
}

// ChoiceLetter maps a 0-based choice index to its letter: 0 → "A".
// Indices outside A-Z return "".
func ChoiceLetter(i int) string {
	if i < 0 || i >= MaxChoices {
		return ""
	}
	return string(rune('A' + i))
}

// ExtractAnswers numbers rows sequentially (columns left to right, rows top
// to bottom, continuing across columns) up to totalQuestions and picks each
// row's marked choice.
//
// Within a row only the first choices bubbles count. The bubble with the
// highest fill ratio strictly above threshold wins; on equal fill the
// leftmost is kept. Rows with no bubble above threshold stay unanswered.
func ExtractAnswers(columns []Column, totalQuestions, choices int, threshold float64) AnswerMap {
	answers := make(AnswerMap)
	if totalQuestions <= 0 || choices <= 0 {
		return answers
	}
	if choices > MaxChoices {
		choices = MaxChoices
	}

	question := 1
	for _, col := range columns {
		for _, row := range col.Rows {
			if question > totalQuestions {
				return answers
			}
			if len(row.Bubbles) == 0 {
				continue
			}
			if idx := markedChoice(row, choices, threshold); idx >= 0 {
				answers[question] = ChoiceLetter(idx)
			}
			question++
		}
	}
	return answers
}

// markedChoice returns the index of the winning bubble in row, or -1.
func markedChoice(row Row, choices int, threshold float64) int {
	best := -1
	bestFill := 0.0
	for i, b := range row.Bubbles {
		if i >= choices {
			break
		}
		if b.FillRatio > bestFill && b.FillRatio > threshold {
			best = i
			bestFill = b.FillRatio
		}
	}
	return best
}
