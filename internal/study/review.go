package study

import "github.com/jabumarket/jabumarket/internal/model"

// Question outcomes in an attempt review. Derived on read, never stored.
const (
	ResultCorrect    = "correct"
	ResultWrong      = "wrong"
	ResultUnanswered = "unanswered"
)

// QuestionReview is one question's derived state within an attempt review.
type QuestionReview struct {
	Question model.PracticeQuestion `json:"question"`
	Options  []model.PracticeOption `json:"options"`
	Selected *string                `json:"selected,omitempty"`
	Correct  string                 `json:"correct"`
	Result   string                 `json:"result"`
	Flagged  bool                   `json:"flagged"`
}

// Classify derives a question's outcome from the recorded selection and the
// id of its correct option.
func Classify(correctOptionID string, selected *string) string {
	switch {
	case selected == nil:
		return ResultUnanswered
	case *selected == correctOptionID:
		return ResultCorrect
	default:
		return ResultWrong
	}
}

// Review assembles the per-question derived states for one attempt.
// answers maps question id to the selected option id (absent or nil means
// unanswered); flagged holds the user's persisted review flags.
func Review(questions []model.PracticeQuestion, options []model.PracticeOption, answers map[string]*string, flagged map[string]bool) []QuestionReview {
	byQuestion := make(map[string][]model.PracticeOption)
	correct := make(map[string]string)
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
		if o.IsCorrect {
			correct[o.QuestionID] = o.ID
		}
	}

	out := make([]QuestionReview, 0, len(questions))
	for _, q := range questions {
		sel := answers[q.ID]
		out = append(out, QuestionReview{
			Question: q,
			Options:  byQuestion[q.ID],
			Selected: sel,
			Correct:  correct[q.ID],
			Result:   Classify(correct[q.ID], sel),
			Flagged:  flagged[q.ID],
		})
	}
	return out
}

// Score tallies an answer set against the correct options: total correct
// and total answered.
func Score(questions []model.PracticeQuestion, options []model.PracticeOption, answers map[string]*string) (score, answered int) {
	correct := make(map[string]string)
	for _, o := range options {
		if o.IsCorrect {
			correct[o.QuestionID] = o.ID
		}
	}
	for _, q := range questions {
		sel := answers[q.ID]
		if sel == nil {
			continue
		}
		answered++
		if *sel == correct[q.ID] {
			score++
		}
	}
	return score, answered
}
