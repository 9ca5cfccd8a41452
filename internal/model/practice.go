package model

import "time"

// PracticeSet is one practice quiz (typically built from a past question
// paper for a single course).
type PracticeSet struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CourseCode string    `json:"course_code"`
	CreatedAt  time.Time `json:"created_at"`
}

// PracticeQuestion belongs to one set and has two or more options, exactly
// one of which is correct.
type PracticeQuestion struct {
	ID        string    `json:"id"`
	SetID     string    `json:"set_id"`
	Prompt    string    `json:"prompt"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// PracticeOption is one answer choice for a question.
type PracticeOption struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Body       string `json:"body"`
	IsCorrect  bool   `json:"-"`
}

// Attempt is one user's run through a practice set. SubmittedAt is nil
// while the attempt is in progress.
type Attempt struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	SetID       string     `json:"set_id"`
	CourseCode  string     `json:"course_code"`
	SetTitle    string     `json:"set_title"`
	Score       int        `json:"score"`
	Answered    int        `json:"answered"`
	Questions   int        `json:"questions"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AttemptAnswer records the option a user selected for one question.
// OptionID is nil for questions left unanswered.
type AttemptAnswer struct {
	AttemptID  string  `json:"attempt_id"`
	QuestionID string  `json:"question_id"`
	OptionID   *string `json:"option_id,omitempty"`
}

// ReviewFlag marks a question a user wants to revisit. Flags are persisted
// per user per question so they follow the account across devices.
type ReviewFlag struct {
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	CreatedAt  time.Time `json:"created_at"`
}
