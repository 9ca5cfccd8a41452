package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jabumarket/jabumarket/internal/listquery"
	"github.com/jabumarket/jabumarket/internal/model"
	"github.com/jabumarket/jabumarket/internal/study"
)

type PracticeStore struct {
	db *sql.DB
}

func NewPracticeStore(db *sql.DB) *PracticeStore {
	return &PracticeStore{db: db}
}

// NewQuestion is the input shape for seeding a set's questions.
type NewQuestion struct {
	Prompt  string
	Options []NewOption
}

type NewOption struct {
	Body    string
	Correct bool
}

// CreateSet creates a practice set with its questions and options in one
// transaction. Every question needs at least two options with exactly one
// marked correct.
func (s *PracticeStore) CreateSet(title, courseCode string, questions []NewQuestion) (*model.PracticeSet, error) {
	for i, q := range questions {
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("question %d: needs at least 2 options", i+1)
		}
		correct := 0
		for _, o := range q.Options {
			if o.Correct {
				correct++
			}
		}
		if correct != 1 {
			return nil, fmt.Errorf("question %d: needs exactly 1 correct option, has %d", i+1, correct)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	setID := uuid.NewString()
	if _, err := tx.Exec(
		`INSERT INTO practice_sets (id, title, course_code) VALUES (?, ?, ?)`,
		setID, title, courseCode,
	); err != nil {
		return nil, fmt.Errorf("insert set: %w", err)
	}

	for i, q := range questions {
		qID := uuid.NewString()
		if _, err := tx.Exec(
			`INSERT INTO practice_questions (id, set_id, prompt, position) VALUES (?, ?, ?, ?)`,
			qID, setID, q.Prompt, i+1,
		); err != nil {
			return nil, fmt.Errorf("insert question: %w", err)
		}
		for _, o := range q.Options {
			correct := 0
			if o.Correct {
				correct = 1
			}
			if _, err := tx.Exec(
				`INSERT INTO practice_options (id, question_id, body, is_correct) VALUES (?, ?, ?, ?)`,
				uuid.NewString(), qID, o.Body, correct,
			); err != nil {
				return nil, fmt.Errorf("insert option: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetSet(setID)
}

func scanSet(scanner interface{ Scan(...any) error }) (*model.PracticeSet, error) {
	var ps model.PracticeSet
	err := scanner.Scan(&ps.ID, &ps.Title, &ps.CourseCode, &ps.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

func (s *PracticeStore) GetSet(id string) (*model.PracticeSet, error) {
	row := s.db.QueryRow(`SELECT id, title, course_code, created_at FROM practice_sets WHERE id = ?`, id)
	ps, err := scanSet(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}
	return ps, nil
}

func (s *PracticeStore) ListSets() ([]model.PracticeSet, error) {
	rows, err := s.db.Query(`SELECT id, title, course_code, created_at FROM practice_sets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	var out []model.PracticeSet
	for rows.Next() {
		ps, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		out = append(out, *ps)
	}
	return out, rows.Err()
}

// Questions returns the set's questions in position order.
func (s *PracticeStore) Questions(setID string) ([]model.PracticeQuestion, error) {
	rows, err := s.db.Query(
		`SELECT id, set_id, prompt, position, created_at FROM practice_questions WHERE set_id = ? ORDER BY position`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []model.PracticeQuestion
	for rows.Next() {
		var q model.PracticeQuestion
		if err := rows.Scan(&q.ID, &q.SetID, &q.Prompt, &q.Position, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Options returns every option for the set's questions, correctness
// included; callers decide whether to expose IsCorrect.
func (s *PracticeStore) Options(setID string) ([]model.PracticeOption, error) {
	rows, err := s.db.Query(
		`SELECT o.id, o.question_id, o.body, o.is_correct
		 FROM practice_options o
		 JOIN practice_questions q ON o.question_id = q.id
		 WHERE q.set_id = ?
		 ORDER BY q.position, o.id`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	var out []model.PracticeOption
	for rows.Next() {
		var o model.PracticeOption
		var correct int
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Body, &correct); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		o.IsCorrect = correct != 0
		out = append(out, o)
	}
	return out, rows.Err()
}

// SubmitAttempt records an attempt with its answers and the score derived
// from them. answers maps question id to the selected option id; missing or
// nil entries are unanswered.
func (s *PracticeStore) SubmitAttempt(userID, setID string, answers map[string]*string) (*model.Attempt, error) {
	questions, err := s.Questions(setID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("set %s has no questions", setID)
	}
	options, err := s.Options(setID)
	if err != nil {
		return nil, err
	}

	score, answered := study.Score(questions, options, answers)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.Exec(
		`INSERT INTO attempts (id, user_id, set_id, score, answered, questions, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, datetime('now'))`,
		id, userID, setID, score, answered, len(questions),
	); err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}

	for _, q := range questions {
		if _, err := tx.Exec(
			`INSERT INTO attempt_answers (attempt_id, question_id, option_id) VALUES (?, ?, ?)`,
			id, q.ID, answers[q.ID],
		); err != nil {
			return nil, fmt.Errorf("insert answer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetAttempt(id)
}

func scanAttempt(scanner interface{ Scan(...any) error }) (*model.Attempt, error) {
	var a model.Attempt
	var submitted sql.NullTime
	err := scanner.Scan(
		&a.ID, &a.UserID, &a.SetID, &a.Score, &a.Answered, &a.Questions,
		&submitted, &a.CreatedAt, &a.CourseCode, &a.SetTitle,
	)
	if err != nil {
		return nil, err
	}
	if submitted.Valid {
		a.SubmittedAt = &submitted.Time
	}
	return &a, nil
}

const attemptCols = `a.id, a.user_id, a.set_id, a.score, a.answered, a.questions, a.submitted_at, a.created_at, s.course_code, s.title`

// HistoryDef drives the practice history page. The engine joins the set so
// rows carry course code and title; callers always scope by user via Extra.
var HistoryDef = listquery.Definition{
	Table:         "attempts a JOIN practice_sets s ON a.set_id = s.id",
	Columns:       attemptCols,
	SearchColumns: []string{"s.title", "s.course_code"},
	Filters: []listquery.Filter{
		{Param: "course_code", Column: "s.course_code"},
	},
	Sorts: map[string]string{
		"newest":     "a.created_at DESC",
		"score_desc": "a.score DESC",
	},
	DefaultSort: "newest",
	TieBreak:    "a.created_at DESC, a.id DESC",
	PageSize:    20,
}

// History lists one user's attempts through the query engine.
func (s *PracticeStore) History(ctx context.Context, userID string, p listquery.Params) (*listquery.Page[model.Attempt], error) {
	p.Extra = append(p.Extra, listquery.Cond{Expr: "a.user_id = ?", Args: []any{userID}})
	return listquery.Run(ctx, s.db, HistoryDef, p, func(sc listquery.Scanner) (model.Attempt, error) {
		a, err := scanAttempt(sc)
		if err != nil {
			return model.Attempt{}, err
		}
		return *a, nil
	})
}

func (s *PracticeStore) GetAttempt(id string) (*model.Attempt, error) {
	row := s.db.QueryRow(
		`SELECT `+attemptCols+` FROM attempts a JOIN practice_sets s ON a.set_id = s.id WHERE a.id = ?`,
		id,
	)
	a, err := scanAttempt(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return a, nil
}

// Answers returns the selections recorded for an attempt keyed by question.
func (s *PracticeStore) Answers(attemptID string) (map[string]*string, error) {
	rows, err := s.db.Query(
		`SELECT question_id, option_id FROM attempt_answers WHERE attempt_id = ?`,
		attemptID,
	)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*string)
	for rows.Next() {
		var questionID string
		var optionID sql.NullString
		if err := rows.Scan(&questionID, &optionID); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if optionID.Valid {
			out[questionID] = &optionID.String
		} else {
			out[questionID] = nil
		}
	}
	return out, rows.Err()
}

// ToggleFlag flips the user's review flag on a question and reports the new
// state.
func (s *PracticeStore) ToggleFlag(userID, questionID string) (bool, error) {
	result, err := s.db.Exec(
		`DELETE FROM review_flags WHERE user_id = ? AND question_id = ?`,
		userID, questionID,
	)
	if err != nil {
		return false, fmt.Errorf("clear flag: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if deleted > 0 {
		return false, nil
	}
	if _, err := s.db.Exec(
		`INSERT INTO review_flags (user_id, question_id) VALUES (?, ?)`,
		userID, questionID,
	); err != nil {
		return false, fmt.Errorf("set flag: %w", err)
	}
	return true, nil
}

// Flags returns the user's flagged question ids within a set.
func (s *PracticeStore) Flags(userID, setID string) (map[string]bool, error) {
	rows, err := s.db.Query(
		`SELECT f.question_id
		 FROM review_flags f
		 JOIN practice_questions q ON f.question_id = q.id
		 WHERE f.user_id = ? AND q.set_id = ?`,
		userID, setID,
	)
	if err != nil {
		return nil, fmt.Errorf("list flags: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan flag: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}
