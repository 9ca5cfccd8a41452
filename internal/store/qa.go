package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jabumarket/jabumarket/internal/model"
	"golang.org/x/sync/errgroup"
)

type QAStore struct {
	db *sql.DB
}

func NewQAStore(db *sql.DB) *QAStore {
	return &QAStore{db: db}
}

func scanQAQuestion(scanner interface{ Scan(...any) error }) (*model.QAQuestion, error) {
	var q model.QAQuestion
	err := scanner.Scan(&q.ID, &q.AuthorID, &q.Title, &q.Body, &q.Upvotes, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

const qaQuestionCols = `id, author_id, title, body, upvotes, created_at`

func (s *QAStore) CreateQuestion(authorID, title, body string) (*model.QAQuestion, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO qa_questions (id, author_id, title, body) VALUES (?, ?, ?, ?)`,
		id, authorID, title, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}
	return s.GetQuestion(id)
}

func (s *QAStore) GetQuestion(id string) (*model.QAQuestion, error) {
	row := s.db.QueryRow(`SELECT `+qaQuestionCols+` FROM qa_questions WHERE id = ?`, id)
	q, err := scanQAQuestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

func (s *QAStore) ListQuestions() ([]model.QAQuestion, error) {
	rows, err := s.db.Query(`SELECT ` + qaQuestionCols + ` FROM qa_questions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []model.QAQuestion
	for rows.Next() {
		q, err := scanQAQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (s *QAStore) UpvoteQuestion(id string) error {
	_, err := s.db.Exec(`UPDATE qa_questions SET upvotes = upvotes + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("upvote question: %w", err)
	}
	return nil
}

func scanQAAnswer(scanner interface{ Scan(...any) error }) (*model.QAAnswer, error) {
	var a model.QAAnswer
	var accepted int
	err := scanner.Scan(&a.ID, &a.QuestionID, &a.AuthorID, &a.Body, &a.Upvotes, &accepted, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Accepted = accepted != 0
	return &a, nil
}

const qaAnswerCols = `id, question_id, author_id, body, upvotes, accepted, created_at`

func (s *QAStore) CreateAnswer(questionID, authorID, body string) (*model.QAAnswer, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO qa_answers (id, question_id, author_id, body) VALUES (?, ?, ?, ?)`,
		id, questionID, authorID, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}
	return s.GetAnswer(id)
}

func (s *QAStore) GetAnswer(id string) (*model.QAAnswer, error) {
	row := s.db.QueryRow(`SELECT `+qaAnswerCols+` FROM qa_answers WHERE id = ?`, id)
	a, err := scanQAAnswer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return a, nil
}

func (s *QAStore) ListAnswers(questionID string) ([]model.QAAnswer, error) {
	rows, err := s.db.Query(
		`SELECT `+qaAnswerCols+` FROM qa_answers WHERE question_id = ?
		 ORDER BY accepted DESC, upvotes DESC, created_at ASC`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var out []model.QAAnswer
	for rows.Next() {
		a, err := scanQAAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *QAStore) UpvoteAnswer(id string) error {
	_, err := s.db.Exec(`UPDATE qa_answers SET upvotes = upvotes + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("upvote answer: %w", err)
	}
	return nil
}

// AcceptAnswer marks one answer accepted and clears any previous acceptance
// on the same question.
func (s *QAStore) AcceptAnswer(questionID, answerID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE qa_answers SET accepted = 0 WHERE question_id = ?`, questionID); err != nil {
		return fmt.Errorf("clear accepted: %w", err)
	}
	if _, err := tx.Exec(
		`UPDATE qa_answers SET accepted = 1 WHERE id = ? AND question_id = ?`,
		answerID, questionID,
	); err != nil {
		return fmt.Errorf("set accepted: %w", err)
	}
	return tx.Commit()
}

// Streams fetches the full question and answer streams concurrently for
// leaderboard aggregation.
func (s *QAStore) Streams(ctx context.Context) ([]model.QAQuestion, []model.QAAnswer, error) {
	var questions []model.QAQuestion
	var answers []model.QAAnswer

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		questions, err = s.ListQuestions()
		return err
	})
	g.Go(func() error {
		rows, err := s.db.Query(`SELECT ` + qaAnswerCols + ` FROM qa_answers`)
		if err != nil {
			return fmt.Errorf("list all answers: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			a, err := scanQAAnswer(rows)
			if err != nil {
				return fmt.Errorf("scan answer: %w", err)
			}
			answers = append(answers, *a)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return questions, answers, nil
}
