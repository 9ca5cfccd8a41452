package study

import (
	"testing"

	"github.com/jabumarket/jabumarket/internal/model"
)

func TestLeaderboardScoring(t *testing.T) {
	// Spec worked example: 2 accepted answers, 5 answers total, 3 questions,
	// 10 question upvotes -> 2*5 + 5*2 + 3*1 + 10*1 = 33.
	questions := []model.QAQuestion{
		{ID: "q1", AuthorID: "ada", Upvotes: 4},
		{ID: "q2", AuthorID: "ada", Upvotes: 6},
		{ID: "q3", AuthorID: "ada"},
	}
	var answers []model.QAAnswer
	for i := 0; i < 5; i++ {
		answers = append(answers, model.QAAnswer{ID: string(rune('a' + i)), AuthorID: "ada", Accepted: i < 2})
	}

	entries := Leaderboard(questions, answers, 10)
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Points != 33 {
		t.Errorf("points = %d, want 33", e.Points)
	}
	if e.Questions != 3 || e.QuestionUpvotes != 10 || e.Answers != 5 || e.Accepted != 2 {
		t.Errorf("tallies = %+v, want 3/10/5/2", e)
	}
}

func TestLeaderboardOrderingAndTruncation(t *testing.T) {
	questions := []model.QAQuestion{
		{ID: "q1", AuthorID: "low"},            // 1 point
		{ID: "q2", AuthorID: "mid", Upvotes: 4}, // 5 points
	}
	answers := []model.QAAnswer{
		{ID: "a1", AuthorID: "high", Accepted: true}, // 7 points
		{ID: "a2", AuthorID: "high"},                 // +2
	}

	entries := Leaderboard(questions, answers, 2)
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2 (top-N truncation)", len(entries))
	}
	if entries[0].AuthorID != "high" || entries[1].AuthorID != "mid" {
		t.Errorf("order = %s, %s; want high, mid", entries[0].AuthorID, entries[1].AuthorID)
	}
}

func TestLeaderboardTieBreak(t *testing.T) {
	// Equal points sort by author id so the board is stable across fetches.
	questions := []model.QAQuestion{
		{ID: "q1", AuthorID: "zed"},
		{ID: "q2", AuthorID: "abe"},
	}

	for i := 0; i < 3; i++ {
		entries := Leaderboard(questions, nil, 0)
		if entries[0].AuthorID != "abe" || entries[1].AuthorID != "zed" {
			t.Fatalf("run %d: order = %s, %s; want abe, zed", i, entries[0].AuthorID, entries[1].AuthorID)
		}
	}
}

func TestLeaderboardAnswerOnlyContributor(t *testing.T) {
	answers := []model.QAAnswer{{ID: "a1", AuthorID: "solo", Upvotes: 9}}

	entries := Leaderboard(nil, answers, 0)
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	// Answer upvotes carry no points; only the answer itself does.
	if entries[0].Points != PointsAnswer {
		t.Errorf("points = %d, want %d", entries[0].Points, PointsAnswer)
	}
}
