package study

import (
	"sort"

	"github.com/jabumarket/jabumarket/internal/model"
)

// Leaderboard point weights.
const (
	PointsAcceptedAnswer = 5
	PointsAnswer         = 2
	PointsQuestion       = 1
	PointsQuestionUpvote = 1
)

// LeaderboardEntry is one contributor's aggregated Q&A standing.
type LeaderboardEntry struct {
	AuthorID        string `json:"author_id"`
	Questions       int    `json:"questions"`
	QuestionUpvotes int    `json:"question_upvotes"`
	Answers         int    `json:"answers"`
	Accepted        int    `json:"accepted"`
	Points          int    `json:"points"`
}

// Leaderboard aggregates the question and answer streams per author,
// scores them and returns the top n entries in descending point order.
// Ties break by author id so repeated queries render identically.
func Leaderboard(questions []model.QAQuestion, answers []model.QAAnswer, n int) []LeaderboardEntry {
	byAuthor := make(map[string]*LeaderboardEntry)
	get := func(author string) *LeaderboardEntry {
		e, ok := byAuthor[author]
		if !ok {
			e = &LeaderboardEntry{AuthorID: author}
			byAuthor[author] = e
		}
		return e
	}

	for _, q := range questions {
		e := get(q.AuthorID)
		e.Questions++
		e.QuestionUpvotes += q.Upvotes
	}
	for _, a := range answers {
		e := get(a.AuthorID)
		e.Answers++
		if a.Accepted {
			e.Accepted++
		}
	}

	out := make([]LeaderboardEntry, 0, len(byAuthor))
	for _, e := range byAuthor {
		e.Points = e.Accepted*PointsAcceptedAnswer +
			e.Answers*PointsAnswer +
			e.Questions*PointsQuestion +
			e.QuestionUpvotes*PointsQuestionUpvote
		out = append(out, *e)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].AuthorID < out[j].AuthorID
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
