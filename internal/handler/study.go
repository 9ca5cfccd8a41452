package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jabumarket/jabumarket/internal/store"
	"github.com/jabumarket/jabumarket/internal/study"
)

type StudyHandler struct {
	qa     *store.QAStore
	logger *slog.Logger
}

func NewStudyHandler(qa *store.QAStore, logger *slog.Logger) *StudyHandler {
	return &StudyHandler{qa: qa, logger: logger.With("component", "study")}
}

type gpaRequest struct {
	Scale   string         `json:"scale"`
	Courses []study.Course `json:"courses"`
}

func scaleFor(name string) study.Scale {
	if name == "4" || name == "4.0" {
		return study.Scale4
	}
	return study.ScaleNG5
}

// GPA computes a grade point average. Rows with unknown grades or
// non-positive units are excluded and reported.
func (h *StudyHandler) GPA(w http.ResponseWriter, r *http.Request) {
	var req gpaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Courses) == 0 {
		writeError(w, http.StatusBadRequest, "courses are required")
		return
	}

	scale := scaleFor(req.Scale)
	gpa, counted := study.GPA(req.Courses, scale)
	writeJSON(w, http.StatusOK, map[string]any{
		"gpa":      study.Round2(gpa),
		"counted":  counted,
		"excluded": len(req.Courses) - counted,
	})
}

type requiredNextRequest struct {
	Scale        string  `json:"scale"`
	CurrentGPA   float64 `json:"current_gpa"`
	CurrentUnits int     `json:"current_units"`
	TargetGPA    float64 `json:"target_gpa"`
	NextUnits    int     `json:"next_units"`
}

// RequiredNext answers "what do I need next semester to hit my target?".
func (h *StudyHandler) RequiredNext(w http.ResponseWriter, r *http.Request) {
	var req requiredNextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	scale := scaleFor(req.Scale)
	required, ok := study.RequiredNext(req.CurrentGPA, req.CurrentUnits, req.TargetGPA, req.NextUnits, scale)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"achievable": false,
			"max":        scale.Max(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"achievable": true,
		"required":   study.Round2(required),
	})
}

// Leaderboard aggregates Q&A contribution points and returns the top
// contributors.
func (h *StudyHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			n = parsed
		}
	}

	questions, answers, err := h.qa.Streams(r.Context())
	if err != nil {
		h.logger.Error("fetch qa streams", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	entries := study.Leaderboard(questions, answers, n)
	if entries == nil {
		entries = []study.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}
