package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jabumarket/jabumarket/internal/auth"
	"github.com/jabumarket/jabumarket/internal/model"
	"github.com/jabumarket/jabumarket/internal/store"
	"github.com/jabumarket/jabumarket/internal/study"
)

type PracticeHandler struct {
	practice *store.PracticeStore
	logger   *slog.Logger
}

func NewPracticeHandler(ps *store.PracticeStore, logger *slog.Logger) *PracticeHandler {
	return &PracticeHandler{practice: ps, logger: logger.With("component", "practice")}
}

// ListSets returns all practice sets.
func (h *PracticeHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.practice.ListSets()
	if err != nil {
		h.logger.Error("list sets", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if sets == nil {
		sets = []model.PracticeSet{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sets": sets})
}

type quizOption struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

type quizQuestion struct {
	ID       string       `json:"id"`
	Prompt   string       `json:"prompt"`
	Position int          `json:"position"`
	Options  []quizOption `json:"options"`
}

// GetSet returns a set with its questions and options. Correct answers are
// never exposed here; they surface only in the post-submission review.
func (h *PracticeHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	set, err := h.practice.GetSet(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get set", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if set == nil {
		writeError(w, http.StatusNotFound, "practice set not found")
		return
	}

	questions, err := h.practice.Questions(set.ID)
	if err != nil {
		h.logger.Error("list questions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	options, err := h.practice.Options(set.ID)
	if err != nil {
		h.logger.Error("list options", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	byQuestion := make(map[string][]quizOption)
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], quizOption{ID: o.ID, Body: o.Body})
	}
	out := make([]quizQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, quizQuestion{ID: q.ID, Prompt: q.Prompt, Position: q.Position, Options: byQuestion[q.ID]})
	}
	writeJSON(w, http.StatusOK, map[string]any{"set": set, "questions": out})
}

type createSetRequest struct {
	Title      string `json:"title"`
	CourseCode string `json:"course_code"`
	Questions  []struct {
		Prompt  string `json:"prompt"`
		Options []struct {
			Body    string `json:"body"`
			Correct bool   `json:"correct"`
		} `json:"options"`
	} `json:"questions"`
}

// CreateSet adds a practice set. Admin only, enforced by routing.
func (h *PracticeHandler) CreateSet(w http.ResponseWriter, r *http.Request) {
	var req createSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.CourseCode = strings.ToUpper(strings.TrimSpace(req.CourseCode))
	if req.Title == "" || req.CourseCode == "" || len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "title, course_code and questions are required")
		return
	}

	questions := make([]store.NewQuestion, 0, len(req.Questions))
	for _, q := range req.Questions {
		nq := store.NewQuestion{Prompt: strings.TrimSpace(q.Prompt)}
		for _, o := range q.Options {
			nq.Options = append(nq.Options, store.NewOption{Body: o.Body, Correct: o.Correct})
		}
		questions = append(questions, nq)
	}

	set, err := h.practice.CreateSet(req.Title, req.CourseCode, questions)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

type submitRequest struct {
	Answers map[string]*string `json:"answers"`
}

// Submit scores an attempt and records it.
func (h *PracticeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())

	var req submitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	attempt, err := h.practice.SubmitAttempt(v.UserID, r.PathValue("id"), req.Answers)
	if err != nil {
		h.logger.Error("submit attempt", "error", err)
		writeError(w, http.StatusBadRequest, "could not record attempt")
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

// History lists the caller's attempts through the query engine.
func (h *PracticeHandler) History(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())
	page, err := h.practice.History(r.Context(), v.UserID, store.HistoryDef.ParseParams(r.URL.Query()))
	if err != nil {
		h.logger.Error("attempt history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writePage(w, page)
}

// Review returns the per-question breakdown of one of the caller's attempts,
// correct answers included.
func (h *PracticeHandler) Review(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())

	attempt, err := h.practice.GetAttempt(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get attempt", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if attempt == nil || attempt.UserID != v.UserID {
		writeError(w, http.StatusNotFound, "attempt not found")
		return
	}

	questions, err := h.practice.Questions(attempt.SetID)
	if err != nil {
		h.logger.Error("list questions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	options, err := h.practice.Options(attempt.SetID)
	if err != nil {
		h.logger.Error("list options", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	answers, err := h.practice.Answers(attempt.ID)
	if err != nil {
		h.logger.Error("list answers", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	flags, err := h.practice.Flags(v.UserID, attempt.SetID)
	if err != nil {
		h.logger.Error("list flags", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	review := study.Review(questions, options, answers, flags)
	writeJSON(w, http.StatusOK, map[string]any{"attempt": attempt, "review": review})
}

// ToggleFlag flips the caller's review flag on a question.
func (h *PracticeHandler) ToggleFlag(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())
	flagged, err := h.practice.ToggleFlag(v.UserID, r.PathValue("id"))
	if err != nil {
		h.logger.Error("toggle flag", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"flagged": flagged})
}
