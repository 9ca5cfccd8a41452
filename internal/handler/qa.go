package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jabumarket/jabumarket/internal/auth"
	"github.com/jabumarket/jabumarket/internal/model"
	"github.com/jabumarket/jabumarket/internal/store"
)

type QAHandler struct {
	qa     *store.QAStore
	logger *slog.Logger
}

func NewQAHandler(qa *store.QAStore, logger *slog.Logger) *QAHandler {
	return &QAHandler{qa: qa, logger: logger.With("component", "qa")}
}

// ListQuestions returns all questions, newest first.
func (h *QAHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.qa.ListQuestions()
	if err != nil {
		h.logger.Error("list questions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if questions == nil {
		questions = []model.QAQuestion{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// GetQuestion returns one question with its answers, accepted first.
func (h *QAHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.qa.GetQuestion(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get question", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if q == nil {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	answers, err := h.qa.ListAnswers(q.ID)
	if err != nil {
		h.logger.Error("list answers", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if answers == nil {
		answers = []model.QAAnswer{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"question": q, "answers": answers})
}

type questionRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CreateQuestion posts a new question.
func (h *QAHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())

	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	q, err := h.qa.CreateQuestion(v.UserID, req.Title, req.Body)
	if err != nil {
		h.logger.Error("create question", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

type answerRequest struct {
	Body string `json:"body"`
}

// CreateAnswer posts an answer to a question.
func (h *QAHandler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())

	q, err := h.qa.GetQuestion(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get question", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if q == nil {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}

	a, err := h.qa.CreateAnswer(q.ID, v.UserID, req.Body)
	if err != nil {
		h.logger.Error("create answer", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// UpvoteQuestion bumps a question's upvote count.
func (h *QAHandler) UpvoteQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.qa.GetQuestion(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get question", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if q == nil {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	if err := h.qa.UpvoteQuestion(q.ID); err != nil {
		h.logger.Error("upvote question", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpvoteAnswer bumps an answer's upvote count.
func (h *QAHandler) UpvoteAnswer(w http.ResponseWriter, r *http.Request) {
	a, err := h.qa.GetAnswer(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get answer", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "answer not found")
		return
	}
	if err := h.qa.UpvoteAnswer(a.ID); err != nil {
		h.logger.Error("upvote answer", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptAnswer lets the question's author mark one answer accepted.
func (h *QAHandler) AcceptAnswer(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())

	a, err := h.qa.GetAnswer(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get answer", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "answer not found")
		return
	}
	q, err := h.qa.GetQuestion(a.QuestionID)
	if err != nil || q == nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if q.AuthorID != v.UserID {
		writeError(w, http.StatusForbidden, "only the question author can accept an answer")
		return
	}

	if err := h.qa.AcceptAnswer(q.ID, a.ID); err != nil {
		h.logger.Error("accept answer", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
