package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jabumarket/jabumarket/internal/listquery"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into dst; false means a 400 was written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type pageEnvelope struct {
	Rows        any `json:"rows"`
	Total       int `json:"total"`
	Page        int `json:"page"`
	TotalPages  int `json:"total_pages"`
	ShowingFrom int `json:"showing_from"`
	ShowingTo   int `json:"showing_to"`
}

func writePage[T any](w http.ResponseWriter, p *listquery.Page[T]) {
	rows := p.Rows
	if rows == nil {
		rows = []T{}
	}
	writeJSON(w, http.StatusOK, pageEnvelope{
		Rows:        rows,
		Total:       p.Total,
		Page:        p.Page,
		TotalPages:  p.TotalPages,
		ShowingFrom: p.ShowingFrom(),
		ShowingTo:   p.ShowingTo(),
	})
}
