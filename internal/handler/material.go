package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jabumarket/jabumarket/internal/auth"
	"github.com/jabumarket/jabumarket/internal/model"
	"github.com/jabumarket/jabumarket/internal/storage"
	"github.com/jabumarket/jabumarket/internal/store"
)

const maxUploadBytes = 25 << 20

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".ppt":  true,
	".pptx": true,
	".xls":  true,
	".xlsx": true,
	".txt":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

type MaterialHandler struct {
	materials *store.MaterialStore
	files     *storage.Store
	logger    *slog.Logger
}

func NewMaterialHandler(ms *store.MaterialStore, files *storage.Store, logger *slog.Logger) *MaterialHandler {
	return &MaterialHandler{materials: ms, files: files, logger: logger.With("component", "materials")}
}

// List serves the study materials library.
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	p := store.LibraryDef.ParseParams(r.URL.Query())
	if r.URL.Query().Get("show_hidden") == "true" && auth.IsAdmin(r.Context()) {
		p.ShowHidden = true
	}

	page, err := h.materials.List(r.Context(), p)
	if err != nil {
		h.logger.Error("list materials", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writePage(w, page)
}

// Mine lists the caller's uploads, approved or not.
func (h *MaterialHandler) Mine(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())
	page, err := h.materials.ListByUploader(r.Context(), v.UserID, store.LibraryDef.ParseParams(r.URL.Query()))
	if err != nil {
		h.logger.Error("list own materials", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writePage(w, page)
}

// Get returns one material. Unapproved uploads are visible only to their
// uploader and admins.
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.materials.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get material", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}
	viewer, _ := auth.FromContext(r.Context())
	if !m.Approved && viewer.UserID != m.UploaderID && !viewer.Admin {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Upload accepts a multipart form with the document and its catalog fields.
// The upload lands unapproved and waits for moderation.
func (h *MaterialHandler) Upload(w http.ResponseWriter, r *http.Request) {
	v, _ := auth.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or malformed form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	courseCode := strings.ToUpper(strings.TrimSpace(r.FormValue("course_code")))
	materialType := r.FormValue("material_type")
	if title == "" || courseCode == "" {
		writeError(w, http.StatusBadRequest, "title and course_code are required")
		return
	}
	typeOK := false
	for _, t := range model.MaterialTypes {
		if materialType == t {
			typeOK = true
		}
	}
	if !typeOK {
		writeError(w, http.StatusBadRequest, "invalid material_type")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		writeError(w, http.StatusBadRequest, "unsupported file type")
		return
	}

	key := fmt.Sprintf("materials/%s%s", uuid.NewString(), ext)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := h.files.Upload(r.Context(), key, contentType, file); err != nil {
		h.logger.Error("upload material file", "error", err)
		writeError(w, http.StatusBadGateway, "file storage unavailable")
		return
	}

	m, err := h.materials.Create(v.UserID, title, r.FormValue("description"), key, header.Filename,
		r.FormValue("faculty"), r.FormValue("department"), r.FormValue("level"),
		r.FormValue("semester"), courseCode, materialType)
	if err != nil {
		h.logger.Error("create material", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Download bumps the download counter and redirects to a presigned URL.
func (h *MaterialHandler) Download(w http.ResponseWriter, r *http.Request) {
	m, err := h.materials.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get material", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	viewer, _ := auth.FromContext(r.Context())
	if m == nil || (!m.Approved && viewer.UserID != m.UploaderID && !viewer.Admin) {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}

	url, err := h.files.PresignDownload(r.Context(), m.FileKey, m.FileName, 15*time.Minute)
	if err != nil {
		h.logger.Error("presign material", "error", err)
		writeError(w, http.StatusBadGateway, "file storage unavailable")
		return
	}

	if err := h.materials.IncrementDownloads(m.ID); err != nil {
		h.logger.Error("increment downloads", "error", err)
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// Delete removes the caller's own upload, file included.
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, err := h.materials.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get material", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}
	viewer, _ := auth.FromContext(r.Context())
	if viewer.UserID != m.UploaderID && !viewer.Admin {
		writeError(w, http.StatusForbidden, "not your upload")
		return
	}

	if err := h.materials.Delete(m.ID); err != nil {
		h.logger.Error("delete material", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.files.Delete(r.Context(), m.FileKey); err != nil {
		h.logger.Warn("delete material file", "key", m.FileKey, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
