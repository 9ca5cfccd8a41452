package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jabumarket/jabumarket/internal/listquery"
	"github.com/jabumarket/jabumarket/internal/model"
)

type MaterialStore struct {
	db *sql.DB
}

func NewMaterialStore(db *sql.DB) *MaterialStore {
	return &MaterialStore{db: db}
}

func scanMaterial(scanner interface{ Scan(...any) error }) (*model.StudyMaterial, error) {
	var m model.StudyMaterial
	var approved, verified, featured int
	err := scanner.Scan(
		&m.ID, &m.UploaderID, &m.Title, &m.Description, &m.FileKey, &m.FileName,
		&m.Faculty, &m.Department, &m.Level, &m.Semester, &m.CourseCode,
		&m.MaterialType, &approved, &verified, &featured, &m.Downloads,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Approved = approved != 0
	m.Verified = verified != 0
	m.Featured = featured != 0
	return &m, nil
}

const materialCols = `id, uploader_id, title, description, file_key, file_name, faculty, department, level, semester, course_code, material_type, approved, verified, featured, downloads, created_at, updated_at`

// LibraryDef drives the study materials list. Default-deny: unapproved
// uploads stay hidden unless widened for the uploader or an admin.
var LibraryDef = listquery.Definition{
	Table:         "materials",
	Columns:       materialCols,
	SearchColumns: []string{"title", "description", "course_code"},
	Filters: []listquery.Filter{
		{Param: "material_type", Column: "material_type", Allowed: model.MaterialTypes},
		{Param: "faculty", Column: "faculty"},
		{Param: "department", Column: "department"},
		{Param: "level", Column: "level"},
		{Param: "semester", Column: "semester", Allowed: model.Semesters},
	},
	Sorts: map[string]string{
		"newest":         "created_at DESC",
		"downloads_desc": "downloads DESC",
	},
	DefaultSort: "newest",
	TieBreak:    "created_at DESC, id DESC",
	Visibility:  "approved = 1",
	PageSize:    20,
}

// List runs the library query.
func (s *MaterialStore) List(ctx context.Context, p listquery.Params) (*listquery.Page[model.StudyMaterial], error) {
	return listquery.Run(ctx, s.db, LibraryDef, p, func(sc listquery.Scanner) (model.StudyMaterial, error) {
		m, err := scanMaterial(sc)
		if err != nil {
			return model.StudyMaterial{}, err
		}
		return *m, nil
	})
}

// ListByUploader runs the widened owner view including unapproved uploads.
func (s *MaterialStore) ListByUploader(ctx context.Context, uploaderID string, p listquery.Params) (*listquery.Page[model.StudyMaterial], error) {
	p.ShowHidden = true
	p.Extra = append(p.Extra, listquery.Cond{Expr: "uploader_id = ?", Args: []any{uploaderID}})
	return s.List(ctx, p)
}

func (s *MaterialStore) Create(uploaderID, title, description, fileKey, fileName, faculty, department, level, semester, courseCode, materialType string) (*model.StudyMaterial, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO materials (id, uploader_id, title, description, file_key, file_name, faculty, department, level, semester, course_code, material_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, uploaderID, title, description, fileKey, fileName,
		faculty, department, level, semester, courseCode, materialType,
	)
	if err != nil {
		return nil, fmt.Errorf("insert material: %w", err)
	}
	return s.GetByID(id)
}

func (s *MaterialStore) GetByID(id string) (*model.StudyMaterial, error) {
	row := s.db.QueryRow(`SELECT `+materialCols+` FROM materials WHERE id = ?`, id)
	m, err := scanMaterial(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// SetApproved records the admin moderation decision.
func (s *MaterialStore) SetApproved(id string, approved bool) (*model.StudyMaterial, error) {
	a := 0
	if approved {
		a = 1
	}
	_, err := s.db.Exec(
		`UPDATE materials SET approved = ?, updated_at = datetime('now') WHERE id = ?`,
		a, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set material approved: %w", err)
	}
	return s.GetByID(id)
}

// SetFlags updates the verified/featured badges.
func (s *MaterialStore) SetFlags(id string, verified, featured bool) (*model.StudyMaterial, error) {
	v, f := 0, 0
	if verified {
		v = 1
	}
	if featured {
		f = 1
	}
	_, err := s.db.Exec(
		`UPDATE materials SET verified = ?, featured = ?, updated_at = datetime('now') WHERE id = ?`,
		v, f, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set material flags: %w", err)
	}
	return s.GetByID(id)
}

// IncrementDownloads bumps the counter atomically on the database side so
// concurrent readers never lose updates.
func (s *MaterialStore) IncrementDownloads(id string) error {
	_, err := s.db.Exec(`UPDATE materials SET downloads = downloads + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment downloads: %w", err)
	}
	return nil
}

func (s *MaterialStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM materials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return nil
}
