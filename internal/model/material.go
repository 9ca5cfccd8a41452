package model

import "time"

// Material types.
const (
	MaterialPastQuestion = "past_question"
	MaterialHandout      = "handout"
	MaterialNote         = "note"
	MaterialSlides       = "slides"
	MaterialTimetable    = "timetable"
	MaterialOther        = "other"
)

// MaterialTypes is the allow-list for the material_type filter.
var MaterialTypes = []string{
	MaterialPastQuestion, MaterialHandout, MaterialNote,
	MaterialSlides, MaterialTimetable, MaterialOther,
}

// Semesters is the allow-list for the semester filter.
var Semesters = []string{"first", "second"}

// StudyMaterial is an uploaded study document. Approved gates public
// visibility; Downloads is incremented server-side on each download.
type StudyMaterial struct {
	ID           string    `json:"id"`
	UploaderID   string    `json:"uploader_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	FileKey      string    `json:"file_key"`
	FileName     string    `json:"file_name"`
	Faculty      string    `json:"faculty"`
	Department   string    `json:"department"`
	Level        string    `json:"level"`
	Semester     string    `json:"semester"`
	CourseCode   string    `json:"course_code"`
	MaterialType string    `json:"material_type"`
	Approved     bool      `json:"approved"`
	Verified     bool      `json:"verified"`
	Featured     bool      `json:"featured"`
	Downloads    int64     `json:"downloads"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
