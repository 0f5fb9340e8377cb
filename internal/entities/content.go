package entities

import (
	"time"
)

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeSelectAll      QuestionType = "SELECT_ALL_THAT_APPLY"
	QuestionTypeFillInBlank    QuestionType = "FILL_IN_THE_BLANK"
	QuestionTypeMatrixGrid     QuestionType = "MATRIX_GRID"
	QuestionTypePrioritization QuestionType = "PRIORITIZATION"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// Chapter groups concepts. Chapters are created lazily when the first
// concept referencing them is imported, keyed by slug.
type Chapter struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:512;not null" json:"title"`
	Slug          string    `gorm:"uniqueIndex;size:256;not null" json:"slug"`
	ChapterNumber int       `gorm:"uniqueIndex" json:"chapter_number"`
	Concepts      []Concept `gorm:"foreignKey:ChapterID" json:"concepts,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Concept is a single study topic extracted from one source page.
// Slug is unique across the whole table, not just within a chapter.
type Concept struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ChapterID     uint       `gorm:"index" json:"chapter_id"`
	Title         string     `gorm:"index;size:512;not null" json:"title"`
	Slug          string     `gorm:"uniqueIndex;size:256;not null" json:"slug"`
	ConceptNumber int        `json:"concept_number"`
	Content       string     `gorm:"type:text" json:"content,omitempty"`
	KeyPoints     string     `gorm:"type:text" json:"key_points,omitempty"`
	Reference     string     `gorm:"size:512" json:"reference,omitempty"`
	IsPremium     bool       `gorm:"default:false" json:"is_premium"`
	Chapter       Chapter    `gorm:"foreignKey:ChapterID" json:"-"`
	Questions     []Question `gorm:"foreignKey:ConceptID" json:"questions,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Question struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	ConceptID uint         `gorm:"index" json:"concept_id"`
	Text      string       `gorm:"type:text;not null" json:"text"`
	Type      QuestionType `gorm:"size:32;not null" json:"type"`
	Rationale string       `gorm:"type:text" json:"rationale,omitempty"`
	Concept   Concept      `gorm:"foreignKey:ConceptID" json:"-"`
	Options   []Option     `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Option is one answer choice. For PRIORITIZATION questions a single
// synthetic option holds the whole correct ordering sequence as its text.
type Option struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"index" json:"question_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool      `gorm:"default:false" json:"is_correct"`
	Question   Question  `gorm:"foreignKey:QuestionID" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Image belongs to at most one of a concept or a question; with neither
// set it is standalone (cover art and similar).
type Image struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Filename         string    `gorm:"size:512;not null" json:"filename"`
	URL              string    `gorm:"size:2048" json:"url,omitempty"`
	ContentType      string    `gorm:"size:64" json:"content_type"`
	MedicalRelevance string    `gorm:"size:512" json:"medical_relevance,omitempty"`
	ConceptID        *uint     `gorm:"index" json:"concept_id,omitempty"`
	QuestionID       *uint     `gorm:"index" json:"question_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ImportRun records one coordinator run: counters, accumulated errors
// (JSON array) and lifecycle timestamps.
type ImportRun struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	PublicID           string       `gorm:"uniqueIndex;size:32" json:"public_id"`
	Status             ImportStatus `gorm:"size:20;default:'pending'" json:"status"`
	InputDir           string       `gorm:"size:1024" json:"input_dir"`
	PagesProcessed     int          `json:"pages_processed"`
	ChaptersCreated    int          `json:"chapters_created"`
	ConceptsProcessed  int          `json:"concepts_processed"`
	QuestionsProcessed int          `json:"questions_processed"`
	OptionsProcessed   int          `json:"options_processed"`
	ImagesProcessed    int          `json:"images_processed"`
	Errors             string       `gorm:"type:text" json:"errors,omitempty"`
	StartedAt          time.Time    `json:"started_at"`
	CompletedAt        *time.Time   `json:"completed_at,omitempty"`
}

func (Chapter) TableName() string {
	return "chapters"
}

func (Concept) TableName() string {
	return "concepts"
}

func (Question) TableName() string {
	return "questions"
}

func (Option) TableName() string {
	return "options"
}

func (Image) TableName() string {
	return "images"
}

func (ImportRun) TableName() string {
	return "import_runs"
}
