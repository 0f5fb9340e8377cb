package importer

import "github.com/medprep/importer/internal/entities"

// ChapterStore provides chapter persistence for the pipeline.
type ChapterStore interface {
	GetOrCreateBySlug(title, slug string) (*entities.Chapter, bool, error)
	AllSlugs() ([]string, error)
}

// ConceptStore provides concept persistence for the pipeline.
type ConceptStore interface {
	Create(concept *entities.Concept) error
	AllSlugs() ([]string, error)
	NextConceptNumber(chapterID uint) (int, error)
}

// QuestionStore provides question and option persistence.
type QuestionStore interface {
	CreateQuestion(question *entities.Question) error
	CreateOption(option *entities.Option) error
}

// ImageStore provides image record persistence.
type ImageStore interface {
	Create(image *entities.Image) error
}

// RunStore persists import run bookkeeping.
type RunStore interface {
	CreateImportRun(run *entities.ImportRun) error
	UpdateImportRun(run *entities.ImportRun) error
}

// RollbackStore exposes the counting and deleting operations the rollback
// tool needs, in reverse dependency order.
type RollbackStore interface {
	CountImages() (int64, error)
	CountOptions() (int64, error)
	CountQuestions() (int64, error)
	CountConcepts() (int64, error)
	CountChapters() (int64, error)
	DeleteAllImages() (int64, error)
	DeleteAllOptions() (int64, error)
	DeleteAllQuestions() (int64, error)
	DeleteAllConcepts() (int64, error)
	DeleteAllChapters() (int64, error)
}
