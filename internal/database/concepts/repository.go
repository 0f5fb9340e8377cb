// Package concepts provides database operations for concept management.
package concepts

import (
	"gorm.io/gorm"

	"github.com/medprep/importer/internal/entities"
)

// Repository handles all concept database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new concepts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a concept. Constraint violations (in particular the global
// slug unique index) are returned to the caller unclassified.
func (r *Repository) Create(concept *entities.Concept) error {
	return r.db.Create(concept).Error
}

// AllSlugs returns every concept slug currently in the store. The import
// coordinator seeds its slug registry from this set at run start.
func (r *Repository) AllSlugs() ([]string, error) {
	var slugs []string
	err := r.db.Model(&entities.Concept{}).Pluck("slug", &slugs).Error
	return slugs, err
}

// NextConceptNumber returns the next free concept number within a chapter.
func (r *Repository) NextConceptNumber(chapterID uint) (int, error) {
	var count int64
	err := r.db.Model(&entities.Concept{}).Where("chapter_id = ?", chapterID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// GetBySlug retrieves a concept by its slug, with questions and options.
func (r *Repository) GetBySlug(slug string) (*entities.Concept, error) {
	var concept entities.Concept
	err := r.db.Preload("Questions.Options").Where("slug = ?", slug).First(&concept).Error
	if err != nil {
		return nil, err
	}
	return &concept, nil
}

// GetByChapter returns the concepts of a chapter ordered by concept number.
func (r *Repository) GetByChapter(chapterID uint) ([]entities.Concept, error) {
	var concepts []entities.Concept
	err := r.db.Where("chapter_id = ?", chapterID).Order("concept_number ASC").Find(&concepts).Error
	return concepts, err
}
