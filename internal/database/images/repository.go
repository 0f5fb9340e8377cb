// Package images provides database operations for imported image records.
package images

import (
	"gorm.io/gorm"

	"github.com/medprep/importer/internal/entities"
)

// Repository handles image database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new images repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an image row.
func (r *Repository) Create(image *entities.Image) error {
	return r.db.Create(image).Error
}

// GetByConcept returns the images attached to a concept.
func (r *Repository) GetByConcept(conceptID uint) ([]entities.Image, error) {
	var images []entities.Image
	err := r.db.Where("concept_id = ?", conceptID).Find(&images).Error
	return images, err
}

// GetStandalone returns images attached to neither a concept nor a question.
func (r *Repository) GetStandalone() ([]entities.Image, error) {
	var images []entities.Image
	err := r.db.Where("concept_id IS NULL AND question_id IS NULL").Find(&images).Error
	return images, err
}
