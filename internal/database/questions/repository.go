// Package questions provides database operations for questions and their options.
package questions

import (
	"gorm.io/gorm"

	"github.com/medprep/importer/internal/entities"
)

// Repository handles question and option database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new questions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateQuestion inserts a question row.
func (r *Repository) CreateQuestion(question *entities.Question) error {
	return r.db.Create(question).Error
}

// CreateOption inserts an option row.
func (r *Repository) CreateOption(option *entities.Option) error {
	return r.db.Create(option).Error
}

// GetByConcept returns the questions of a concept with their options.
func (r *Repository) GetByConcept(conceptID uint) ([]entities.Question, error) {
	var questions []entities.Question
	err := r.db.Preload("Options").Where("concept_id = ?", conceptID).Find(&questions).Error
	return questions, err
}

// CorrectOptions returns the options marked correct for a question.
func (r *Repository) CorrectOptions(questionID uint) ([]entities.Option, error) {
	var options []entities.Option
	err := r.db.Where("question_id = ? AND is_correct = ?", questionID, true).Find(&options).Error
	return options, err
}
