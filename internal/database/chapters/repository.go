// Package chapters provides database operations for chapter management.
//
// Chapters are parent rows for concepts and are keyed by slug so that
// repeated import runs reuse existing rows instead of duplicating them.
package chapters

import (
	"errors"

	"gorm.io/gorm"

	"github.com/medprep/importer/internal/database"
	"github.com/medprep/importer/internal/entities"
)

// Repository handles all chapter database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new chapters repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreateBySlug returns the chapter with the given slug, creating it
// with the next free chapter number when absent. The second return value
// reports whether a new row was created.
func (r *Repository) GetOrCreateBySlug(title, slug string) (*entities.Chapter, bool, error) {
	var chapter entities.Chapter
	err := r.db.Where("slug = ?", slug).First(&chapter).Error
	if err == nil {
		return &chapter, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	next, err := r.nextChapterNumber()
	if err != nil {
		return nil, false, err
	}

	chapter = entities.Chapter{
		Title:         title,
		Slug:          slug,
		ChapterNumber: next,
	}
	if createErr := r.db.Create(&chapter).Error; createErr != nil {
		// A concurrent worker may have created the same chapter between
		// the lookup and the insert; re-read instead of failing.
		if database.ClassifyConstraint(createErr) == database.ConstraintUnique {
			var existing entities.Chapter
			if err := r.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
				return &existing, false, nil
			}
		}
		return nil, false, createErr
	}

	return &chapter, true, nil
}

// GetBySlug retrieves a chapter by slug.
func (r *Repository) GetBySlug(slug string) (*entities.Chapter, error) {
	var chapter entities.Chapter
	err := r.db.Where("slug = ?", slug).First(&chapter).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// AllSlugs returns every chapter slug currently in the store.
func (r *Repository) AllSlugs() ([]string, error) {
	var slugs []string
	err := r.db.Model(&entities.Chapter{}).Pluck("slug", &slugs).Error
	return slugs, err
}

// GetAllChapters returns all chapters ordered by chapter number.
func (r *Repository) GetAllChapters() ([]entities.Chapter, error) {
	var chapters []entities.Chapter
	err := r.db.Order("chapter_number ASC").Find(&chapters).Error
	return chapters, err
}

func (r *Repository) nextChapterNumber() (int, error) {
	var highest int
	err := r.db.Model(&entities.Chapter{}).
		Select("COALESCE(MAX(chapter_number), 0)").
		Scan(&highest).Error
	if err != nil {
		return 0, err
	}
	return highest + 1, nil
}
