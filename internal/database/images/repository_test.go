package images

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medprep/importer/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_images_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Chapter{},
		&entities.Concept{},
		&entities.Question{},
		&entities.Image{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func TestRepository_CreateAndGetByConcept(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	chapter := &entities.Chapter{Title: "Cardiovascular Disorders", Slug: "cardiovascular-disorders", ChapterNumber: 1}
	require.NoError(t, db.Create(chapter).Error)
	concept := &entities.Concept{ChapterID: chapter.ID, Title: "Heart Failure", Slug: "heart-failure", ConceptNumber: 1}
	require.NoError(t, db.Create(concept).Error)

	image := &entities.Image{
		Filename:         "page_101_img_01.png",
		URL:              "https://cdn.example.com/page_101_img_01.png",
		ContentType:      "image/png",
		MedicalRelevance: "high",
		ConceptID:        &concept.ID,
	}
	require.NoError(t, repo.Create(image))

	loaded, err := repo.GetByConcept(concept.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "image/png", loaded[0].ContentType)
}

func TestRepository_GetStandalone(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	chapter := &entities.Chapter{Title: "Cardiovascular Disorders", Slug: "cardiovascular-disorders", ChapterNumber: 1}
	require.NoError(t, db.Create(chapter).Error)
	concept := &entities.Concept{ChapterID: chapter.ID, Title: "Heart Failure", Slug: "heart-failure", ConceptNumber: 1}
	require.NoError(t, db.Create(concept).Error)

	require.NoError(t, repo.Create(&entities.Image{Filename: "owned.png", ContentType: "image/png", ConceptID: &concept.ID}))
	require.NoError(t, repo.Create(&entities.Image{Filename: "cover.jpg", ContentType: "image/jpeg"}))

	standalone, err := repo.GetStandalone()
	require.NoError(t, err)
	require.Len(t, standalone, 1)
	assert.Equal(t, "cover.jpg", standalone[0].Filename)
}
