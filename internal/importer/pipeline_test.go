package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medprep/importer/internal/database"
	"github.com/medprep/importer/internal/database/chapters"
	"github.com/medprep/importer/internal/database/concepts"
	imagesdb "github.com/medprep/importer/internal/database/images"
	"github.com/medprep/importer/internal/database/questions"
	"github.com/medprep/importer/internal/entities"
	"github.com/medprep/importer/internal/pages"
	"github.com/medprep/importer/internal/storage"
)

func setupTestDB(t *testing.T) (*database.Database, func()) {
	dbPath := "./test_importer_" + t.Name() + ".db"

	db, err := database.NewDatabase("", dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func newTestPipeline(db *database.Database, uploader storage.Client) *Pipeline {
	return New(Deps{
		Chapters:  chapters.NewRepository(db.DB),
		Concepts:  concepts.NewRepository(db.DB),
		Questions: questions.NewRepository(db.DB),
		Images:    imagesdb.NewRepository(db.DB),
		Runs:      db,
		Uploader:  uploader,
		Workers:   1,
	})
}

type fakeUploader struct {
	uploads []string
	err     error
}

func (u *fakeUploader) Upload(_ context.Context, path string, _ io.Reader, _ string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.uploads = append(u.uploads, path)
	return "https://cdn.test/" + path, nil
}

func writePage(t *testing.T, dir string, name string, doc pages.Document) {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func heartFailurePage(text string, category string) pages.Document {
	return pages.Document{
		BookPage: 101,
		Content: pages.Content{
			MainConcept: "Heart Failure",
			Text:        text,
			KeyPoints:   "Monitor daily weight.",
			Questions: []pages.Question{
				{
					Type:          "MC",
					QuestionText:  "Which finding suggests fluid overload?",
					Options:       []string{"Weight gain", "Dry membranes", "Flat neck veins"},
					CorrectAnswer: "1",
					Rationale:     "Rapid weight gain indicates retention.",
				},
			},
		},
		Metadata: pages.Metadata{Category: category},
	}
}

func TestPipeline_Run(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dir := t.TempDir()
	writePage(t, dir, "page_101.json", heartFailurePage("Acute presentation with pulmonary edema.", "Cardiovascular Disorders"))

	second := heartFailurePage("Chronic heart failure management focuses on adherence.", "Cardiovascular Disorders")
	second.Content.Questions = []pages.Question{
		{
			Type:          "SATA",
			QuestionText:  "Which teaching points apply? Select all that apply.",
			Options:       []string{"Weigh daily", "Double the diuretic", "Limit sodium", "Report overnight gain"},
			CorrectAnswer: "1, 3, 4",
		},
		{
			Type:          "prioritization",
			QuestionText:  "Place the interventions in priority order.",
			Options:       []string{"Diuretic", "Position", "Oxygen", "Notify"},
			CorrectAnswer: "2, 3, 1, 4",
		},
	}
	writePage(t, dir, "page_102.json", second)

	dka := pages.Document{
		Content: pages.Content{
			MainConcept: "Diabetic Ketoacidosis",
			Text:        "DKA presents with hyperglycemia and acidosis.",
		},
		Metadata: pages.Metadata{Category: "Endocrine Disorders"},
	}
	writePage(t, dir, "page_240.json", dka)

	result, err := New(Deps{
		Chapters:  chapters.NewRepository(db.DB),
		Concepts:  concepts.NewRepository(db.DB),
		Questions: questions.NewRepository(db.DB),
		Images:    imagesdb.NewRepository(db.DB),
		Runs:      db,
		Workers:   1,
	}).Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, result.PagesProcessed)
	assert.Equal(t, 2, result.ChaptersCreated)
	assert.Equal(t, 3, result.ConceptsProcessed)
	assert.Equal(t, 3, result.QuestionsProcessed)
	// 3 MC + 4 SATA + 1 synthetic prioritization option
	assert.Equal(t, 8, result.OptionsProcessed)
	assert.Empty(t, result.Errors)

	// Both heart failure pages got distinct slugs, the second via context.
	conceptRepo := concepts.NewRepository(db.DB)
	slugs, err := conceptRepo.AllSlugs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"heart-failure", "heart-failure-chronic", "diabetic-ketoacidosis"}, slugs)

	// The prioritization question carries one correct option with the
	// ordering sequence as its text.
	loaded, err := conceptRepo.GetBySlug("heart-failure-chronic")
	require.NoError(t, err)
	require.Len(t, loaded.Questions, 2)
	for _, q := range loaded.Questions {
		if q.Type == entities.QuestionTypePrioritization {
			require.Len(t, q.Options, 1)
			assert.Equal(t, "2, 3, 1, 4", q.Options[0].Text)
			assert.True(t, q.Options[0].IsCorrect)
		}
	}

	// Run bookkeeping persisted.
	runs, err := db.GetRecentImportRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, entities.ImportStatusCompleted, runs[0].Status)
	assert.Equal(t, 3, runs[0].PagesProcessed)
	assert.NotNil(t, runs[0].CompletedAt)
}

func TestPipeline_Run_IsolatesBadDocuments(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dir := t.TempDir()
	for i := 0; i < 9; i++ {
		doc := pages.Document{
			Content:  pages.Content{MainConcept: fmt.Sprintf("Concept %d", i)},
			Metadata: pages.Metadata{Category: "Cardiovascular Disorders"},
		}
		writePage(t, dir, fmt.Sprintf("page_%03d.json", i), doc)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_999.json"), []byte(`{"content": {`), 0o644))

	result, err := newTestPipeline(db, nil).Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 9, result.PagesProcessed)
	assert.Equal(t, 9, result.ConceptsProcessed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "page_999.json")

	n, err := db.CountConcepts()
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
}

func TestPipeline_Run_QuestionErrorsDoNotSkipConcept(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dir := t.TempDir()
	doc := heartFailurePage("Body text.", "Cardiovascular Disorders")
	doc.Content.Questions = append(doc.Content.Questions, pages.Question{
		Type:          "essay",
		QuestionText:  "Explain the pathophysiology.",
		CorrectAnswer: "1",
	})
	writePage(t, dir, "page_101.json", doc)

	result, err := newTestPipeline(db, nil).Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ConceptsProcessed)
	assert.Equal(t, 1, result.QuestionsProcessed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unknown question type")
}

func TestPipeline_Run_UploadFailureKeepsParentRows(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dir := t.TempDir()
	doc := heartFailurePage("Body text.", "Cardiovascular Disorders")
	doc.Content.Images = []pages.Image{{Filename: "hf.png", MedicalRelevance: "high"}}
	writePage(t, dir, "page_101.json", doc)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hf.png"), []byte("png bytes"), 0o644))

	uploader := &fakeUploader{err: errors.New("bucket unreachable")}
	result, err := newTestPipeline(db, uploader).Run(context.Background(), dir)
	require.NoError(t, err)

	// The image is skipped; concept and question rows stay.
	assert.Equal(t, 1, result.ConceptsProcessed)
	assert.Equal(t, 1, result.QuestionsProcessed)
	assert.Zero(t, result.ImagesProcessed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "hf.png")

	nImages, err := db.CountImages()
	require.NoError(t, err)
	assert.Zero(t, nImages)
	nConcepts, err := db.CountConcepts()
	require.NoError(t, err)
	assert.Equal(t, int64(1), nConcepts)
}

func TestPipeline_Run_UploadedImageKeepsBucketURL(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dir := t.TempDir()
	doc := heartFailurePage("Body text.", "Cardiovascular Disorders")
	doc.Content.Images = []pages.Image{{Filename: "hf.png"}}
	writePage(t, dir, "page_101.json", doc)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "hf.png"), []byte("png bytes"), 0o644))

	uploader := &fakeUploader{}
	result, err := newTestPipeline(db, uploader).Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ImagesProcessed)
	assert.Equal(t, []string{"hf.png"}, uploader.uploads)

	conceptRepo := concepts.NewRepository(db.DB)
	concept, err := conceptRepo.GetBySlug("heart-failure")
	require.NoError(t, err)

	imgs, err := imagesdb.NewRepository(db.DB).GetByConcept(concept.ID)
	require.NoError(t, err)
	require.Len(t, imgs, 1)
	assert.Equal(t, "https://cdn.test/hf.png", imgs[0].URL)
	assert.Equal(t, "image/png", imgs[0].ContentType)
}

func TestPipeline_Run_MissingInputDirIsFatal(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := newTestPipeline(db, nil).Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

// conflictingConceptStore reports a uniqueness violation for one slug,
// simulating a registry gone stale against the store.
type conflictingConceptStore struct {
	inner      ConceptStore
	rejectSlug string
}

func (s *conflictingConceptStore) Create(concept *entities.Concept) error {
	if concept.Slug == s.rejectSlug {
		return sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	}
	return s.inner.Create(concept)
}

func (s *conflictingConceptStore) AllSlugs() ([]string, error) { return nil, nil }

func (s *conflictingConceptStore) NextConceptNumber(chapterID uint) (int, error) {
	return s.inner.NextConceptNumber(chapterID)
}

func TestPipeline_Run_RetriesSlugOnUniqueViolation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	dir := t.TempDir()
	writePage(t, dir, "page_101.json", heartFailurePage("Chronic heart failure management.", "Cardiovascular Disorders"))

	store := &conflictingConceptStore{
		inner:      concepts.NewRepository(db.DB),
		rejectSlug: "heart-failure",
	}
	result, err := New(Deps{
		Chapters:  chapters.NewRepository(db.DB),
		Concepts:  store,
		Questions: questions.NewRepository(db.DB),
		Images:    imagesdb.NewRepository(db.DB),
		Workers:   1,
	}).Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ConceptsProcessed)
	assert.Equal(t, 1, result.RecordsRetried)
	assert.Empty(t, result.Errors)

	slugs, err := concepts.NewRepository(db.DB).AllSlugs()
	require.NoError(t, err)
	require.Len(t, slugs, 1)
	// The clean slug was rejected; the retry disambiguated via context.
	assert.Equal(t, "heart-failure-chronic", slugs[0])
}

func TestResult_Summary(t *testing.T) {
	result := NewResult()
	result.addPage()
	result.addConcept()
	result.addError("page_001.json: malformed JSON")

	summary := result.Summary()
	assert.True(t, strings.Contains(summary, "pages=1"))
	assert.True(t, strings.Contains(summary, "errors=1"))
	assert.Len(t, result.ErrorList(), 1)
}
