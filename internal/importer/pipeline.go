// Package importer drives the whole import: it walks page documents,
// persists chapters, concepts, questions, options and images in dependency
// order, and isolates every per-record failure so one bad record never
// aborts the run.
package importer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/medprep/importer/internal/database"
	"github.com/medprep/importer/internal/entities"
	"github.com/medprep/importer/internal/images"
	"github.com/medprep/importer/internal/pages"
	"github.com/medprep/importer/internal/quiz"
	"github.com/medprep/importer/internal/slugs"
	"github.com/medprep/importer/internal/storage"
)

const fallbackChapterTitle = "Uncategorized"

// Deps wires the pipeline to its collaborators. Uploader and Runs are
// optional: without an uploader image rows keep their source filename as
// URL, without a run store no bookkeeping rows are written.
type Deps struct {
	Chapters  ChapterStore
	Concepts  ConceptStore
	Questions QuestionStore
	Images    ImageStore
	Runs      RunStore
	Uploader  storage.Client
	Workers   int
}

// Pipeline coordinates one import run over a directory of page documents.
type Pipeline struct {
	chapters  ChapterStore
	concepts  ConceptStore
	questions QuestionStore
	images    ImageStore
	runs      RunStore
	uploader  storage.Client
	workers   int
}

// New creates an import pipeline.
func New(deps Deps) *Pipeline {
	return &Pipeline{
		chapters:  deps.Chapters,
		concepts:  deps.Concepts,
		questions: deps.Questions,
		images:    deps.Images,
		runs:      deps.Runs,
		uploader:  deps.Uploader,
		workers:   deps.Workers,
	}
}

// Run imports every page document under inputDir. A missing input
// directory or an unreachable store at startup aborts the whole run; any
// later per-record failure is recorded and skipped.
func (p *Pipeline) Run(ctx context.Context, inputDir string) (*Result, error) {
	reader := pages.NewReader(inputDir)

	paths, err := reader.ListDocuments()
	if err != nil {
		return nil, err
	}

	registry, err := p.seedRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to seed slug registry: %w", err)
	}

	run, err := p.startRun(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to record import run: %w", err)
	}

	log.Printf("Import: %d documents in %s, %d slugs already reserved", len(paths), inputDir, registry.Len())

	result := NewResult()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workerCount())
	for _, path := range paths {
		path := path
		g.Go(func() error {
			// Per-record failures are accumulated on the result; the
			// group only ever sees nil so no document cancels another.
			p.importPage(gctx, reader, registry, path, result)
			return nil
		})
	}
	_ = g.Wait()

	p.finishRun(run, result)

	return result, nil
}

func (p *Pipeline) workerCount() int {
	if p.workers < 1 {
		return 1
	}
	return p.workers
}

// seedRegistry loads every concept slug already persisted so that slugs
// consumed by earlier runs are never handed out again.
func (p *Pipeline) seedRegistry() (*slugs.Registry, error) {
	seed, err := p.concepts.AllSlugs()
	if err != nil {
		return nil, err
	}
	return slugs.NewRegistry(seed), nil
}

func (p *Pipeline) startRun(inputDir string) (*entities.ImportRun, error) {
	if p.runs == nil {
		return nil, nil
	}
	run := &entities.ImportRun{
		PublicID:  gonanoid.Must(),
		Status:    entities.ImportStatusRunning,
		InputDir:  inputDir,
		StartedAt: time.Now(),
	}
	if err := p.runs.CreateImportRun(run); err != nil {
		return nil, err
	}
	return run, nil
}

func (p *Pipeline) finishRun(run *entities.ImportRun, result *Result) {
	if p.runs == nil || run == nil {
		return
	}
	now := time.Now()
	run.Status = entities.ImportStatusCompleted
	run.CompletedAt = &now
	run.PagesProcessed = result.PagesProcessed
	run.ChaptersCreated = result.ChaptersCreated
	run.ConceptsProcessed = result.ConceptsProcessed
	run.QuestionsProcessed = result.QuestionsProcessed
	run.OptionsProcessed = result.OptionsProcessed
	run.ImagesProcessed = result.ImagesProcessed
	run.Errors = database.MarshalRunErrors(result.ErrorList())
	if err := p.runs.UpdateImportRun(run); err != nil {
		log.Printf("Import: failed to update run %s: %v", run.PublicID, err)
	}
}

// importPage handles one document in dependency order: chapter, concept,
// questions, options, images. Every failure is recorded and isolated.
func (p *Pipeline) importPage(ctx context.Context, reader *pages.Reader, registry *slugs.Registry, path string, result *Result) {
	name := filepath.Base(path)

	doc, err := reader.ReadDocument(path)
	if err != nil {
		result.addError("%v", err)
		return
	}
	if err := doc.Validate(); err != nil {
		result.addError("%v", err)
		return
	}

	chapter, err := p.lookupOrCreateChapter(doc, result)
	if err != nil {
		result.addError("%s: failed to resolve chapter: %v", name, err)
		return
	}

	concept, outcome := p.insertConcept(doc, chapter.ID, registry, result)
	if outcome == OutcomeSkipped {
		return
	}
	result.addConcept()
	if outcome == OutcomeRetried {
		result.addRetried()
	}

	for i, question := range doc.Content.Questions {
		p.importQuestion(name, i, concept.ID, question, result)
	}

	for _, image := range doc.Content.Images {
		conceptID := concept.ID
		p.importImage(ctx, reader, name, &conceptID, image, result)
	}

	result.addPage()
}

func (p *Pipeline) lookupOrCreateChapter(doc *pages.Document, result *Result) (*entities.Chapter, error) {
	title := doc.Metadata.Category
	if title == "" {
		title = fallbackChapterTitle
	}

	chapter, created, err := p.chapters.GetOrCreateBySlug(title, slugs.Normalize(title))
	if err != nil {
		return nil, err
	}
	if created {
		result.addChapterCreated()
	}
	return chapter, nil
}

// insertConcept persists the concept, giving a uniqueness violation one
// regeneration retry before treating it as a validation failure. The
// registry is seeded from the store at run start, so a collision here
// means the stored slug set moved underneath us.
func (p *Pipeline) insertConcept(doc *pages.Document, chapterID uint, registry *slugs.Registry, result *Result) (*entities.Concept, RecordOutcome) {
	name := filepath.Base(doc.Path)

	slug, strategy := slugs.Generate(doc.Content.MainConcept, doc.ContextText(), registry)

	number, err := p.concepts.NextConceptNumber(chapterID)
	if err != nil {
		result.addError("%s: failed to number concept: %v", name, err)
		return nil, OutcomeSkipped
	}

	concept := &entities.Concept{
		ChapterID:     chapterID,
		Title:         doc.Content.MainConcept,
		Slug:          slug,
		ConceptNumber: number,
		Content:       doc.ConceptContent(),
		KeyPoints:     doc.Content.KeyPoints,
		Reference:     doc.Metadata.Reference,
	}

	err = p.concepts.Create(concept)
	if err == nil {
		log.Printf("Import: concept %q -> %s (%s)", concept.Title, concept.Slug, strategy)
		return concept, OutcomeCreated
	}

	switch kind := database.ClassifyConstraint(err); kind {
	case database.ConstraintUnique:
		retrySlug, retryStrategy := slugs.Regenerate(doc.Content.MainConcept, doc.ContextText(), registry)
		concept.ID = 0
		concept.Slug = retrySlug
		if retryErr := p.concepts.Create(concept); retryErr != nil {
			result.addError("%s: concept %q still conflicting after slug retry: %v", name, concept.Title, retryErr)
			return nil, OutcomeSkipped
		}
		log.Printf("Import: concept %q -> %s (%s, after retry)", concept.Title, retrySlug, retryStrategy)
		return concept, OutcomeRetried
	case database.ConstraintNone:
		result.addError("%s: failed to insert concept %q: %v", name, concept.Title, err)
		return nil, OutcomeSkipped
	default:
		result.addError("%s: concept %q violates %s constraint: %v", name, concept.Title, kind, err)
		return nil, OutcomeSkipped
	}
}

func (p *Pipeline) importQuestion(docName string, index int, conceptID uint, question pages.Question, result *Result) {
	if question.QuestionText == "" {
		result.addError("%s: question %d has no text", docName, index+1)
		return
	}

	canonical, err := quiz.Normalize(question.Type, question.Options, question.CorrectAnswer)
	if err != nil {
		result.addError("%s: question %d: %v", docName, index+1, err)
		return
	}

	row := &entities.Question{
		ConceptID: conceptID,
		Text:      question.QuestionText,
		Type:      canonical.Type,
		Rationale: question.Rationale,
	}
	if err := p.questions.CreateQuestion(row); err != nil {
		result.addError("%s: question %d: %s", docName, index+1, describeInsertError(err))
		return
	}
	result.addQuestion()

	for _, option := range canonical.Options {
		optionRow := &entities.Option{
			QuestionID: row.ID,
			Text:       option.Text,
			IsCorrect:  option.IsCorrect,
		}
		if err := p.questions.CreateOption(optionRow); err != nil {
			result.addError("%s: question %d option: %s", docName, index+1, describeInsertError(err))
			continue
		}
		result.addOption()
	}
}

// importImage uploads the image bytes and records the row. Upload and
// image failures skip only the image; concept and question rows already
// inserted for the document stay.
func (p *Pipeline) importImage(ctx context.Context, reader *pages.Reader, docName string, conceptID *uint, image pages.Image, result *Result) {
	if image.Filename == "" {
		result.addError("%s: image record has no filename", docName)
		return
	}

	classification, err := images.Classify(image.Filename, conceptID, nil)
	if err != nil {
		result.addError("%s: %v", docName, err)
		return
	}

	url := image.Filename
	if p.uploader != nil {
		url, err = p.uploadImage(ctx, reader, image.Filename, classification.ContentType)
		if err != nil {
			result.addError("%s: image %s skipped: %v", docName, image.Filename, err)
			return
		}
	}

	row := &entities.Image{
		Filename:         image.Filename,
		URL:              url,
		ContentType:      classification.ContentType,
		MedicalRelevance: image.MedicalRelevance,
		ConceptID:        conceptID,
	}
	if err := p.images.Create(row); err != nil {
		result.addError("%s: image %s: %s", docName, image.Filename, describeInsertError(err))
		return
	}
	result.addImage()
}

func (p *Pipeline) uploadImage(ctx context.Context, reader *pages.Reader, filename, contentType string) (string, error) {
	file, err := os.Open(reader.ImagePath(filename))
	if err != nil {
		return "", fmt.Errorf("image bytes unreadable: %w", err)
	}
	defer file.Close()

	return p.uploader.Upload(ctx, filename, file, contentType)
}

// describeInsertError names the violated constraint when there is one.
func describeInsertError(err error) string {
	if kind := database.ClassifyConstraint(err); kind != database.ConstraintNone {
		return fmt.Sprintf("%s constraint violated: %v", kind, err)
	}
	return err.Error()
}
