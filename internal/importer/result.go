package importer

import (
	"fmt"
	"sync"
)

// RecordOutcome is the discriminated result of persisting one record.
// Failures never cross the per-document loop as panics or aborts; they
// become Skipped outcomes with a reason in the error list.
type RecordOutcome int

const (
	OutcomeCreated RecordOutcome = iota
	OutcomeRetried
	OutcomeSkipped
)

// Result accumulates run statistics across concurrent workers.
type Result struct {
	mu sync.Mutex

	PagesProcessed     int
	ChaptersCreated    int
	ConceptsProcessed  int
	QuestionsProcessed int
	OptionsProcessed   int
	ImagesProcessed    int
	RecordsRetried     int
	Errors             []string
}

func NewResult() *Result {
	return &Result{}
}

func (r *Result) addPage() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PagesProcessed++
}

func (r *Result) addChapterCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ChaptersCreated++
}

func (r *Result) addConcept() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ConceptsProcessed++
}

func (r *Result) addQuestion() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.QuestionsProcessed++
}

func (r *Result) addOption() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.OptionsProcessed++
}

func (r *Result) addImage() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ImagesProcessed++
}

func (r *Result) addRetried() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RecordsRetried++
}

func (r *Result) addError(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ErrorList returns a copy of the accumulated errors.
func (r *Result) ErrorList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	errs := make([]string, len(r.Errors))
	copy(errs, r.Errors)
	return errs
}

// Summary renders the run statistics as a single line.
func (r *Result) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("pages=%d chapters=%d concepts=%d questions=%d options=%d images=%d retried=%d errors=%d",
		r.PagesProcessed, r.ChaptersCreated, r.ConceptsProcessed, r.QuestionsProcessed,
		r.OptionsProcessed, r.ImagesProcessed, r.RecordsRetried, len(r.Errors))
}
