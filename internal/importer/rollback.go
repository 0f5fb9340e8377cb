package importer

import (
	"context"
	"fmt"
)

// rollbackOrder is the strict reverse dependency order: children before
// parents, so no delete ever trips a foreign key.
var rollbackOrder = []string{"images", "options", "questions", "concepts", "chapters"}

// TableCount pairs a table name with a row count.
type TableCount struct {
	Table string
	Rows  int64
}

// Rollback undoes an import by deleting all imported content. DryRun only
// counts; Execute deletes in reverse dependency order.
type Rollback struct {
	store RollbackStore
}

// NewRollback creates a rollback engine over the given store.
func NewRollback(store RollbackStore) *Rollback {
	return &Rollback{store: store}
}

// Counts returns current row counts in deletion order without touching
// any data.
func (r *Rollback) Counts() ([]TableCount, error) {
	counters := []func() (int64, error){
		r.store.CountImages,
		r.store.CountOptions,
		r.store.CountQuestions,
		r.store.CountConcepts,
		r.store.CountChapters,
	}

	counts := make([]TableCount, 0, len(rollbackOrder))
	for i, count := range counters {
		rows, err := count()
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", rollbackOrder[i], err)
		}
		counts = append(counts, TableCount{Table: rollbackOrder[i], Rows: rows})
	}
	return counts, nil
}

// DryRun performs the counting pass and issues no deletes.
func (r *Rollback) DryRun() ([]TableCount, error) {
	return r.Counts()
}

// Execute deletes all rows table by table, children first, and returns
// the number of rows actually deleted per table.
func (r *Rollback) Execute(ctx context.Context) ([]TableCount, error) {
	deleters := []func() (int64, error){
		r.store.DeleteAllImages,
		r.store.DeleteAllOptions,
		r.store.DeleteAllQuestions,
		r.store.DeleteAllConcepts,
		r.store.DeleteAllChapters,
	}

	deleted := make([]TableCount, 0, len(rollbackOrder))
	for i, deleteAll := range deleters {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		rows, err := deleteAll()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", rollbackOrder[i], err)
		}
		deleted = append(deleted, TableCount{Table: rollbackOrder[i], Rows: rows})
	}
	return deleted, nil
}
