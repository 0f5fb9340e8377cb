// Package scheduler runs periodic batch imports on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/medprep/importer/internal/importer"
)

// ImportSyncScheduler re-runs the import pipeline on a cron schedule.
// Chapter lookup-or-create keeps repeated runs idempotent for parents.
type ImportSyncScheduler struct {
	pipeline *importer.Pipeline
	inputDir string
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
	isSyncing bool
}

// NewImportSyncScheduler creates a new scheduler instance
func NewImportSyncScheduler(pipeline *importer.Pipeline, inputDir, schedule string) *ImportSyncScheduler {
	return &ImportSyncScheduler{
		pipeline: pipeline,
		inputDir: inputDir,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *ImportSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSync(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Import sync scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sync.
func (s *ImportSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false

	log.Printf("Import sync scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *ImportSyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// NextRunTime returns when the next import will occur.
func (s *ImportSyncScheduler) NextRunTime() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			next := entry.Next
			return &next
		}
	}
	return nil
}

// RunNow triggers an immediate import.
func (s *ImportSyncScheduler) RunNow(ctx context.Context) {
	go s.runSync(ctx)
}

func (s *ImportSyncScheduler) runSync(ctx context.Context) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("Import sync: skipped (already running)")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	log.Printf("Import sync: starting batch import from %s", s.inputDir)
	start := time.Now()

	result, err := s.pipeline.Run(ctx, s.inputDir)
	if err != nil {
		log.Printf("Import sync: failed: %v", err)
		return
	}

	log.Printf("Import sync: finished in %v (%s)",
		time.Since(start).Round(time.Millisecond), result.Summary())
}
