package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/medprep/importer/internal/config"
	"github.com/medprep/importer/internal/database"
	"github.com/medprep/importer/internal/database/chapters"
	"github.com/medprep/importer/internal/database/concepts"
	imagesdb "github.com/medprep/importer/internal/database/images"
	"github.com/medprep/importer/internal/database/questions"
	"github.com/medprep/importer/internal/importer"
	"github.com/medprep/importer/internal/scheduler"
	"github.com/medprep/importer/internal/storage"
	"github.com/medprep/importer/internal/storage/providers/bucket"
)

// SyncCommand runs the import pipeline periodically on a cron schedule.
type SyncCommand struct {
	InputDir     string
	DatabasePath string
	DatabaseURL  string
	Schedule     string
	Workers      int
	RunNow       bool
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand() *SyncCommand {
	return &SyncCommand{}
}

// ParseFlags parses command line flags
func (cmd *SyncCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()

	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	fs.StringVar(&cmd.InputDir, "input", cfg.Import.InputDir, "Directory containing extracted page documents (*.json)")
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the sqlite content database")
	fs.StringVar(&cmd.DatabaseURL, "db-url", cfg.Database.URL, "Postgres DSN (takes precedence over -db)")
	fs.StringVar(&cmd.Schedule, "schedule", cfg.Sync.Schedule, "Cron schedule for periodic imports")
	fs.IntVar(&cmd.Workers, "workers", cfg.Import.Workers, "Number of concurrent document workers")
	fs.BoolVar(&cmd.RunNow, "now", false, "Run one import immediately on startup")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run the import periodically until interrupted. Repeated runs reuse\n")
		fmt.Fprintf(os.Stderr, "existing chapters and never re-issue already-assigned slugs.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the sync command
func (cmd *SyncCommand) Run() error {
	fmt.Println("🔄 Scheduled Import Sync")
	fmt.Println("========================")

	cfg := config.NewConfig()

	db, err := database.NewDatabase(cmd.DatabaseURL, cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	var uploader storage.Client
	if cfg.Storage.URL != "" {
		uploader = bucket.NewClient(cfg.Storage.URL, cfg.Storage.Bucket, cfg.Storage.Token)
	}

	pipeline := importer.New(importer.Deps{
		Chapters:  chapters.NewRepository(db.DB),
		Concepts:  concepts.NewRepository(db.DB),
		Questions: questions.NewRepository(db.DB),
		Images:    imagesdb.NewRepository(db.DB),
		Runs:      db,
		Uploader:  uploader,
		Workers:   cmd.Workers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewImportSyncScheduler(pipeline, cmd.InputDir, cmd.Schedule)
	if err := sched.Start(ctx); err != nil {
		return err
	}

	if cmd.RunNow {
		sched.RunNow(ctx)
	}

	if next := sched.NextRunTime(); next != nil {
		fmt.Printf("⏰ Next import: %v (Ctrl-C to stop)\n", next)
	}

	<-ctx.Done()
	sched.Stop()
	fmt.Println("\n✅ Sync stopped.")
	return nil
}
