package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/medprep/importer/internal/config"
	"github.com/medprep/importer/internal/database"
	"github.com/medprep/importer/internal/database/chapters"
	"github.com/medprep/importer/internal/database/concepts"
	imagesdb "github.com/medprep/importer/internal/database/images"
	"github.com/medprep/importer/internal/database/questions"
	"github.com/medprep/importer/internal/importer"
	"github.com/medprep/importer/internal/pages"
	"github.com/medprep/importer/internal/storage"
	"github.com/medprep/importer/internal/storage/providers/bucket"
)

// ImportCommand runs one import over a directory of page documents.
type ImportCommand struct {
	InputDir     string
	DatabasePath string
	DatabaseURL  string
	Workers      int
	Verbose      bool
	DryRun       bool
}

// NewImportCommand creates a new ImportCommand
func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

// ParseFlags parses command line flags
func (cmd *ImportCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()

	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.InputDir, "input", cfg.Import.InputDir, "Directory containing extracted page documents (*.json)")
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the sqlite content database")
	fs.StringVar(&cmd.DatabaseURL, "db-url", cfg.Database.URL, "Postgres DSN (takes precedence over -db)")
	fs.IntVar(&cmd.Workers, "workers", cfg.Import.Workers, "Number of concurrent document workers")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse and validate documents without writing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import extracted study-content pages into the content database.\n\n")
		fmt.Fprintf(os.Stderr, "Each page document becomes a concept under its chapter, with quiz\n")
		fmt.Fprintf(os.Stderr, "questions, options and images. Malformed records are skipped and\n")
		fmt.Fprintf(os.Stderr, "reported; they never abort the run.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import from the default input directory:\n")
		fmt.Fprintf(os.Stderr, "  %s import\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Validate a batch without writing:\n")
		fmt.Fprintf(os.Stderr, "  %s import -input ./batch-07 -dry-run\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the import command
func (cmd *ImportCommand) Run() error {
	fmt.Println("📚 Study Content Import")
	fmt.Println("=======================")

	if cmd.DryRun {
		fmt.Println("🔍 DRY RUN MODE - No changes will be made")
		fmt.Println()
		return cmd.runDryRun()
	}

	cfg := config.NewConfig()

	db, err := database.NewDatabase(cmd.DatabaseURL, cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	var uploader storage.Client
	if cfg.Storage.URL != "" {
		uploader = bucket.NewClient(cfg.Storage.URL, cfg.Storage.Bucket, cfg.Storage.Token)
		fmt.Printf("☁️  Blob store: %s (bucket %s)\n", cfg.Storage.URL, cfg.Storage.Bucket)
	} else {
		fmt.Println("ℹ️  No blob store configured; image rows keep their source filenames")
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

	fmt.Printf("📥 Importing from %s...\n\n", cmd.InputDir)

	result, err := pipeline.Run(context.Background(), cmd.InputDir)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("📄 Pages imported: %d\n", result.PagesProcessed)
	fmt.Printf("📖 Chapters created: %d\n", result.ChaptersCreated)
	fmt.Printf("💡 Concepts: %d\n", result.ConceptsProcessed)
	fmt.Printf("❓ Questions: %d\n", result.QuestionsProcessed)
	fmt.Printf("🔘 Options: %d\n", result.OptionsProcessed)
	fmt.Printf("🖼  Images: %d\n", result.ImagesProcessed)
	if result.RecordsRetried > 0 {
		fmt.Printf("🔁 Slug retries: %d\n", result.RecordsRetried)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n⚠️  %d records skipped:\n", len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Printf("  ❌ %s\n", msg)
		}
	}

	fmt.Println("\n✅ Import complete!")
	return nil
}

// runDryRun parses and validates every document without opening the store.
func (cmd *ImportCommand) runDryRun() error {
	reader := pages.NewReader(cmd.InputDir)

	paths, err := reader.ListDocuments()
	if err != nil {
		return err
	}

	var valid, invalid int
	for _, path := range paths {
		doc, err := reader.ReadDocument(path)
		if err == nil {
			err = doc.Validate()
		}
		if err != nil {
			invalid++
			fmt.Printf("  ❌ %v\n", err)
			continue
		}
		valid++
		if cmd.Verbose {
			fmt.Printf("  → %q (%d questions, %d images)\n",
				doc.Content.MainConcept, len(doc.Content.Questions), len(doc.Content.Images))
		}
	}

	fmt.Printf("\n📄 %d documents: %d valid, %d invalid\n", len(paths), valid, invalid)
	fmt.Println("\n✅ Dry run complete. Use without -dry-run to import.")
	return nil
}
