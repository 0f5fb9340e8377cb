package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/medprep/importer/internal/config"
	"github.com/medprep/importer/internal/database"
	"github.com/medprep/importer/internal/importer"
)

// rollbackDelay is the cancellable pause before destructive execution.
const rollbackDelay = 5 * time.Second

// RollbackCommand undoes an import by deleting all imported content in
// reverse dependency order.
type RollbackCommand struct {
	DatabasePath string
	DatabaseURL  string
	Confirm      bool
	DryRun       bool
}

// NewRollbackCommand creates a new RollbackCommand
func NewRollbackCommand() *RollbackCommand {
	return &RollbackCommand{}
}

// ParseFlags parses command line flags
func (cmd *RollbackCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()

	fs := flag.NewFlagSet("rollback", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the sqlite content database")
	fs.StringVar(&cmd.DatabaseURL, "db-url", cfg.Database.URL, "Postgres DSN (takes precedence over -db)")
	fs.BoolVar(&cmd.Confirm, "confirm", false, "Actually delete imported content")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Count affected rows without deleting anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s rollback (-dry-run | -confirm) [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Undo an import by deleting images, options, questions, concepts and\n")
		fmt.Fprintf(os.Stderr, "chapters, in that order. One of -dry-run or -confirm is required.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # See what would be deleted:\n")
		fmt.Fprintf(os.Stderr, "  %s rollback -dry-run\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Delete everything (5 second grace period, Ctrl-C to abort):\n")
		fmt.Fprintf(os.Stderr, "  %s rollback -confirm\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Confirm == cmd.DryRun {
		// Neither flag, or contradictory flags: refuse to guess.
		fs.Usage()
		return errors.New("exactly one of -dry-run or -confirm is required")
	}

	return nil
}

// Run executes the rollback command
func (cmd *RollbackCommand) Run() error {
	fmt.Println("🗑  Import Rollback")
	fmt.Println("==================")

	db, err := database.NewDatabase(cmd.DatabaseURL, cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	rollback := importer.NewRollback(db)

	counts, err := rollback.Counts()
	if err != nil {
		return err
	}

	fmt.Println("\nRows per table (deletion order):")
	var total int64
	for _, count := range counts {
		fmt.Printf("  %-10s %d\n", count.Table, count.Rows)
		total += count.Rows
	}

	if cmd.DryRun {
		fmt.Printf("\n🔍 Dry run: %d rows would be deleted. No changes made.\n", total)
		return nil
	}

	if total == 0 {
		fmt.Println("\nℹ️  Nothing to delete.")
		return nil
	}

	fmt.Printf("\n⚠️  Deleting %d rows in ", total)
	for remaining := int(rollbackDelay / time.Second); remaining > 0; remaining-- {
		fmt.Printf("%d... ", remaining)
		time.Sleep(time.Second)
	}
	fmt.Println()

	deleted, err := rollback.Execute(context.Background())
	for _, count := range deleted {
		fmt.Printf("  🗑  %s: %d rows deleted\n", count.Table, count.Rows)
	}
	if err != nil {
		return err
	}

	fmt.Println("\n✅ Rollback complete!")
	return nil
}
