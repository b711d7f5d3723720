package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qmd-project/qmd/internal/config"
	"github.com/qmd-project/qmd/internal/engine"
	"github.com/qmd-project/qmd/internal/indexer"
	"github.com/qmd-project/qmd/internal/ui"
)

var (
	indexGlob        string
	indexExcludeDirs []string
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index markdown files for search",
	Long: `Walk a directory, reconcile it against the collection's indexed
documents, and report what changed.

Examples:
  # Index the current directory
  qmd index

  # Index a specific directory with a custom glob
  qmd index ./notes --glob "**/*.md"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexGlob, "glob", "**/*.md", "glob pattern matched against files under path")
	indexCmd.Flags().StringSliceVar(&indexExcludeDirs, "exclude", nil, "additional directory names to skip")
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	cfg := config.Get()
	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cmd.Println("\nInterrupted, finishing current file...")
		cancel()
	}()

	excludeDirs := cfg.ExcludeDirs
	if len(indexExcludeDirs) > 0 {
		excludeDirs = append(excludeDirs, indexExcludeDirs...)
	}

	cmd.Println(ui.Header.Render("Indexing " + absPath))
	cmd.Println()

	lastUpdate := time.Now()
	result, err := eng.Indexer.IndexFiles(ctx, absPath, indexGlob, excludeDirs, func(p indexer.Progress) {
		if time.Since(lastUpdate) < 100*time.Millisecond && p.Current != p.Total {
			return
		}
		lastUpdate = time.Now()
		cmd.Printf("\r\033[KProgress: %d/%d | %s", p.Current, p.Total, p.RelPath)
	})
	cmd.Printf("\r\033[K")
	if err != nil {
		if ctx.Err() != nil {
			cmd.Println(ui.Warning.Render("Indexing cancelled"))
			return nil
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Println(ui.Success.Render("Indexing complete"))
	cmd.Printf("  Indexed:   %d\n", result.Indexed)
	cmd.Printf("  Updated:   %d\n", result.Updated)
	cmd.Printf("  Unchanged: %d\n", result.Unchanged)
	cmd.Printf("  Removed:   %d\n", result.Removed)
	cmd.Printf("  Orphaned content cleaned: %d\n", result.OrphanedContent)

	return nil
}
