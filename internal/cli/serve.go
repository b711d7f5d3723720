package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/qmd-project/qmd/internal/config"
	"github.com/qmd-project/qmd/internal/engine"
	"github.com/qmd-project/qmd/internal/indexer"
	"github.com/qmd-project/qmd/internal/toolserver"
	"github.com/qmd-project/qmd/internal/watch"
)

var (
	serveNoWatch bool
	serveGlob    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tool server for agent integration",
	Long: `Start qmd's stdio tool server for integration with AI agents.

The server communicates via stdin/stdout using line-delimited JSON and
exposes search, vsearch, query, get, multi_get and status operations,
plus a qmd:// document resource endpoint.

By default, the server also starts a background watcher over the
current directory to keep its index current. Use --no-watch to
disable this.

This command is typically invoked by an agent host, not run directly
by users.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "disable the background watcher")
	serveCmd.Flags().StringVar(&serveGlob, "glob", "**/*.md", "glob pattern matched while watching")
}

func runServe(cmd *cobra.Command, args []string) error {
	log.SetOutput(os.Stderr)

	cfg := config.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer eng.Close()

	if !serveNoWatch {
		go startBackgroundWatcher(ctx, eng, cfg)
	}

	srv := toolserver.New(eng.Search, eng.Content, eng.Documents, eng.Collections, eng.Provider, cfg)
	return srv.Run(ctx)
}

// startBackgroundWatcher watches the current directory for changes and
// keeps it reconciled against its collection. Mirrors the teacher's
// own delayed-start background watcher tied to a Model Context
// Protocol-style server command.
func startBackgroundWatcher(ctx context.Context, eng *engine.Engine, cfg *config.Config) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
	}

	cwd, err := os.Getwd()
	if err != nil {
		log.Error("failed to get working directory", "error", err)
		return
	}

	absPath, err := filepath.Abs(cwd)
	if err != nil {
		log.Error("failed to resolve path", "error", err)
		return
	}

	log.Info("starting background watcher", "path", absPath)

	w, err := watch.New(absPath, serveGlob, cfg.ExcludeDirs, eng.Indexer,
		watch.WithDebounce(1*time.Second),
		watch.WithEventCallback(func(result indexer.Result) {
			log.Debug("background watcher reindexed", "indexed", result.Indexed, "updated", result.Updated, "removed", result.Removed)
		}),
	)
	if err != nil {
		log.Error("failed to create watcher", "error", err)
		return
	}

	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		log.Error("watcher error", "error", err)
	}
}
