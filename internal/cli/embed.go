package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qmd-project/qmd/internal/config"
	"github.com/qmd-project/qmd/internal/embedder"
	"github.com/qmd-project/qmd/internal/engine"
	"github.com/qmd-project/qmd/internal/ui"
)

var (
	embedModel string
	embedForce bool
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed indexed content pending a vector representation",
	Long: `Chunk and embed every piece of content indexed but not yet
embedded under the configured model. Indexing and embedding are
separate passes: reindexing a collection is cheap and doesn't pay for
a model round-trip unless new or changed content actually needs one.

Examples:
  qmd embed
  qmd embed --model nomic-embed-text --force`,
	Args: cobra.NoArgs,
	RunE: runEmbed,
}

func init() {
	embedCmd.Flags().StringVar(&embedModel, "model", "", "embedding model (defaults to the configured embed model)")
	embedCmd.Flags().BoolVar(&embedForce, "force", false, "truncate existing vectors and re-embed everything")
}

func runEmbed(cmd *cobra.Command, args []string) error {
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
		cmd.Println("\nInterrupted, finishing current chunk...")
		cancel()
	}()

	model := embedModel
	if model == "" {
		model = cfg.LLM.EmbedModel
	}

	cmd.Println(ui.Header.Render("Embedding with " + model))
	cmd.Println()

	lastUpdate := time.Now()
	result, err := eng.Embedder.EmbedDocuments(ctx, embedder.Options{
		Model: model,
		Force: embedForce,
		OnProgress: func(p embedder.Progress) {
			if time.Since(lastUpdate) < 100*time.Millisecond && p.ChunksDone != p.TotalChunks {
				return
			}
			lastUpdate = time.Now()
			cmd.Printf("\r\033[KProgress: %d/%d chunks", p.ChunksDone, p.TotalChunks)
		},
	})
	cmd.Printf("\r\033[K")
	if err != nil {
		if ctx.Err() != nil {
			cmd.Println(ui.Warning.Render("Embedding cancelled"))
			return nil
		}
		return fmt.Errorf("embedding failed: %w", err)
	}

	cmd.Println(ui.Success.Render("Embedding complete"))
	cmd.Printf("  Targets: %d\n", result.Targets)
	cmd.Printf("  Chunks:  %d\n", result.Chunks)
	cmd.Printf("  Errors:  %d\n", result.Errors)

	return nil
}
