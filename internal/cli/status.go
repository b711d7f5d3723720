package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qmd-project/qmd/internal/config"
	"github.com/qmd-project/qmd/internal/engine"
	"github.com/qmd-project/qmd/internal/store"
	"github.com/qmd-project/qmd/internal/ui"
)

var statusCollection string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show collection and model status",
	Long: `Display every indexed collection, its active document count,
and the models qmd is configured to use for embedding, query
expansion/answers, and reranking.

Examples:
  qmd status
  qmd status --collection notes`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusCollection, "collection", "", "limit status to a single collection by name")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer eng.Close()

	cols, err := eng.Collections.List()
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if statusCollection != "" {
		col, found, err := eng.Collections.GetByName(statusCollection)
		if err != nil {
			return fmt.Errorf("failed to look up collection: %w", err)
		}
		if !found {
			return fmt.Errorf("collection not found: %s", statusCollection)
		}
		cols = []store.Collection{*col}
	}

	if len(cols) == 0 {
		cmd.Println("No indexed collections found.")
		cmd.Println()
		cmd.Println("Run 'qmd index [path]' to create one.")
		return nil
	}

	cmd.Println(ui.Header.Render("Collection Status"))
	cmd.Println()

	for i, col := range cols {
		docs, err := eng.Documents.ListActive(col.ID)
		if err != nil {
			return fmt.Errorf("failed to list documents for %s: %w", col.Name, err)
		}

		cmd.Printf("%s %s\n", ui.Highlight.Render("Collection:"), ui.Bold.Render(col.Name))
		cmd.Printf("  %s %s\n", ui.Dim.Render("Path:"), col.Pwd)

		if _, statErr := os.Stat(col.Pwd); os.IsNotExist(statErr) {
			cmd.Printf("  %s\n", ui.Warning.Render("(path no longer exists)"))
		}

		cmd.Printf("  %s %s\n", ui.Dim.Render("Glob:"), col.GlobPattern)
		cmd.Printf("  %s %d\n", ui.Dim.Render("Active documents:"), len(docs))
		cmd.Printf("  %s %s\n", ui.Dim.Render("Updated:"), ui.FormatTime(col.UpdatedAt))

		pending, err := eng.Content.ListPendingEmbedding(cfg.LLM.EmbedModel)
		if err == nil {
			health := ui.Success.Render("healthy")
			if len(docs) == 0 {
				health = ui.Warning.Render("empty (no documents indexed)")
			} else if len(pending) > 0 {
				health = ui.Warning.Render(fmt.Sprintf("%d content bodies pending embedding (all collections)", len(pending)))
			}
			cmd.Printf("  %s %s\n", ui.Dim.Render("Health:"), health)
		}

		if i < len(cols)-1 {
			cmd.Println()
		}
	}

	if len(cols) > 1 {
		cmd.Println()
		cmd.Println(ui.Dim.Render(fmt.Sprintf("Total: %d collections", len(cols))))
	}

	cmd.Println()
	cmd.Println(ui.Dim.Render("Models:"))
	cmd.Printf("  Embed:  %s\n", cfg.LLM.EmbedModel)
	cmd.Printf("  Query:  %s\n", cfg.LLM.QueryModel)
	cmd.Printf("  Rerank: %s\n", cfg.LLM.RerankModel)

	return nil
}
