package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qmd-project/qmd/internal/config"
	"github.com/qmd-project/qmd/internal/engine"
	"github.com/qmd-project/qmd/internal/search"
	"github.com/qmd-project/qmd/internal/ui"
)

var (
	searchLimit    int
	searchMinScore float64
	searchVector   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Lexical full-text search",
	Long: `Run a full-text search over indexed documents using FTS5 BM25
scoring. Pass --vector to run a vector KNN search instead.

Examples:
  qmd search "release checklist"
  qmd search "error handling" --vector --min-score 0.3`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "m", 10, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0.0, "minimum score to include")
	searchCmd.Flags().BoolVar(&searchVector, "vector", false, "use vector KNN search instead of FTS")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	cfg := config.Get()

	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer eng.Close()

	opts := search.DefaultOptions()
	opts.Limit = searchLimit
	opts.MinScore = searchMinScore
	opts.EmbedModel = cfg.LLM.EmbedModel

	ctx := context.Background()
	var hits []search.SearchHit
	if searchVector {
		hits, err = eng.Search.SearchVector(ctx, query, opts)
	} else {
		hits, err = eng.Search.SearchFTS(ctx, query, opts)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	kept := hits[:0]
	for _, h := range hits {
		if h.Score >= searchMinScore {
			kept = append(kept, h)
		}
	}
	hits = kept

	printHits(cmd, hits)
	return nil
}

func printHits(cmd *cobra.Command, hits []search.SearchHit) {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return
	}

	for i, h := range hits {
		cmd.Printf("%d. %s %s\n", i+1, ui.FormatDisplayPath(h.DisplayPath, h.Source), ui.FormatScore(h.Score))
		if h.Title != "" {
			cmd.Println("   " + ui.Dim.Render(h.Title))
		}
		if h.Snippet != "" {
			cmd.Println(ui.ResultSnippet.Render(h.Snippet))
		}
	}
}
