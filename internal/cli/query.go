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
	queryLimit       int
	queryMinScore    float64
	queryExpandCount int
	queryNoAnswer    bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Hybrid search with query expansion, RRF fusion and rerank",
	Long: `Run qmd's full retrieval pipeline: expand the query via the LLM,
fan out FTS and vector search over every variant, fuse the rank lists
with Reciprocal Rank Fusion, rerank the fused candidates, and
synthesize a natural-language answer from the top results.

Examples:
  qmd query "how does engineering culture get reinforced here"
  qmd query "release checklist" --no-answer`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "m", 10, "maximum number of results")
	queryCmd.Flags().Float64Var(&queryMinScore, "min-score", 0.0, "minimum blended score to include")
	queryCmd.Flags().IntVar(&queryExpandCount, "expand", 2, "number of query expansions to generate")
	queryCmd.Flags().BoolVar(&queryNoAnswer, "no-answer", false, "skip LLM answer synthesis")
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]
	cfg := config.Get()

	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer eng.Close()

	opts := search.DefaultOptions()
	opts.Limit = queryLimit
	opts.MinScore = queryMinScore
	opts.ExpandCount = queryExpandCount
	opts.EmbedModel = cfg.LLM.EmbedModel
	opts.QueryModel = cfg.LLM.QueryModel
	opts.RerankModel = cfg.LLM.RerankModel
	opts.Rerank = true

	ctx := context.Background()
	hits, err := eng.Search.SearchHybrid(ctx, question, opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	printHits(cmd, hits)

	if queryNoAnswer || len(hits) == 0 {
		return nil
	}

	answer, err := eng.Search.Answer(ctx, question, cfg.LLM.QueryModel, hits)
	if err != nil {
		return fmt.Errorf("failed to synthesize answer: %w", err)
	}

	cmd.Println()
	cmd.Println(ui.Header.Render("Answer"))
	rendered, err := ui.RenderMarkdown(answer)
	if err != nil {
		cmd.Println(answer)
		return nil
	}
	cmd.Print(rendered)
	return nil
}

