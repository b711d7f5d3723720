package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qmd-project/qmd/internal/config"
	"github.com/qmd-project/qmd/internal/engine"
	"github.com/qmd-project/qmd/internal/ui"
)

var contextCollection string

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage per-path context attached to a collection",
	Long: `Attach, remove, or list freeform context text bound to a path
prefix within a collection. A document inherits the context of the
longest matching prefix. Search results and synthesized answers do
not include this context.`,
}

var contextSetCmd = &cobra.Command{
	Use:   "set <prefix> <text>",
	Short: "Attach context to a path prefix",
	Long: `Create or replace the context text for a path prefix within a
collection. An empty prefix matches every document in the collection.

Examples:
  qmd context set --collection notes "" "Internal engineering notes."
  qmd context set --collection notes projects/qmd "Notes about the qmd project."`,
	Args: cobra.ExactArgs(2),
	RunE: runContextSet,
}

var contextRmCmd = &cobra.Command{
	Use:   "rm <prefix>",
	Short: "Remove the context attached to a path prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextRm,
}

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every context bound within a collection",
	Args:  cobra.NoArgs,
	RunE:  runContextList,
}

func init() {
	contextCmd.PersistentFlags().StringVar(&contextCollection, "collection", "", "collection name (required)")
	contextCmd.AddCommand(contextSetCmd, contextRmCmd, contextListCmd)
}

func resolveContextCollection(eng *engine.Engine) (int64, error) {
	if contextCollection == "" {
		return 0, fmt.Errorf("--collection is required")
	}
	col, found, err := eng.Collections.GetByName(contextCollection)
	if err != nil {
		return 0, fmt.Errorf("failed to look up collection: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("collection not found: %s", contextCollection)
	}
	return col.ID, nil
}

func runContextSet(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer eng.Close()

	collectionID, err := resolveContextCollection(eng)
	if err != nil {
		return err
	}

	prefix, text := args[0], args[1]
	if err := eng.Contexts.Upsert(collectionID, prefix, text); err != nil {
		return fmt.Errorf("failed to set context: %w", err)
	}

	cmd.Println(ui.Success.Render("Context set for prefix " + fmt.Sprintf("%q", prefix)))
	return nil
}

func runContextRm(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer eng.Close()

	collectionID, err := resolveContextCollection(eng)
	if err != nil {
		return err
	}

	if err := eng.Contexts.Delete(collectionID, args[0]); err != nil {
		return fmt.Errorf("failed to remove context: %w", err)
	}

	cmd.Println(ui.Success.Render("Context removed for prefix " + fmt.Sprintf("%q", args[0])))
	return nil
}

func runContextList(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer eng.Close()

	collectionID, err := resolveContextCollection(eng)
	if err != nil {
		return err
	}

	contexts, err := eng.Contexts.List(collectionID)
	if err != nil {
		return fmt.Errorf("failed to list contexts: %w", err)
	}

	if len(contexts) == 0 {
		cmd.Println("No context bound for this collection.")
		return nil
	}

	for _, c := range contexts {
		prefix := c.PathPrefix
		if prefix == "" {
			prefix = "(collection root)"
		}
		cmd.Printf("%s\n", ui.Highlight.Render(prefix))
		cmd.Printf("  %s\n", c.Context)
	}
	return nil
}
