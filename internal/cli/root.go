// Package cli implements qmd's command-line frontend: argument
// parsing, calling into the core engine, and formatting output. No
// business logic lives here, per spec.md §1's scoping of the core vs.
// its frontends.
package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qmd-project/qmd/internal/config"
	"github.com/qmd-project/qmd/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile string
	debug   bool
)

// SetVersionInfo records build-time version metadata for the version command.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

var rootCmd = &cobra.Command{
	Use:   "qmd",
	Short: "On-device markdown search engine",
	Long: `qmd indexes collections of markdown files from the local filesystem,
persists them in a single embedded database, and serves hybrid
(lexical + semantic) search through this CLI or a machine-readable
tool server over standard input/output.

Examples:
  # Index the current directory
  qmd index

  # Hybrid search with reranking
  qmd query "engineering culture"

  # Lexical-only search
  qmd search "release checklist"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			log.SetLevel(log.DebugLevel)
			log.Debug("debug logging enabled")
		}
		if err := config.Load(cfgFile); err != nil {
			log.Warn("failed to load config", "error", err)
		}
		return nil
	},
}

// Execute runs the root command. Called once by cmd/qmd/main.go.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	ui.InitLogger()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/qmd/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("qmd %s\n", version)
		cmd.Printf("  commit: %s\n", commit)
		cmd.Printf("  built:  %s\n", date)
	},
}
