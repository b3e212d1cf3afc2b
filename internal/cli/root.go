package cli

import (
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// RootCmd returns the deckbuilder command tree.
func RootCmd() *cobra.Command {
	var configPath string
	rootCmd := &cobra.Command{
		Use:     "deckbuilder",
		Short:   "Build, validate and save Yu-Gi-Oh! decks",
		Version: Version,
		Long: `deckbuilder edits one deck at a time against a card catalog.

It runs as an HTTP API (serve), as an MCP tool server over stdio (mcp),
or as one-off commands against the catalog and saved decks.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "deckbuilder.yaml", "path to the YAML config file")

	rootCmd.AddCommand(ServeCmd(&configPath))
	rootCmd.AddCommand(MCPCmd(&configPath))
	rootCmd.AddCommand(SearchCmd(&configPath))
	rootCmd.AddCommand(DecksCmd(&configPath))
	return rootCmd
}
