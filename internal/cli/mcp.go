package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	deckmcp "github.com/youruser/deckbuilder/internal/mcp"
)

// MCPCmd returns the mcp command
func MCPCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the deck tools over MCP on stdio",
		Long: `Serve the deck tools to an MCP client over stdin/stdout.

Logs go to stderr so they never interleave with the protocol stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			s := deckmcp.NewServer(Version, a.engine(), a.catalog)
			return server.ServeStdio(s)
		},
	}
}
