package cmd

import (
	"github.com/huangsam/entran/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the entran MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents query the results directory:
refactoring counts and types, build status, combined metrics and recorded runs.`,
	// Stage headers go to stderr, so stdio stays clean for the protocol.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, resultManager)
	},
}
