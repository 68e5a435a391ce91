package cmd

import (
	"github.com/spf13/cobra"

	"github.com/IEvangelist/dotenv-aspire/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve env-file parsing tools over MCP (stdio)",
	Long: `Start a Model Context Protocol server on stdio exposing parse_env,
get_value, and list_keys tools, so agents can inspect env files without
shelling out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpserver.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
