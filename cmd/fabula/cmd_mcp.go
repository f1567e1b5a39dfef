package main

import (
	"github.com/spf13/cobra"

	"fabula/internal/bible"
	"fabula/internal/logging"
	"fabula/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve blend tools over MCP stdio",
	Long: `Runs an MCP server on stdin/stdout exposing the blend engine as tools:
blend, get_blend_rules and validate_rules. Meant to be launched by an MCP
client, not interactively.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVarP(&flagRulesPath, "rules", "r", "", "path to a rulebook file (default: embedded curated rules)")
}

func runMCP(cmd *cobra.Command, _ []string) error {
	rules, err := loadRules(flagRulesPath)
	if err != nil {
		return err
	}
	schemas, metaphors, frames, err := bible.DefaultBanks()
	if err != nil {
		return err
	}

	logger := logging.New("mcp")
	logger.Info("starting mcp server", "version", version)

	srv := mcp.NewServer(version, rules, schemas, metaphors, frames)
	return srv.Run(cmd.Context())
}
