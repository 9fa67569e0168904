package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stackscan/pkg/analyzer"
	"stackscan/pkg/config"
	"stackscan/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing the tools
detect_directory, analyze_repository and list_rules.

analyze_repository uses the same GitHub token as the CLI: --token, GITHUB_TOKEN or the
token stored by 'stackscan auth login'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ghcfg, err := githubConfig()
		if err != nil {
			return err
		}

		svc := analyzer.NewService(ghcfg.Factory(), nil)
		return mcp.Serve(cmd.Context(), svc, mcpToken, Version)
	},
}

// mcpToken resolves the token per call so a login during the session is picked up
func mcpToken() (string, error) {
	token, _, err := config.ResolveGitHubToken(tokenFlag)
	if err != nil {
		return "", fmt.Errorf("failed to read token store: %w", err)
	}
	if token == "" {
		return "", errors.New("no GitHub token configured")
	}
	return token, nil
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
