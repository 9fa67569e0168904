package cmd

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"stackscan/pkg/config"
	"stackscan/pkg/util"
)

var (
	configStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	configLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	configValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
)

var (
	addRepoBranch string
	deleteYes     bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stackscan configuration",
	Long: `Manage settings, saved repository aliases and stored tokens.

Settings live in ~/.stackscan/config.json and can be overridden with STACKSCAN_* environment
variables, e.g. STACKSCAN_SERVER_SESSION_SECRET for server.session_secret.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List settings, saved repositories and stored tokens",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfigOrExit()
		tokens := loadTokensOrExit()

		providers := make([]string, 0, len(tokens.Tokens))
		for provider := range tokens.Tokens {
			providers = append(providers, provider)
		}

		if jsonOutput {
			values := make(map[string]string)
			for _, key := range config.Keys() {
				values[key] = displayValue(cfg, key)
			}
			printJSON(map[string]any{
				"settings": values,
				"repos":    cfg.Repos,
				"tokens":   providers,
			})
			return
		}

		fmt.Println(configStyle.Render("Settings:"))
		for _, key := range config.Keys() {
			value := displayValue(cfg, key)
			if value == "" {
				value = mutedStyle.Render("(not set)")
			} else {
				value = configValueStyle.Render(value)
			}
			fmt.Printf("  %s = %s\n", configLabelStyle.Render(key), value)
		}

		fmt.Printf("\n%s\n", configStyle.Render("Saved Repositories:"))
		if len(cfg.Repos) == 0 {
			fmt.Println(mutedStyle.Render("  No repositories saved yet"))
		} else {
			for _, name := range cfg.RepoNames() {
				fmt.Printf("  %s  %s\n", configLabelStyle.Render(name), configValueStyle.Render(cfg.Repos[name].String()))
			}
		}

		fmt.Printf("\n%s\n", configStyle.Render("Stored Tokens:"))
		if len(providers) == 0 {
			fmt.Println(mutedStyle.Render("  No tokens stored"))
		} else {
			for _, provider := range providers {
				fmt.Printf("  %s %s\n", configLabelStyle.Render("•"), configValueStyle.Render(provider))
			}
		}
		fmt.Println()
	},
}

// displayValue returns a setting with secrets masked
func displayValue(cfg *config.Config, key string) string {
	value, err := cfg.Get(key)
	if err != nil {
		return ""
	}
	if value != "" && config.IsSecretKey(key) {
		return config.MaskToken(value)
	}
	return value
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Valid keys:

  ` + strings.Join(config.Keys(), "\n  "),
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfigOrExit()
		if err := cfg.Set(args[0], args[1]); err != nil {
			exitWithError("Error: %v", err)
		}
		if err := cfg.SaveConfig(); err != nil {
			exitWithError("Error saving config: %v", err)
		}
		fmt.Printf("%s\n", successStyle.Render(fmt.Sprintf("✓ %s updated", strings.ToLower(args[0]))))
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := settings.Get(args[0]); err != nil {
			exitWithError("Error: %v", err)
		}
		fmt.Println(displayValue(settings, args[0]))
	},
}

var configAddRepoCmd = &cobra.Command{
	Use:   "add-repo <name> <owner/repo | URL>",
	Short: "Save a repository under a short name",
	Long: `Save a repository alias so it can be analyzed with 'stackscan analyze <name>'.

Example:
  stackscan config add-repo web acme/storefront --branch develop`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ref, err := util.ParseRepoRef(args[1])
		if err != nil {
			exitWithError("Error: %v", err)
		}
		if addRepoBranch != "" {
			ref.Branch = addRepoBranch
		}

		cfg := loadConfigOrExit()
		alias := config.RepoAlias{Owner: ref.Owner, Repo: ref.Repo, Branch: ref.Branch}
		if err := cfg.AddRepo(args[0], alias); err != nil {
			exitWithError("Error: %v", err)
		}
		if err := cfg.SaveConfig(); err != nil {
			exitWithError("Error saving config: %v", err)
		}
		fmt.Printf("%s\n", successStyle.Render(fmt.Sprintf("✓ Saved '%s' → %s", strings.ToLower(args[0]), alias)))
	},
}

var configRemoveRepoCmd = &cobra.Command{
	Use:   "remove-repo <name>",
	Short: "Remove a saved repository",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfigOrExit()
		if !cfg.RemoveRepo(args[0]) {
			exitWithError("No saved repository named '%s'", args[0])
		}
		if err := cfg.SaveConfig(); err != nil {
			exitWithError("Error saving config: %v", err)
		}
		fmt.Printf("%s\n", successStyle.Render(fmt.Sprintf("✓ Removed '%s'", args[0])))
	},
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token [provider] [token]",
	Short: "Store an API token",
	Long: `Store an API token. The provider defaults to github.

If the token is not given as an argument, you will be prompted to enter it securely.`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		provider := config.TokenProviderGitHub
		if len(args) > 0 {
			provider = strings.ToLower(args[0])
		}

		var token string
		if len(args) == 2 {
			token = args[1]
		} else {
			fmt.Printf("Enter API token for %s: ", provider)
			tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				exitWithError("Error reading token: %v", err)
			}
			token = string(tokenBytes)
		}

		if strings.TrimSpace(token) == "" {
			exitWithError("Token cannot be empty")
		}

		tokens := loadTokensOrExit()
		tokens.SetToken(provider, token)
		if err := tokens.SaveTokens(); err != nil {
			exitWithError("Error saving tokens: %v", err)
		}

		fmt.Printf("%s\n", successStyle.Render(fmt.Sprintf("✓ Token for '%s' saved successfully", provider)))
	},
}

var configGetTokenCmd = &cobra.Command{
	Use:   "get-token [provider]",
	Short: "Display a stored token (masked)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		provider := config.TokenProviderGitHub
		if len(args) > 0 {
			provider = strings.ToLower(args[0])
		}

		token := loadTokensOrExit().GetToken(provider)
		if token == "" {
			exitWithError("No token found for provider: %s", provider)
		}
		fmt.Printf("%s: %s\n", configLabelStyle.Render(provider), configValueStyle.Render(config.MaskToken(token)))
	},
}

var configDeleteTokenCmd = &cobra.Command{
	Use:   "delete-token [provider]",
	Short: "Remove a stored token",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		provider := config.TokenProviderGitHub
		if len(args) > 0 {
			provider = strings.ToLower(args[0])
		}

		tokens := loadTokensOrExit()
		if !tokens.HasToken(provider) {
			exitWithError("No token found for provider: %s", provider)
		}

		if !deleteYes {
			fmt.Printf("Delete token for %s? (y/N): ", provider)
			var response string
			fmt.Scanln(&response)
			if strings.ToLower(strings.TrimSpace(response)) != "y" {
				fmt.Println("Cancelled")
				return
			}
		}

		tokens.DeleteToken(provider)
		if err := tokens.SaveTokens(); err != nil {
			exitWithError("Error saving tokens: %v", err)
		}

		fmt.Fprintf(os.Stdout, "%s\n", successStyle.Render(fmt.Sprintf("✓ Token for '%s' deleted successfully", provider)))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configAddRepoCmd)
	configCmd.AddCommand(configRemoveRepoCmd)
	configCmd.AddCommand(configSetTokenCmd)
	configCmd.AddCommand(configGetTokenCmd)
	configCmd.AddCommand(configDeleteTokenCmd)

	configAddRepoCmd.Flags().StringVarP(&addRepoBranch, "branch", "b", "", "Branch to analyze for this repository")
	configDeleteTokenCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}
