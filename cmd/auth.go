package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"stackscan/pkg/auth"
	"stackscan/pkg/config"
	"stackscan/pkg/github"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in to GitHub",
	Long: `Manage the GitHub token stackscan uses for remote analysis.

'auth login' uses the OAuth device flow and needs a GitHub OAuth app client ID, set with
'stackscan config set github.client_id <id>' or STACKSCAN_GITHUB_CLIENT_ID. A personal
access token can be stored instead with 'stackscan config set-token github'.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the GitHub device flow",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		provider, err := auth.NewProvider(settings.GitHub.ClientID, settings.GitHub.ClientSecret, "", settings.GitHub.Scopes)
		if errors.Is(err, auth.ErrNotConfigured) {
			exitWithError("GitHub sign-in needs an OAuth app. Set github.client_id with 'stackscan config set' or %s_GITHUB_CLIENT_ID.", config.EnvPrefix)
		}
		if err != nil {
			exitWithError("Error: %v", err)
		}

		da, err := provider.StartDevice(ctx)
		if err != nil {
			exitWithError("Failed to start GitHub sign-in: %v", err)
		}

		fmt.Printf("\nOpen %s and enter the code:\n\n", endingMsgStyle.Render(da.VerificationURI))
		fmt.Printf("    %s\n\n", logoStyle.Render(da.UserCode))
		if !da.Expiry.IsZero() {
			fmt.Printf("%s\n", mutedStyle.Render(fmt.Sprintf("The code expires in %s. Waiting for authorization...", time.Until(da.Expiry).Round(time.Second))))
		}

		tok, err := provider.PollDevice(ctx, da)
		if err != nil {
			exitWithError("GitHub sign-in failed: %v", err)
		}

		ghcfg, err := githubConfig()
		if err != nil {
			exitWithError("Error: %v", err)
		}
		user, err := github.NewClient(tok.AccessToken, ghcfg).CurrentUser(ctx)
		if err != nil {
			exitWithError("Signed in, but fetching the GitHub profile failed: %v", err)
		}

		tokens := loadTokensOrExit()
		tokens.SetToken(config.TokenProviderGitHub, tok.AccessToken)
		if err := tokens.SaveTokens(); err != nil {
			exitWithError("Error saving token: %v", err)
		}

		fmt.Printf("\n%s\n", successStyle.Render(fmt.Sprintf("✓ Logged in as %s", user.Login)))
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored GitHub token",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tokens := loadTokensOrExit()
		if !tokens.DeleteToken(config.TokenProviderGitHub) {
			fmt.Println(mutedStyle.Render("Not logged in"))
			return
		}
		if err := tokens.SaveTokens(); err != nil {
			exitWithError("Error saving tokens: %v", err)
		}
		fmt.Printf("%s\n", successStyle.Render("✓ Logged out"))
		if os.Getenv(config.EnvGitHubToken) != "" {
			fmt.Printf("%s\n", tipMsgStyle.Render(fmt.Sprintf("Note: %s is still set in your environment", config.EnvGitHubToken)))
		}
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which GitHub account is in use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		token, source, err := config.ResolveGitHubToken(tokenFlag)
		if err != nil {
			exitWithError("Error reading token store: %v", err)
		}
		if token == "" {
			if jsonOutput {
				printJSON(map[string]any{"loggedIn": false})
				return
			}
			fmt.Println(mutedStyle.Render("Not logged in. Run 'stackscan auth login'."))
			os.Exit(1)
		}

		ghcfg, err := githubConfig()
		if err != nil {
			exitWithError("Error: %v", err)
		}
		user, err := github.NewClient(token, ghcfg).CurrentUser(cmd.Context())
		if errors.Is(err, github.ErrBadCredentials) {
			exitWithError("The token from %s was rejected by GitHub", source)
		}
		if err != nil {
			exitWithError("Failed to reach GitHub: %v", err)
		}

		if jsonOutput {
			printJSON(map[string]any{
				"loggedIn": true,
				"login":    user.Login,
				"source":   string(source),
				"apiUrl":   ghcfg.BaseURL.String(),
			})
			return
		}

		fmt.Printf("%s %s\n", successStyle.Render("✓ Logged in as"), endingMsgStyle.Render(user.Login))
		fmt.Printf("  Token:  %s %s\n", config.MaskToken(token), mutedStyle.Render("(from "+string(source)+")"))
		fmt.Printf("  API:    %s\n", ghcfg.BaseURL.String())
	},
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}
