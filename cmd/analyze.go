package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"stackscan/cmd/ui/detection"
	"stackscan/cmd/ui/picker"
	"stackscan/cmd/ui/spinner"
	"stackscan/pkg/analyzer"
	"stackscan/pkg/config"
	"stackscan/pkg/github"
)

var (
	analyzeBranch   string
	analyzePick     bool
	analyzeEvidence bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [OWNER/REPO | URL | ALIAS]",
	Short: "Analyze the technology stack of a GitHub repository",
	Long: `Analyze a GitHub repository without cloning it.

The repository can be given as owner/repo, owner/repo@branch, a GitHub URL, or an alias
saved with 'stackscan config add-repo'. Without an argument the current directory's git
origin is used. The default branch is analyzed unless --branch is set; if its tree cannot
be listed, master and main are tried in turn.`,
	Example: `  stackscan analyze vercel/next.js
  stackscan analyze https://github.com/pallets/flask --json
  stackscan analyze --pick`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	token := requireToken()
	ghcfg, err := githubConfig()
	if err != nil {
		exitWithError("Error: %v", err)
	}

	var req analyzer.Request
	switch {
	case analyzePick:
		if !interactive() {
			exitWithError("--pick needs an interactive terminal")
		}
		req, err = pickRepository(ctx, github.NewClient(token, ghcfg))
		if errors.Is(err, picker.ErrCancelled) {
			fmt.Println("Cancelled")
			return
		}
	default:
		var arg string
		if len(args) > 0 {
			arg = args[0]
		}
		req, err = resolveRepoTarget(arg, analyzeBranch, settings, ".")
	}
	if err != nil {
		exitWithError("Error: %v", err)
	}
	if analyzePick && analyzeBranch != "" {
		req.Branch = analyzeBranch
	}

	svc := analyzer.NewService(ghcfg.Factory(), nil)

	var report *analyzer.Report
	run := func() error {
		var err error
		report, err = svc.Analyze(ctx, token, req)
		return err
	}

	if interactive() {
		err = spinner.Run(fmt.Sprintf("Analyzing %s/%s...", req.Owner, req.Repo), run)
	} else {
		err = run()
	}
	switch {
	case errors.Is(err, analyzer.ErrUnauthorized):
		exitWithError("GitHub rejected the token. Run 'stackscan auth login' or check %s.", config.EnvGitHubToken)
	case err != nil:
		exitWithError("Failed to analyze %s/%s: %v", req.Owner, req.Repo, err)
	}

	if !interactive() {
		printJSON(report)
		return
	}
	if analyzeEvidence {
		fmt.Println(detection.Render(report, true))
		return
	}
	if err := detection.ShowReport(report); err != nil {
		exitWithError("Error showing report: %v", err)
	}
}

// pickRepository lets the user choose from their recently updated repositories
func pickRepository(ctx context.Context, client *github.Client) (analyzer.Request, error) {
	var repos []github.Repository
	err := spinner.Run("Fetching repositories...", func() error {
		var err error
		repos, err = client.ListRepositories(ctx, github.ListOptions{Limit: 100})
		return err
	})
	if err != nil {
		return analyzer.Request{}, fmt.Errorf("failed to list repositories: %w", err)
	}

	items := make([]picker.Item, 0, len(repos))
	for _, r := range repos {
		items = append(items, picker.Item{Title: r.FullName, Desc: repoDescription(r)})
	}

	idx, err := picker.Show(items, "Choose a repository to analyze")
	if err != nil {
		return analyzer.Request{}, err
	}
	chosen := repos[idx]
	return analyzer.Request{Owner: chosen.Owner, Repo: chosen.Name, Branch: chosen.DefaultBranch}, nil
}

func repoDescription(r github.Repository) string {
	var parts []string
	if r.Language != "" {
		parts = append(parts, r.Language)
	}
	if r.Private {
		parts = append(parts, "private")
	}
	if r.Description != "" {
		parts = append(parts, r.Description)
	}
	return strings.Join(parts, " · ")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeBranch, "branch", "b", "", "Branch to analyze (default: the repository's default branch)")
	analyzeCmd.Flags().BoolVar(&analyzePick, "pick", false, "Choose the repository from a list of your repositories")
	analyzeCmd.Flags().BoolVar(&analyzeEvidence, "evidence", false, "Print the report with evidence instead of the interactive view")
}
