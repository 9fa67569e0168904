package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"stackscan/pkg/config"
	"stackscan/pkg/github"
)

var (
	reposLimit int
	reposSort  string
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List your GitHub repositories",
	Long:  `List repositories you own, collaborate on, or can read through an organization, most recently updated first.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		token := requireToken()
		ghcfg, err := githubConfig()
		if err != nil {
			exitWithError("Error: %v", err)
		}

		repos, err := github.NewClient(token, ghcfg).ListRepositories(context.Background(), github.ListOptions{
			Sort:  reposSort,
			Limit: reposLimit,
		})
		if err != nil {
			if errors.Is(err, github.ErrBadCredentials) {
				exitWithError("GitHub rejected the token. Run 'stackscan auth login' or check %s.", config.EnvGitHubToken)
			}
			exitWithError("Failed to fetch repositories: %v", err)
		}

		if jsonOutput {
			if repos == nil {
				repos = []github.Repository{}
			}
			printJSON(repos)
			return
		}

		if len(repos) == 0 {
			os.Stdout.WriteString(mutedStyle.Render("No repositories found") + "\n")
			return
		}
		if err := writeReposTable(os.Stdout, repos); err != nil {
			exitWithError("Error rendering table: %v", err)
		}
	},
}

func writeReposTable(w io.Writer, repos []github.Repository) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Repository", "Language", "Stars", "Visibility", "Updated"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignLeft, tw.AlignLeft}
	})

	data := make([][]string, 0, len(repos))
	for _, r := range repos {
		visibility := "public"
		if r.Private {
			visibility = "private"
		}
		if r.Fork {
			visibility += " (fork)"
		}
		updated := ""
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.Format("2006-01-02")
		}
		data = append(data, []string{r.FullName, r.Language, strconv.Itoa(r.Stars), visibility, updated})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func init() {
	rootCmd.AddCommand(reposCmd)

	reposCmd.Flags().IntVarP(&reposLimit, "limit", "n", config.DefaultRepoLimit, "Maximum number of repositories to list (0 for all)")
	reposCmd.Flags().StringVar(&reposSort, "sort", "updated", "Sort by created, updated, pushed or full_name")
}
