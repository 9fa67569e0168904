package cmd

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"stackscan/pkg/detector"
)

var rulesKind string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the technologies stackscan recognizes",
	Long: `List detection rules in evaluation order. Rules earlier in the list win
confidence ties when choosing the primary framework.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rules, err := filterRules(detector.DefaultCatalog().Rules(), rulesKind)
		if err != nil {
			exitWithError("Error: %v", err)
		}

		if jsonOutput {
			printJSON(rules)
			return
		}
		if err := writeRulesTable(os.Stdout, rules); err != nil {
			exitWithError("Error rendering table: %v", err)
		}
	},
}

// filterRules keeps rules of the named kind; an empty kind keeps all
func filterRules(rules []detector.Rule, kind string) ([]detector.Rule, error) {
	if kind == "" {
		return rules, nil
	}
	k, err := detector.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	out := make([]detector.Rule, 0, len(rules))
	for _, r := range rules {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out, nil
}

func writeRulesTable(w io.Writer, rules []detector.Rule) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Name", "Type", "Priority", "Files", "package.json keys", "Path patterns"})

	data := make([][]string, 0, len(rules))
	for _, r := range rules {
		data = append(data, []string{
			r.Name,
			r.Kind.String(),
			strconv.Itoa(r.Priority),
			strings.Join(r.Files, ", "),
			strings.Join(r.ManifestKeys, ", "),
			strings.Join(r.Patterns, " "),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVar(&rulesKind, "kind", "", "Only list rules of one kind: framework, language, library or tool")
}
