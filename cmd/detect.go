package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stackscan/cmd/ui/detection"
	"stackscan/cmd/ui/spinner"
	"stackscan/pkg/analyzer"
	"stackscan/pkg/util"
)

var detectCmd = &cobra.Command{
	Use:   "detect [PROJECT_PATH]",
	Short: "Detect the technology stack of a local directory",
	Long: `Scan a local directory and report the languages, frameworks, libraries and tools it uses.

Dependency directories such as node_modules, .venv and dist are skipped. The root
package.json, requirements.txt and setup.cfg are read when present.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runDetect,
}

func runDetect(cmd *cobra.Command, args []string) {
	projectPath := "."
	if len(args) > 0 {
		projectPath = args[0]
	}

	absPath, err := util.ValidateProjectPath(projectPath)
	if err != nil {
		exitWithError("Error: %v", err)
	}
	name := util.ProjectName(absPath)
	svc := analyzer.NewService(nil, nil)

	var report *analyzer.Report
	scan := func() error {
		var err error
		report, err = svc.AnalyzeFS(os.DirFS(absPath), name)
		return err
	}

	if !interactive() {
		if err := scan(); err != nil {
			exitWithError("Error: %v", err)
		}
		report.Repository.Path = absPath
		printJSON(report)
		return
	}

	fmt.Printf("%s\n", logoStyle.Render(Logo))
	if err := spinner.Run(fmt.Sprintf("Scanning %s...", name), scan); err != nil {
		exitWithError("Error: %v", err)
	}
	report.Repository.Path = absPath

	if err := detection.ShowReport(report); err != nil {
		exitWithError("Error showing report: %v", err)
	}
	fmt.Printf("%s\n", tipMsgStyle.Render("Tip: Use --json for CI/automation mode"))
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
