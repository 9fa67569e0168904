package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"stackscan/pkg/config"
	"stackscan/pkg/util"
)

const Version = "0.4.0"

var (
	jsonOutput      bool
	skipInteractive bool
	debugOutput     bool
	configPath      string
	apiURLFlag      string
	tokenFlag       string

	// settings is the effective configuration, loaded before every command
	settings *config.Config

	logoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	tipMsgStyle    = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("190")).Italic(true)
	endingMsgStyle = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("170")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const Logo = `
     _             _
 ___| |_ __ _  ___| | _____  ___ __ _ _ __
/ __| __/ _' |/ __| |/ / __|/ __/ _' | '_ \
\__ \ || (_| | (__|   <\__ \ (_| (_| | | | |
|___/\__\__,_|\___|_|\_\___/\___\__,_|_| |_|
`

var rootCmd = &cobra.Command{
	Use:   "stackscan [PROJECT_PATH]",
	Short: "Detect the technology stack of a project or GitHub repository",
	Long: Logo + `
stackscan identifies the languages, frameworks, libraries and tools a codebase uses,
with a confidence score and the evidence behind each detection.

Scan a local directory, analyze any GitHub repository you can read, or serve the same
analysis over HTTP and MCP.`,
	Version:           Version,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	Run:               runDetect,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings merges the config file, STACKSCAN_* variables and persistent flags
func loadSettings(cmd *cobra.Command, args []string) error {
	util.SetDebug(debugOutput)

	v, err := config.NewViper(configPath)
	if err != nil {
		return err
	}
	if err := config.BindFlags(v, cmd.Flags(), map[string]string{
		"github.api_url": "api-url",
	}); err != nil {
		return err
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	settings = cfg
	util.Debug("settings loaded from %s", v.ConfigFileUsed())
	return nil
}

var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// isTerminal reports whether stdout is an interactive terminal
func isTerminal() bool {
	if os.Getenv("CI") != "" || os.Getenv("TERM") == "dumb" || os.Getenv("TERM") == "" {
		return false
	}
	return stdoutIsTerminal()
}

// interactive reports whether output should use the terminal UI
func interactive() bool {
	return !jsonOutput && !skipInteractive && isTerminal()
}

func init() {
	rootCmd.SetVersionTemplate("stackscan version {{.Version}}\n")

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON (disables interactive mode)")
	rootCmd.PersistentFlags().BoolVar(&skipInteractive, "no-interactive", false, "Skip interactive prompts (for CI/automation)")
	rootCmd.PersistentFlags().BoolVar(&debugOutput, "debug", false, "Print debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the settings file (default ~/.stackscan/config.json)")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "GitHub API base URL, for GitHub Enterprise")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "GitHub token (overrides GITHUB_TOKEN and the token store)")
}
