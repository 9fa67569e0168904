package detection

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stackscan/pkg/analyzer"
	"stackscan/pkg/detector"
)

var (
	titleStyle       = lipgloss.NewStyle().Background(lipgloss.Color("#7D56F4")).Foreground(lipgloss.Color("#FAFAFA")).Bold(true).Padding(0, 1, 0)
	focusedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	nameStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	descriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0C0"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7D56F4")).Padding(1, 2).Width(72)
)

type model struct {
	report   *analyzer.Report
	showAll  bool
	quitting bool
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "q", "esc", "enter":
			m.quitting = true
			return m, tea.Quit
		case "e":
			m.showAll = !m.showAll
		}
	}
	return m, nil
}

func (m model) View() string {
	var s strings.Builder
	s.WriteString(Render(m.report, m.showAll))
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press "))
	s.WriteString(focusedStyle.Render("e"))
	s.WriteString(helpStyle.Render(" to toggle evidence, "))
	s.WriteString(focusedStyle.Render("q"))
	s.WriteString(helpStyle.Render(" to quit"))
	return s.String()
}

// Render formats a report as a styled summary. With evidence set every
// technology lists the signals that matched.
func Render(report *analyzer.Report, evidence bool) string {
	var s strings.Builder

	title := "Technology Report"
	if name := repoLabel(report.Repository); name != "" {
		title += ": " + name
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	var content strings.Builder
	content.WriteString(focusedStyle.Render("Primary framework: "))
	if report.PrimaryFramework != nil {
		content.WriteString(nameStyle.Render(report.PrimaryFramework.Name))
		content.WriteString(descriptionStyle.Render(fmt.Sprintf(" (%d%%)", report.PrimaryFramework.Confidence)))
	} else {
		content.WriteString(descriptionStyle.Render("none detected"))
	}
	content.WriteString("\n")
	fmt.Fprintf(&content, "%s%s\n", focusedStyle.Render("Files scanned: "), descriptionStyle.Render(fmt.Sprint(report.Repository.TotalFiles)))

	sections := []struct {
		label string
		techs []detector.DetectedTech
	}{
		{"Frameworks", report.Frameworks},
		{"Languages", report.Languages},
		{"Libraries", report.Libraries},
		{"Tools", report.Tools},
	}
	for _, sec := range sections {
		if len(sec.techs) == 0 {
			continue
		}
		content.WriteString("\n")
		content.WriteString(focusedStyle.Render(sec.label + ":"))
		content.WriteString("\n")
		for _, t := range sec.techs {
			content.WriteString("  ")
			content.WriteString(confidenceBar(t.Confidence))
			content.WriteString(" ")
			content.WriteString(nameStyle.Render(t.Name))
			if t.Version != "" {
				content.WriteString(descriptionStyle.Render(" " + t.Version))
			}
			content.WriteString("\n")
			if evidence {
				for _, line := range t.EvidenceText() {
					content.WriteString(descriptionStyle.Render("      " + line))
					content.WriteString("\n")
				}
			}
		}
	}

	if st := structureLines(report.Structure); len(st) > 0 {
		content.WriteString("\n")
		content.WriteString(focusedStyle.Render("Structure:"))
		content.WriteString("\n")
		for _, line := range st {
			content.WriteString(descriptionStyle.Render("  " + line))
			content.WriteString("\n")
		}
	}

	s.WriteString(boxStyle.Render(strings.TrimRight(content.String(), "\n")))
	return s.String()
}

func repoLabel(r analyzer.RepositoryInfo) string {
	switch {
	case r.Owner != "" && r.Branch != "":
		return fmt.Sprintf("%s/%s@%s", r.Owner, r.Repo, r.Branch)
	case r.Owner != "":
		return r.Owner + "/" + r.Repo
	default:
		return r.Repo
	}
}

// confidenceBar draws a ten-cell bar with the percentage
func confidenceBar(confidence int) string {
	filled := confidence / 10
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	return focusedStyle.Render(bar) + descriptionStyle.Render(fmt.Sprintf(" %3d%%", confidence))
}

func structureLines(st analyzer.Structure) []string {
	var lines []string
	var flags []string
	if st.HasDockerfile {
		flags = append(flags, "Dockerfile")
	}
	if st.HasCI {
		flags = append(flags, "CI")
	}
	if st.HasTests {
		flags = append(flags, "tests")
	}
	if len(flags) > 0 {
		lines = append(lines, "Has: "+strings.Join(flags, ", "))
	}
	if st.PackageManager != "" {
		lines = append(lines, fmt.Sprintf("Package manager: %s (%s)", st.PackageManager, st.InstallCommand))
	}
	if st.PythonPackageManager != "" {
		lines = append(lines, fmt.Sprintf("Python package manager: %s (%s)", st.PythonPackageManager, st.PythonInstallCommand))
	}
	if top := topFileTypes(st.FileTypes, 5); top != "" {
		lines = append(lines, "File types: "+top)
	}
	return lines
}

// topFileTypes lists the n most common extensions, most frequent first
func topFileTypes(counts map[string]int, n int) string {
	type kv struct {
		ext   string
		count int
	}
	var all []kv
	for ext, c := range counts {
		all = append(all, kv{ext, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].ext < all[j].ext
	})

	var parts []string
	for i := 0; i < len(all) && i < n; i++ {
		parts = append(parts, fmt.Sprintf("%s (%d)", all[i].ext, all[i].count))
	}
	return strings.Join(parts, ", ")
}

// ShowReport displays the report full-screen until the user quits
func ShowReport(report *analyzer.Report) error {
	p := tea.NewProgram(model{report: report}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error showing report: %w", err)
	}
	return nil
}
