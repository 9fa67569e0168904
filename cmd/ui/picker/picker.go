package picker

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	focusedStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	titleStyle            = lipgloss.NewStyle().Background(lipgloss.Color("#7D56F4")).Foreground(lipgloss.Color("#FAFAFA")).Bold(true).Padding(0, 1, 0)
	selectedItemStyle     = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("170")).Bold(true)
	selectedItemDescStyle = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("170"))
	descriptionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0C0"))
	helpStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// ErrCancelled is returned when the user leaves the picker without choosing
var ErrCancelled = errors.New("selection cancelled")

// Item is one selectable row
type Item struct {
	Title string
	Desc  string
}

// pageSize is the number of rows shown at once
const pageSize = 10

type model struct {
	items    []Item
	header   string
	filter   string
	cursor   int
	chosen   int
	canceled bool
}

func newModel(items []Item, header string) model {
	return model{items: items, header: header, chosen: -1}
}

func (m model) Init() tea.Cmd {
	return nil
}

// visible returns indexes of items matching the filter
func (m model) visible() []int {
	var out []int
	q := strings.ToLower(m.filter)
	for i, it := range m.items {
		if q == "" || strings.Contains(strings.ToLower(it.Title), q) || strings.Contains(strings.ToLower(it.Desc), q) {
			out = append(out, i)
		}
	}
	return out
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	vis := m.visible()
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.canceled = true
		return m, tea.Quit
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(vis)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		if len(vis) > 0 {
			m.chosen = vis[m.cursor]
			return m, tea.Quit
		}
	case tea.KeyBackspace:
		if m.filter != "" {
			m.filter = m.filter[:len(m.filter)-1]
			m.cursor = 0
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filter += string(key.Runes)
		m.cursor = 0
	}
	return m, nil
}

func (m model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(m.header))
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Filter: "))
	s.WriteString(m.filter)
	s.WriteString("\n\n")

	vis := m.visible()
	start := 0
	if m.cursor >= pageSize {
		start = m.cursor - pageSize + 1
	}
	end := min(start+pageSize, len(vis))

	for pos := start; pos < end; pos++ {
		item := m.items[vis[pos]]
		cursor := " "
		title := focusedStyle.Render(item.Title)
		desc := descriptionStyle.Render(item.Desc)
		if pos == m.cursor {
			cursor = focusedStyle.Render(">")
			title = selectedItemStyle.Render(item.Title)
			desc = selectedItemDescStyle.Render(item.Desc)
		}
		fmt.Fprintf(&s, "%s %s\n", cursor, title)
		if item.Desc != "" {
			fmt.Fprintf(&s, "  %s\n", desc)
		}
	}
	if len(vis) == 0 {
		s.WriteString(helpStyle.Render("  no matches"))
		s.WriteString("\n")
	}

	fmt.Fprintf(&s, "\n%s\n", helpStyle.Render(fmt.Sprintf("%d of %d  |  type to filter, enter to choose, esc to exit", len(vis), len(m.items))))
	return s.String()
}

// Show runs the picker and returns the index of the chosen item
func Show(items []Item, header string) (int, error) {
	if len(items) == 0 {
		return -1, errors.New("nothing to choose from")
	}

	p := tea.NewProgram(newModel(items, header), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return -1, fmt.Errorf("error running picker: %w", err)
	}

	final := finalModel.(model)
	if final.canceled || final.chosen < 0 {
		return -1, ErrCancelled
	}
	return final.chosen, nil
}
