package manifest

import (
	"strings"
)

// RequirementsFile is the plain-text Python dependency list
const RequirementsFile = "requirements.txt"

// SplitRequirements splits requirements.txt content into its non-blank lines
func SplitRequirements(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// RequirementName extracts the distribution name from a requirement line.
// Comments, option lines (-r, --index-url) and URLs yield "".
func RequirementName(line string) string {
	line = strings.TrimSpace(line)
	if i := strings.Index(line, "#"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" || strings.HasPrefix(line, "-") {
		return ""
	}

	if end := strings.IndexAny(line, "<>=!~;[ @\t"); end >= 0 {
		line = line[:end]
	}
	if strings.Contains(line, "://") {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(line))
}

// RequirementNames returns the unique distribution names from requirement lines, in order
func RequirementNames(lines []string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, line := range lines {
		name := RequirementName(line)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
