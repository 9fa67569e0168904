package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidateProjectPath validates and cleans a project path
// Returns the cleaned absolute path or an error
func ValidateProjectPath(projectPath string) (string, error) {
	projectPath = filepath.Clean(projectPath)

	info, err := os.Stat(projectPath)
	if err != nil {
		return "", fmt.Errorf("cannot access path '%s': %w", projectPath, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("path '%s' is not a directory", projectPath)
	}

	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return projectPath, nil
	}

	return absPath, nil
}

// ProjectName returns the display name for a project directory
func ProjectName(projectPath string) string {
	name := filepath.Base(projectPath)
	if name == "." || name == string(filepath.Separator) || name == "" {
		if wd, err := os.Getwd(); err == nil {
			return filepath.Base(wd)
		}
		return "project"
	}
	return name
}
