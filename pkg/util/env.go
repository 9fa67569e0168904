package util

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
)

// LoadEnvFile reads a .env file into a map of variables.
func LoadEnvFile(filePath string) (map[string]string, error) {
	vars, err := godotenv.Read(filePath)
	if err != nil {
		return nil, fmt.Errorf("can't read %s: %w", filePath, err)
	}
	for k := range vars {
		if k == "" {
			return nil, fmt.Errorf("can't read %s: empty variable name", filePath)
		}
	}
	return vars, nil
}

// ApplyEnvFile loads a .env file into the process environment.
// Variables already set in the environment win. Returns the keys applied, sorted.
func ApplyEnvFile(filePath string) ([]string, error) {
	vars, err := LoadEnvFile(filePath)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var applied []string
	for _, k := range keys {
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		if err := os.Setenv(k, vars[k]); err != nil {
			return applied, fmt.Errorf("failed to set %s: %w", k, err)
		}
		applied = append(applied, k)
	}
	return applied, nil
}
