// Package manifest parses dependency manifests found in a repository.
package manifest

import (
	"encoding/json"
	"fmt"
	"sort"
)

// PackageJSONFile is the manifest filename consulted for dependency signals
const PackageJSONFile = "package.json"

// PackageJSON holds the parts of a package.json descriptor used for detection
type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ParsePackageJSON decodes package.json content.
// Dependency values that are not strings (workspace objects, nulls) are
// kept as empty versions so the dependency name still counts.
func ParsePackageJSON(data []byte) (*PackageJSON, error) {
	var raw struct {
		Name            string                     `json:"name"`
		Version         string                     `json:"version"`
		Scripts         map[string]string          `json:"scripts"`
		Dependencies    map[string]json.RawMessage `json:"dependencies"`
		DevDependencies map[string]json.RawMessage `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}

	return &PackageJSON{
		Name:            raw.Name,
		Version:         raw.Version,
		Scripts:         raw.Scripts,
		Dependencies:    versionMap(raw.Dependencies),
		DevDependencies: versionMap(raw.DevDependencies),
	}, nil
}

func versionMap(in map[string]json.RawMessage) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for name, raw := range in {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			v = ""
		}
		out[name] = v
	}
	return out
}

// Merged returns dependencies overlaid with devDependencies in one lookup map.
// A key present in both resolves to the devDependencies version.
func (p *PackageJSON) Merged() map[string]string {
	merged := make(map[string]string, len(p.Dependencies)+len(p.DevDependencies))
	for k, v := range p.Dependencies {
		merged[k] = v
	}
	for k, v := range p.DevDependencies {
		merged[k] = v
	}
	return merged
}

// DependencyNames returns the runtime dependency names, sorted
func (p *PackageJSON) DependencyNames() []string {
	return sortedKeys(p.Dependencies)
}

// DevDependencyNames returns the development dependency names, sorted
func (p *PackageJSON) DevDependencyNames() []string {
	return sortedKeys(p.DevDependencies)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
