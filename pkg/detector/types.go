package detector

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Kind classifies a detected technology
type Kind int

const (
	KindFramework Kind = iota + 1
	KindLanguage
	KindLibrary
	KindTool
)

// Kinds lists every valid Kind in display order
var Kinds = []Kind{KindFramework, KindLanguage, KindLibrary, KindTool}

func (k Kind) String() string {
	switch k {
	case KindFramework:
		return "framework"
	case KindLanguage:
		return "language"
	case KindLibrary:
		return "library"
	case KindTool:
		return "tool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the declared kinds
func (k Kind) Valid() bool {
	switch k {
	case KindFramework, KindLanguage, KindLibrary, KindTool:
		return true
	}
	return false
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind: %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts a kind name (case-insensitive) into a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "framework":
		return KindFramework, nil
	case "language":
		return KindLanguage, nil
	case "library":
		return KindLibrary, nil
	case "tool":
		return KindTool, nil
	}
	return 0, fmt.Errorf("unknown technology kind: %q", s)
}

// Rule declares how to recognize one technology from repository signals
type Rule struct {
	Name         string
	Kind         Kind
	Files        []string // substrings matched against every path
	ManifestKeys []string // keys looked up in the merged dependency map
	Patterns     []string // regular expressions matched against every path
	Priority     int      // ranking hint, not part of confidence
	Icon         string
}

// SignalKind identifies which signal produced a piece of evidence
type SignalKind int

const (
	SignalFilename SignalKind = iota + 1
	SignalManifest
	SignalVersion
	SignalPattern
)

func (s SignalKind) String() string {
	switch s {
	case SignalFilename:
		return "filename"
	case SignalManifest:
		return "manifest"
	case SignalVersion:
		return "version"
	case SignalPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// Evidence records one contributing signal. Values holds the matched
// filenames, manifest keys or version; Count holds the number of paths
// matched by a pattern signal.
type Evidence struct {
	Signal SignalKind
	Values []string
	Count  int
}

func (e Evidence) String() string {
	switch e.Signal {
	case SignalFilename:
		return "Found files: " + strings.Join(e.Values, ", ")
	case SignalManifest:
		return "Found in package.json: " + strings.Join(e.Values, ", ")
	case SignalVersion:
		return "Version: " + strings.Join(e.Values, ", ")
	case SignalPattern:
		return fmt.Sprintf("Found %d matching files", e.Count)
	default:
		return strings.Join(e.Values, ", ")
	}
}

func (e Evidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// DetectedTech is one technology found in a snapshot
type DetectedTech struct {
	Name       string     `json:"name"`
	Kind       Kind       `json:"type"`
	Confidence int        `json:"confidence"`
	Version    string     `json:"version,omitempty"`
	Evidence   []Evidence `json:"evidence"`
	Icon       string     `json:"icon,omitempty"`
}

// clone returns a copy that shares no slices with d
func (d DetectedTech) clone() DetectedTech {
	if d.Evidence != nil {
		ev := make([]Evidence, len(d.Evidence))
		for i, e := range d.Evidence {
			e.Values = slices.Clone(e.Values)
			ev[i] = e
		}
		d.Evidence = ev
	}
	return d
}

// EvidenceText renders the evidence in order as display strings
func (d DetectedTech) EvidenceText() []string {
	out := make([]string, 0, len(d.Evidence))
	for _, e := range d.Evidence {
		out = append(out, e.String())
	}
	return out
}

// Snapshot is the per-request view of a repository the engine evaluates.
// A nil Dependencies map means no manifest was available.
type Snapshot struct {
	Files        []string
	Dependencies map[string]string
}

// HasManifest reports whether the snapshot carries manifest data
func (s Snapshot) HasManifest() bool {
	return s.Dependencies != nil
}
