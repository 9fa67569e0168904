package detector

import "strings"

// detectionBuilder accumulates signal contributions for one rule.
// Each Check method adds its score and evidence at most once.
type detectionBuilder struct {
	rule       *compiledRule
	confidence int
	version    string
	evidence   []Evidence
}

func newDetectionBuilder(rule *compiledRule) *detectionBuilder {
	return &detectionBuilder{rule: rule}
}

// CheckFiles adds ScoreFilename when any declared filename is a substring of any path
func (b *detectionBuilder) CheckFiles(paths []string) *detectionBuilder {
	if len(b.rule.Files) == 0 {
		return b
	}

	var found []string
	for _, want := range b.rule.Files {
		for _, p := range paths {
			if strings.Contains(p, want) {
				found = append(found, want)
				break
			}
		}
	}

	if len(found) > 0 {
		b.confidence += ScoreFilename
		b.evidence = append(b.evidence, Evidence{Signal: SignalFilename, Values: found})
	}
	return b
}

// CheckManifest adds ScoreManifestKey when a declared key is present in deps.
// The version of the first matched key is recorded when non-empty.
func (b *detectionBuilder) CheckManifest(deps map[string]string) *detectionBuilder {
	if len(b.rule.ManifestKeys) == 0 || deps == nil {
		return b
	}

	var found []string
	for _, key := range b.rule.ManifestKeys {
		if _, ok := deps[key]; ok {
			found = append(found, key)
		}
	}
	if len(found) == 0 {
		return b
	}

	b.confidence += ScoreManifestKey
	b.evidence = append(b.evidence, Evidence{Signal: SignalManifest, Values: found})
	if v := strings.TrimSpace(deps[found[0]]); v != "" {
		b.version = v
		b.evidence = append(b.evidence, Evidence{Signal: SignalVersion, Values: []string{v}})
	}
	return b
}

// CheckPatterns adds ScorePathPattern when any path matches any declared pattern
func (b *detectionBuilder) CheckPatterns(paths []string) *detectionBuilder {
	if len(b.rule.patterns) == 0 {
		return b
	}

	matches := 0
	for _, p := range paths {
		for _, re := range b.rule.patterns {
			if re.MatchString(p) {
				matches++
				break
			}
		}
	}

	if matches > 0 {
		b.confidence += ScorePathPattern
		b.evidence = append(b.evidence, Evidence{Signal: SignalPattern, Count: matches})
	}
	return b
}

// Build returns the detection, or false when no signal fired
func (b *detectionBuilder) Build() (DetectedTech, bool) {
	if b.confidence <= 0 {
		return DetectedTech{}, false
	}

	confidence := b.confidence
	if confidence > MaxConfidence {
		confidence = MaxConfidence
	}

	return DetectedTech{
		Name:       b.rule.Name,
		Kind:       b.rule.Kind,
		Confidence: confidence,
		Version:    b.version,
		Evidence:   b.evidence,
		Icon:       b.rule.Icon,
	}, true
}
