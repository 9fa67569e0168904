package detector

// Confidence contributions per signal. Each signal counts at most once per rule.
const (
	// ScoreFilename is added when any declared filename appears in a path
	// Examples: next.config.js, angular.json, requirements.txt
	ScoreFilename = 40

	// ScoreManifestKey is added when a declared key is in the merged dependency map
	// Examples: "next" or "@angular/core" in package.json
	ScoreManifestKey = 50

	// ScorePathPattern is added when any path matches a declared pattern
	// Examples: .vue files, .tsx files
	ScorePathPattern = 30

	// MaxConfidence caps the summed score
	MaxConfidence = 100
)
