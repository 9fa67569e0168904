package detector

import (
	"slices"

	"stackscan/pkg/manifest"
)

// Engine evaluates a rule catalog against repository snapshots.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	catalog *Catalog
}

// NewEngine creates an engine over catalog, or the default catalog when nil
func NewEngine(catalog *Catalog) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{catalog: catalog}
}

// Catalog returns the engine's rule catalog
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// NewSnapshot builds a snapshot from a file list and an optional package.json
func NewSnapshot(files []string, pkg *manifest.PackageJSON) Snapshot {
	s := Snapshot{Files: files}
	if pkg != nil {
		s.Dependencies = pkg.Merged()
	}
	return s
}

// Detect evaluates every rule independently and returns the ranked result
func (e *Engine) Detect(s Snapshot) Result {
	var detected []DetectedTech
	for i := range e.catalog.rules {
		tech, ok := newDetectionBuilder(&e.catalog.rules[i]).
			CheckFiles(s.Files).
			CheckManifest(s.Dependencies).
			CheckPatterns(s.Files).
			Build()
		if ok {
			detected = append(detected, tech)
		}
	}

	// stable: equal confidences keep catalog order
	slices.SortStableFunc(detected, func(a, b DetectedTech) int {
		return b.Confidence - a.Confidence
	})

	return Result{all: detected}
}

// DetectAll returns every detected technology sorted by confidence, descending
func (e *Engine) DetectAll(s Snapshot) []DetectedTech {
	return e.Detect(s).All()
}

// Result is one evaluation of the catalog. Views filter the same ranked list.
type Result struct {
	all []DetectedTech
}

// All returns every detection, highest confidence first.
// The returned detections are copies and may be modified freely.
func (r Result) All() []DetectedTech {
	if r.all == nil {
		return nil
	}
	out := make([]DetectedTech, len(r.all))
	for i, t := range r.all {
		out[i] = t.clone()
	}
	return out
}

// Len returns the number of detections
func (r Result) Len() int {
	return len(r.all)
}

// ByKind returns detections of kind k, preserving rank order
func (r Result) ByKind(k Kind) []DetectedTech {
	var out []DetectedTech
	for _, t := range r.all {
		if t.Kind == k {
			out = append(out, t.clone())
		}
	}
	return out
}

func (r Result) Frameworks() []DetectedTech { return r.ByKind(KindFramework) }
func (r Result) Languages() []DetectedTech  { return r.ByKind(KindLanguage) }
func (r Result) Libraries() []DetectedTech  { return r.ByKind(KindLibrary) }
func (r Result) Tools() []DetectedTech      { return r.ByKind(KindTool) }

// PrimaryFramework returns the highest-confidence framework, if any
func (r Result) PrimaryFramework() (DetectedTech, bool) {
	for _, t := range r.all {
		if t.Kind == KindFramework {
			return t.clone(), true
		}
	}
	return DetectedTech{}, false
}
