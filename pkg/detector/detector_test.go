package detector

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"stackscan/pkg/manifest"
)

func names(techs []DetectedTech) []string {
	out := make([]string, 0, len(techs))
	for _, t := range techs {
		out = append(out, t.Name)
	}
	return out
}

func find(techs []DetectedTech, name string) (DetectedTech, bool) {
	for _, t := range techs {
		if t.Name == name {
			return t, true
		}
	}
	return DetectedTech{}, false
}

func TestDetect_NextJSProject(t *testing.T) {
	snap := Snapshot{
		Files:        []string{"next.config.js", "src/app/page.tsx"},
		Dependencies: map[string]string{"next": "14.0.0", "react": "18.2.0"},
	}

	result := NewEngine(nil).Detect(snap)

	expected := map[string]int{
		"Next.js":    90,
		"React":      50,
		"TypeScript": 30,
		"JavaScript": 30,
	}
	for name, want := range expected {
		tech, ok := find(result.All(), name)
		if !ok {
			t.Fatalf("expected %s to be detected, got %v", name, names(result.All()))
		}
		if tech.Confidence != want {
			t.Errorf("%s confidence = %d, want %d", name, tech.Confidence, want)
		}
	}

	primary, ok := result.PrimaryFramework()
	if !ok || primary.Name != "Next.js" {
		t.Fatalf("expected primary framework Next.js, got %v (ok=%v)", primary.Name, ok)
	}
	if primary.Version != "14.0.0" {
		t.Errorf("Next.js version = %q, want 14.0.0", primary.Version)
	}

	wantEvidence := []string{"Found files: next.config.js", "Found in package.json: next", "Version: 14.0.0"}
	got := primary.EvidenceText()
	if strings.Join(got, "|") != strings.Join(wantEvidence, "|") {
		t.Errorf("Next.js evidence = %v, want %v", got, wantEvidence)
	}

	frameworks := names(result.Frameworks())
	if len(frameworks) != 2 || frameworks[0] != "Next.js" || frameworks[1] != "React" {
		t.Errorf("frameworks = %v, want [Next.js React]", frameworks)
	}
}

func TestDetect_FlaskProject(t *testing.T) {
	snap := Snapshot{Files: []string{"requirements.txt", "app.py"}}

	result := NewEngine(nil).Detect(snap)

	python, ok := find(result.Languages(), "Python")
	if !ok || python.Confidence != 70 {
		t.Fatalf("expected Python at 70, got %+v (ok=%v)", python, ok)
	}
	flask, ok := find(result.Frameworks(), "Flask")
	if !ok || flask.Confidence != 40 {
		t.Fatalf("expected Flask at 40, got %+v (ok=%v)", flask, ok)
	}

	for _, absent := range []string{"JavaScript", "Next.js"} {
		if _, ok := find(result.All(), absent); ok {
			t.Errorf("did not expect %s in %v", absent, names(result.All()))
		}
	}

	if len(python.Evidence) != 2 || python.Evidence[1].String() != "Found 1 matching files" {
		t.Errorf("unexpected Python evidence: %v", python.EvidenceText())
	}
}

func TestDetect_EmptySnapshot(t *testing.T) {
	result := NewEngine(nil).Detect(Snapshot{})

	if result.Len() != 0 {
		t.Fatalf("expected no detections, got %v", names(result.All()))
	}
	if _, ok := result.PrimaryFramework(); ok {
		t.Fatal("expected no primary framework")
	}
	if got := NewEngine(nil).DetectAll(Snapshot{}); len(got) != 0 {
		t.Fatalf("DetectAll() = %v, want empty", got)
	}
}

func TestDetect_SpringBootFromPom(t *testing.T) {
	result := NewEngine(nil).Detect(Snapshot{Files: []string{"pom.xml"}})

	frameworks := result.Frameworks()
	if len(frameworks) != 1 || frameworks[0].Name != "Spring Boot" || frameworks[0].Confidence != 40 {
		t.Fatalf("expected only Spring Boot at 40, got %+v", frameworks)
	}
	if langs := result.Languages(); len(langs) != 0 {
		t.Fatalf("expected no languages, got %v", names(langs))
	}
}

func TestDetect_TieBreakFollowsCatalogOrder(t *testing.T) {
	snap := Snapshot{Files: []string{"app.py", "manage.py"}}

	engine := NewEngine(nil)
	for i := 0; i < 20; i++ {
		frameworks := engine.Detect(snap).Frameworks()
		got := names(frameworks)
		if len(got) != 2 || got[0] != "Django" || got[1] != "Flask" {
			t.Fatalf("run %d: frameworks = %v, want [Django Flask]", i, got)
		}
		if frameworks[0].Confidence != 40 || frameworks[1].Confidence != 40 {
			t.Fatalf("expected both at 40, got %d and %d", frameworks[0].Confidence, frameworks[1].Confidence)
		}
	}
}

func TestDetect_CustomCatalogTieBreak(t *testing.T) {
	catalog := MustCatalog(
		Rule{Name: "Second", Kind: KindFramework, Files: []string{"b.cfg"}},
		Rule{Name: "First", Kind: KindFramework, Files: []string{"a.cfg"}},
	)

	got := names(NewEngine(catalog).Detect(Snapshot{Files: []string{"a.cfg", "b.cfg"}}).All())
	if len(got) != 2 || got[0] != "Second" || got[1] != "First" {
		t.Fatalf("expected declaration order [Second First], got %v", got)
	}
}

func TestDetect_ConfidenceClamped(t *testing.T) {
	catalog := MustCatalog(Rule{
		Name:         "Everything",
		Kind:         KindLibrary,
		Files:        []string{"lib.conf"},
		ManifestKeys: []string{"lib"},
		Patterns:     []string{`\.lib$`},
	})

	tech := NewEngine(catalog).DetectAll(Snapshot{
		Files:        []string{"lib.conf", "src/a.lib", "src/b.lib"},
		Dependencies: map[string]string{"lib": "^1.0.0"},
	})
	if len(tech) != 1 {
		t.Fatalf("expected one detection, got %d", len(tech))
	}
	if tech[0].Confidence != MaxConfidence {
		t.Errorf("confidence = %d, want clamp at %d", tech[0].Confidence, MaxConfidence)
	}
	if got := tech[0].Evidence[len(tech[0].Evidence)-1].String(); got != "Found 2 matching files" {
		t.Errorf("pattern evidence = %q", got)
	}
}

func TestDetect_ManifestKeyWithEmptyVersion(t *testing.T) {
	result := NewEngine(nil).Detect(Snapshot{Dependencies: map[string]string{"express": ""}})

	express, ok := find(result.All(), "Express.js")
	if !ok || express.Confidence != ScoreManifestKey {
		t.Fatalf("expected Express.js at %d, got %+v", ScoreManifestKey, express)
	}
	if express.Version != "" {
		t.Errorf("expected no version, got %q", express.Version)
	}
	if len(express.Evidence) != 1 {
		t.Errorf("expected only manifest evidence, got %v", express.EvidenceText())
	}
}

func TestDetect_ManifestIgnoredWithoutDependencies(t *testing.T) {
	result := NewEngine(nil).Detect(Snapshot{Files: []string{"README.md"}})
	if result.Len() != 0 {
		t.Fatalf("expected nothing, got %v", names(result.All()))
	}
}

func TestDetect_InvariantsAcrossSnapshots(t *testing.T) {
	snapshots := []Snapshot{
		{Files: []string{"package.json", "src/index.js", "src/App.vue", "vite.config.ts"}, Dependencies: map[string]string{"vue": "3.4.0", "pinia": "2.1.0", "vite": "5.0.0"}},
		{Files: []string{"angular.json", "src/main.ts", "tailwind.config.js"}, Dependencies: map[string]string{"@angular/core": "17.0.0", "tailwindcss": "3.0.0"}},
		{Files: []string{"pyproject.toml", "main.py", "app/settings.py"}},
	}

	engine := NewEngine(nil)
	for i, snap := range snapshots {
		result := engine.Detect(snap)
		all := result.All()

		for j, tech := range all {
			if tech.Confidence <= 0 || tech.Confidence > MaxConfidence {
				t.Errorf("snapshot %d: %s confidence %d out of range", i, tech.Name, tech.Confidence)
			}
			if len(tech.Evidence) == 0 {
				t.Errorf("snapshot %d: %s has no evidence", i, tech.Name)
			}
			if j > 0 && all[j-1].Confidence < tech.Confidence {
				t.Errorf("snapshot %d: not sorted at %d", i, j)
			}
		}

		total := 0
		for _, k := range Kinds {
			view := result.ByKind(k)
			total += len(view)
			for _, tech := range view {
				if tech.Kind != k {
					t.Errorf("snapshot %d: %s in %s view", i, tech.Name, k)
				}
			}
		}
		if total != len(all) {
			t.Errorf("snapshot %d: views cover %d of %d detections", i, total, len(all))
		}

		again := engine.DetectAll(snap)
		if strings.Join(names(again), ",") != strings.Join(names(all), ",") {
			t.Errorf("snapshot %d: non-deterministic result %v vs %v", i, names(again), names(all))
			continue
		}
		for j := range all {
			want := strings.Join(all[j].EvidenceText(), "|")
			if got := strings.Join(again[j].EvidenceText(), "|"); got != want {
				t.Errorf("snapshot %d: %s evidence %q vs %q", i, all[j].Name, got, want)
			}
		}
	}
}

func TestDetect_ConcurrentUse(t *testing.T) {
	engine := NewEngine(nil)
	snap := Snapshot{Files: []string{"next.config.js"}, Dependencies: map[string]string{"next": "14"}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p, ok := engine.Detect(snap).PrimaryFramework(); !ok || p.Name != "Next.js" {
				t.Errorf("unexpected primary %q", p.Name)
			}
		}()
	}
	wg.Wait()
}

func TestResult_AllReturnsCopy(t *testing.T) {
	result := NewEngine(nil).Detect(Snapshot{Files: []string{"pom.xml"}})
	all := result.All()
	all[0].Name = "mutated"

	if result.All()[0].Name != "Spring Boot" {
		t.Fatal("result was mutated through All()")
	}

	all[0].Evidence[0].Values[0] = "mutated"
	if got := result.All()[0].EvidenceText(); got[0] != "Found files: pom.xml" {
		t.Fatalf("evidence was mutated through All(): %v", got)
	}

	fw := result.Frameworks()
	fw[0].Evidence[0].Values[0] = "mutated"
	if p, _ := result.PrimaryFramework(); p.Evidence[0].Values[0] != "pom.xml" {
		t.Fatalf("evidence was mutated through Frameworks(): %v", p.EvidenceText())
	}
}

func TestNewSnapshot_MergesManifest(t *testing.T) {
	pkg, err := manifest.ParsePackageJSON([]byte(`{"dependencies":{"react":"18.0.0"},"devDependencies":{"typescript":"5.3.0"}}`))
	if err != nil {
		t.Fatalf("ParsePackageJSON() error = %v", err)
	}

	snap := NewSnapshot([]string{"src/index.ts"}, pkg)
	if !snap.HasManifest() {
		t.Fatal("expected manifest data")
	}

	ts, ok := find(NewEngine(nil).DetectAll(snap), "TypeScript")
	if !ok || ts.Confidence != 80 || ts.Version != "5.3.0" {
		t.Fatalf("expected TypeScript at 80 with version 5.3.0, got %+v", ts)
	}

	if NewSnapshot(nil, nil).HasManifest() {
		t.Fatal("expected no manifest for nil package.json")
	}
}

func TestDetectedTech_JSON(t *testing.T) {
	tech := NewEngine(nil).DetectAll(Snapshot{Files: []string{"pom.xml"}})[0]

	data, err := json.Marshal(tech)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["type"] != "framework" {
		t.Errorf("type = %v, want framework", decoded["type"])
	}
	if _, ok := decoded["version"]; ok {
		t.Error("version should be omitted when empty")
	}
	evidence, _ := decoded["evidence"].([]any)
	if len(evidence) != 1 || evidence[0] != "Found files: pom.xml" {
		t.Errorf("evidence = %v", decoded["evidence"])
	}
}

func TestNewCatalog_Errors(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
		want  string
	}{
		{"empty name", []Rule{{Kind: KindTool}}, "empty name"},
		{"duplicate", []Rule{{Name: "A", Kind: KindTool}, {Name: "A", Kind: KindTool}}, "duplicate rule"},
		{"invalid kind", []Rule{{Name: "A"}}, "invalid kind"},
		{"bad pattern", []Rule{{Name: "A", Kind: KindTool, Patterns: []string{"("}}}, "pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.rules...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("NewCatalog() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	if c.Len() != 25 {
		t.Fatalf("default catalog has %d rules, want 25", c.Len())
	}

	rule, ok := c.Lookup("Next.js")
	if !ok || rule.Kind != KindFramework || rule.Priority != 100 {
		t.Fatalf("unexpected Next.js rule: %+v", rule)
	}

	rules := c.Rules()
	rules[0].Files[0] = "mutated"
	if again, _ := c.Lookup("Next.js"); again.Files[0] != "next.config.js" {
		t.Fatal("catalog was mutated through Rules()")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		parsed, err := ParseKind(strings.ToUpper(k.String()))
		if err != nil || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), parsed, err)
		}
	}
	if _, err := ParseKind("database"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
