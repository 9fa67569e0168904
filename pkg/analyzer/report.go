package analyzer

import (
	"path"
	"slices"
	"sort"
	"strings"

	"stackscan/pkg/detector"
	"stackscan/pkg/detector/packagemanagers"
	"stackscan/pkg/manifest"
)

// noExtension buckets files whose base name has no dot
const noExtension = "no-extension"

// Report is the result of analyzing one repository
type Report struct {
	Repository           RepositoryInfo          `json:"repository"`
	DetectedTechnologies []detector.DetectedTech `json:"detectedTechnologies"`
	PrimaryFramework     *detector.DetectedTech  `json:"primaryFramework"`
	Languages            []detector.DetectedTech `json:"languages"`
	Frameworks           []detector.DetectedTech `json:"frameworks"`
	Libraries            []detector.DetectedTech `json:"libraries"`
	Tools                []detector.DetectedTech `json:"tools"`
	Structure            Structure               `json:"structure"`
	PackageJSON          *PackageSummary         `json:"packageJson"`
	RequirementsTxt      []string                `json:"requirementsTxt"`
	PythonDependencies   []string                `json:"pythonDependencies"`
}

// RepositoryInfo identifies what was analyzed
type RepositoryInfo struct {
	Owner      string `json:"owner,omitempty"`
	Repo       string `json:"repo"`
	Branch     string `json:"branch,omitempty"`
	Path       string `json:"path,omitempty"`
	TotalFiles int    `json:"totalFiles"`
}

// Structure summarizes repository layout
type Structure struct {
	HasDockerfile        bool           `json:"hasDockerfile"`
	HasCI                bool           `json:"hasCI"`
	HasTests             bool           `json:"hasTests"`
	Directories          []string       `json:"directories"`
	FileTypes            map[string]int `json:"fileTypes"`
	PackageManager       string         `json:"packageManager,omitempty"`
	InstallCommand       string         `json:"installCommand,omitempty"`
	PythonPackageManager string         `json:"pythonPackageManager,omitempty"`
	PythonInstallCommand string         `json:"pythonInstallCommand,omitempty"`
}

// PackageSummary is the package.json view included in a report
type PackageSummary struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Scripts         map[string]string `json:"scripts,omitempty"`
	Dependencies    []string          `json:"dependencies"`
	DevDependencies []string          `json:"devDependencies"`
}

func (s *Service) buildReport(files []string, m manifests) *Report {
	result := s.engine.Detect(detector.NewSnapshot(files, m.packageJSON))

	r := &Report{
		DetectedTechnologies: nonNil(result.All()),
		Languages:            nonNil(result.Languages()),
		Frameworks:           nonNil(result.Frameworks()),
		Libraries:            nonNil(result.Libraries()),
		Tools:                nonNil(result.Tools()),
		Structure:            SummarizeStructure(files),
		RequirementsTxt:      m.requirements,
	}
	if primary, ok := result.PrimaryFramework(); ok {
		r.PrimaryFramework = &primary
	}

	if m.packageJSON != nil {
		r.PackageJSON = &PackageSummary{
			Name:            m.packageJSON.Name,
			Version:         m.packageJSON.Version,
			Scripts:         m.packageJSON.Scripts,
			Dependencies:    m.packageJSON.DependencyNames(),
			DevDependencies: m.packageJSON.DevDependencyNames(),
		}
	}

	if m.requirements != nil || m.setupCfg != nil {
		names := manifest.RequirementNames(append(slices.Clone(m.requirements), m.setupCfg...))
		sort.Strings(names)
		r.PythonDependencies = nonNil(names)
	}

	return r
}

// SummarizeStructure derives layout facts from a file listing
func SummarizeStructure(files []string) Structure {
	st := Structure{
		Directories: []string{},
		FileTypes:   map[string]int{},
	}

	dirs := map[string]bool{}
	for _, f := range files {
		if strings.Contains(f, "Dockerfile") {
			st.HasDockerfile = true
		}
		if strings.Contains(f, ".github/workflows") || strings.Contains(f, ".gitlab-ci.yml") || strings.Contains(f, "jenkins") {
			st.HasCI = true
		}
		if strings.Contains(f, "test") || strings.Contains(f, "spec") || strings.Contains(f, "__tests__") {
			st.HasTests = true
		}

		if top, _, nested := strings.Cut(f, "/"); nested && top != "" {
			dirs[top] = true
		}

		st.FileTypes[fileType(f)]++
	}

	for d := range dirs {
		st.Directories = append(st.Directories, d)
	}
	sort.Strings(st.Directories)

	has := packagemanagers.NewPathSet(files).Has
	if pm := packagemanagers.DetectJS(has); pm != "" {
		st.PackageManager = pm
		st.InstallCommand = packagemanagers.GetJSInstallCommand(pm)
	}
	if pm := packagemanagers.DetectPython(has); pm != "" {
		st.PythonPackageManager = pm
		st.PythonInstallCommand = packagemanagers.GetPythonInstallCommand(pm)
	}

	return st
}

func fileType(p string) string {
	base := path.Base(p)
	i := strings.LastIndex(base, ".")
	if i < 0 || i == len(base)-1 {
		return noExtension
	}
	return base[i+1:]
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
