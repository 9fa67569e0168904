package analyzer

import (
	"fmt"
	"io/fs"

	"stackscan/pkg/manifest"
	"stackscan/pkg/util"
)

// AnalyzeFS runs the same pipeline as Analyze over a local filesystem.
// name is reported as the repository name.
func (s *Service) AnalyzeFS(fsys fs.FS, name string) (*Report, error) {
	reader := NewFSReader(fsys)

	files, err := reader.ScanTree()
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", name, err)
	}

	var m manifests
	if reader.Has(manifest.PackageJSONFile) {
		pkg, err := manifest.ParsePackageJSON(reader.Read(manifest.PackageJSONFile))
		if err != nil {
			util.Warning("ignoring package.json in %s: %v", name, err)
		} else {
			m.packageJSON = pkg
		}
	}
	if reader.Has(manifest.RequirementsFile) {
		m.requirements = manifest.SplitRequirements(string(reader.Read(manifest.RequirementsFile)))
	}
	if reader.Has(manifest.SetupCfgFile) {
		names, err := manifest.ParseSetupCfg(reader.Read(manifest.SetupCfgFile))
		if err != nil {
			util.Warning("ignoring setup.cfg in %s: %v", name, err)
		} else {
			m.setupCfg = names
		}
	}

	report := s.buildReport(files, m)
	report.Repository = RepositoryInfo{
		Repo:       name,
		TotalFiles: len(files),
	}
	return report, nil
}
