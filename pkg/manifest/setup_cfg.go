package manifest

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// SetupCfgFile is the declarative setuptools configuration file
const SetupCfgFile = "setup.cfg"

// ParseSetupCfg returns the install_requires entries from the [options] section
func ParseSetupCfg(data []byte) ([]string, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		IgnoreInlineComment:        true,
		Insensitive:                false,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse setup.cfg: %w", err)
	}

	section, err := cfg.GetSection("options")
	if err != nil {
		return nil, nil
	}
	if !section.HasKey("install_requires") {
		return nil, nil
	}

	raw := section.Key("install_requires").String()
	var names []string
	for _, line := range SplitRequirements(raw) {
		if name := RequirementName(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
