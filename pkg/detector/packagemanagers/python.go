package packagemanagers

// pythonMarkers are the root-level files that make a repository a Python project
var pythonMarkers = []string{"requirements.txt", "pyproject.toml", "Pipfile", "setup.py", "setup.cfg"}

// DetectPython detects the Python package manager from root-level lockfiles.
// Returns "" when no Python manifest is present.
func DetectPython(has func(string) bool) string {
	isPython := false
	for _, m := range pythonMarkers {
		if has(m) {
			isPython = true
			break
		}
	}
	if !isPython {
		return ""
	}

	switch {
	case has("uv.lock"):
		return "uv"
	case has("pdm.lock"):
		return "pdm"
	case has("poetry.lock"):
		return "poetry"
	case has("Pipfile.lock") || has("Pipfile"):
		return "pipenv"
	default:
		return "pip"
	}
}

// GetPythonInstallCommand returns the install command for the given package manager
func GetPythonInstallCommand(pm string) string {
	switch pm {
	case "uv":
		return "uv sync"
	case "pdm":
		return "pdm install --prod"
	case "poetry":
		return "poetry install"
	case "pipenv":
		return "pipenv install"
	default:
		return "pip install -r requirements.txt"
	}
}
