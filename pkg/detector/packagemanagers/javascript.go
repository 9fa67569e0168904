package packagemanagers

// DetectJS detects the JavaScript package manager from root-level lockfiles.
// Returns "" when the repository has no package.json.
func DetectJS(has func(string) bool) string {
	if !has("package.json") {
		return ""
	}

	switch {
	case has("bun.lockb") || has("bun.lock"):
		return "bun"
	case has(".yarnrc.yml"):
		return "yarn-berry"
	case has("pnpm-lock.yaml"):
		return "pnpm"
	case has("yarn.lock"):
		return "yarn"
	case has("deno.json") || has("deno.jsonc"):
		return "deno"
	default:
		return "npm"
	}
}

// GetJSInstallCommand returns the install command for the given package manager
func GetJSInstallCommand(pm string) string {
	switch pm {
	case "bun":
		return "bun install"
	case "pnpm":
		return "pnpm install"
	case "yarn", "yarn-berry":
		return "yarn install"
	case "deno":
		return "deno install"
	default:
		return "npm install"
	}
}
