package main

import "runtime/debug"

var version = getVersion()

// getVersion prefers the module version of a tagged install, then the VCS
// revision of a local build.
func getVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	revision := settings["vcs.revision"]
	if revision == "" {
		return "dev"
	}
	revision = revision[:min(len(revision), 7)]
	if settings["vcs.modified"] == "true" {
		revision += "-dirty"
	}
	return revision
}
