// Package config loads project-level tool configuration from an optional
// .roam.kdl file (spec supplement, mirroring the teacher's
// internal/config/kdl_config.go .lci.kdl handling) plus the two
// spec-mandated JSON override tables under .roam/ (spec §6).
package config

// Config is the resolved project configuration: KDL-sourced settings with
// built-in defaults filled in for anything the file omits or that is
// missing entirely.
type Config struct {
	Root string

	Workers        int
	Include        []string
	Exclude        []string
	WatchDebounceMs int
	FollowSymlinks bool
}

// Default returns the built-in configuration used when no .roam.kdl file
// is present; LoadKDL also starts from it before applying .roam.kdl.
func Default(root string) *Config {
	return &Config{
		Root:            root,
		Workers:         4,
		Include:         nil, // nil means "everything", filtered only by Exclude
		Exclude:         defaultExclusions(),
		WatchDebounceMs: 300,
		FollowSymlinks:  false,
	}
}

func defaultExclusions() []string {
	return []string{
		"**/.git/**", "**/node_modules/**", "**/vendor/**", "**/dist/**",
		"**/build/**", "**/.venv/**", "**/__pycache__/**", "**/target/**",
		"**/*.min.js",
	}
}
