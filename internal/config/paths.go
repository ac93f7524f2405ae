package config

import (
	"os"
	"path/filepath"
	"strings"
)

// xdgPath returns $env/kb/name, falling back to ~/fallback/kb/name
func xdgPath(getenv func(string) string, env, fallback, name string) string {
	dir := getenv(env)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, fallback)
	}
	return filepath.Join(dir, "kb", name)
}

// expandPath expands a leading ~ and environment variables
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, expanded[1:])
	}
	return expanded
}
