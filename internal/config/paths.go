package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandPath expands $VAR references and a leading ~ in p.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if expanded != "~" && !strings.HasPrefix(expanded, "~/") &&
		!(runtime.GOOS == "windows" && strings.HasPrefix(expanded, `~\`)) {
		return expanded
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	if expanded == "~" {
		return home
	}
	return filepath.Join(home, expanded[2:])
}

// ResolvePath expands $VAR and ~ in p and anchors it at root when relative.
func ResolvePath(root, p string) string {
	if p == "" {
		return p
	}
	p = expandPath(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return p
}
