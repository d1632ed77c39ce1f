package scanner

import (
	"path/filepath"
	"strings"
)

// Exclusions matches a fixed set of files by absolute path, together with
// the temporary siblings written while replacing one of them atomically
// (".<name>.<random>.tmp" in the same directory).
type Exclusions struct {
	paths map[string]bool
}

// NewExclusions builds an Exclusions from file paths, relative paths being
// resolved against the working directory.
func NewExclusions(paths ...string) Exclusions {
	e := Exclusions{paths: make(map[string]bool, len(paths))}
	for _, p := range paths {
		e.paths[absPath(p)] = true
	}
	return e
}

// Matches reports whether path is one of the excluded files or a
// temporary file standing in for one.
func (e Exclusions) Matches(path string) bool {
	if len(e.paths) == 0 {
		return false
	}
	abs := absPath(path)
	if e.paths[abs] {
		return true
	}

	base := filepath.Base(abs)
	if !strings.HasPrefix(base, ".") || !strings.HasSuffix(base, ".tmp") {
		return false
	}
	inner := strings.TrimSuffix(base[1:], ".tmp")
	i := strings.LastIndex(inner, ".")
	if i <= 0 {
		return false
	}
	return e.paths[filepath.Join(filepath.Dir(abs), inner[:i])]
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
