package diagfmt

import (
	"path/filepath"
	"strings"

	"vela/internal/source"
)

// displayPath renders the path of f according to mode.
func displayPath(f *source.File, mode PathMode, baseDir string) string {
	if f == nil {
		return "<unknown>"
	}
	p := f.Path
	switch mode {
	case PathModeBasename:
		return filepath.Base(p)
	case PathModeAbsolute:
		if f.Flags&source.FileVirtual != 0 {
			return p
		}
		if abs, err := filepath.Abs(p); err == nil {
			return filepath.ToSlash(abs)
		}
		return p
	case PathModeRelative, PathModeAuto:
		if baseDir == "" || !filepath.IsAbs(p) {
			return p
		}
		rel, err := filepath.Rel(baseDir, p)
		if err != nil {
			return p
		}
		if mode == PathModeAuto && strings.HasPrefix(rel, "..") {
			return p
		}
		return filepath.ToSlash(rel)
	}
	return p
}
