package diagfmt

import "path/filepath"

// FormatPath renders path according to mode. baseDir anchors relative paths;
// an empty baseDir means the working directory.
func FormatPath(path string, mode PathMode, baseDir string) string {
	if path == "" {
		return "<template>"
	}
	switch mode {
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case PathModeRelative:
		if rel, ok := relative(path, baseDir); ok {
			return rel
		}
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if rel, ok := relative(abs, baseDir); ok && len(rel) < len(abs) {
		return rel
	}
	return abs
}

func relative(path, baseDir string) (string, bool) {
	if baseDir == "" {
		wd, err := filepath.Abs(".")
		if err != nil {
			return "", false
		}
		baseDir = wd
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(baseDir, abs)
	if err != nil {
		return "", false
	}
	return rel, true
}
