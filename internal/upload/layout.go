package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout derives deterministic storage directories under a base upload
// root. Directory creation is idempotent; any filesystem failure is
// fatal to the surrounding upload request.
type Layout struct {
	BaseDir string
}

// MovieDir returns the content directory for a movie: the sanitized
// filename stem doubles as the directory name.
//
//	<base>/movie/<stem>
func (l Layout) MovieDir(filenameStem string) string {
	return filepath.Join(l.BaseDir, "movie", SanitizeName(filenameStem))
}

// SeriesEpisodeDir returns the episode directory for a series upload.
// The filename is not part of the path; one episode directory holds the
// segments of one episode by convention.
//
//	<base>/series/<show>/S<nn>/E<nn>
func (l Layout) SeriesEpisodeDir(showName string, season, episode int) string {
	return filepath.Join(
		l.BaseDir,
		"series",
		SanitizeName(showName),
		fmt.Sprintf("S%02d", season),
		fmt.Sprintf("E%02d", episode),
	)
}

// Ensure creates dir (and parents) if needed. Creating an existing
// directory is not an error.
func (l Layout) Ensure(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return nil
}

// Stem returns the filename without its extension.
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SanitizeName strips characters unsafe for filesystem paths from a
// user-supplied name. Path separators and parent references are
// removed, whitespace runs collapse to single underscores, and only
// ASCII letters, digits, dot, dash, and underscore survive. Case is
// preserved. Returns "_" if nothing survives, so callers never receive
// an empty path segment.
func SanitizeName(name string) string {
	// Drop any directory components smuggled into the name.
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}

	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case r == ' ' || r == '\t' || r == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			// Everything else is dropped.
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "_"
	}
	return out
}
