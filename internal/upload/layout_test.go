package upload

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMovieDir(t *testing.T) {
	t.Parallel()

	l := Layout{BaseDir: "/videos"}

	tests := []struct {
		name     string
		stem     string
		expected string
	}{
		{
			name:     "Simple stem",
			stem:     "Demo",
			expected: filepath.Join("/videos", "movie", "Demo"),
		},
		{
			name:     "Case is preserved",
			stem:     "The Matrix",
			expected: filepath.Join("/videos", "movie", "The_Matrix"),
		},
		{
			name:     "Traversal components stripped",
			stem:     "../../etc/passwd",
			expected: filepath.Join("/videos", "movie", "passwd"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.MovieDir(tt.stem)
			if got != tt.expected {
				t.Errorf("MovieDir(%q) = %q, expected %q", tt.stem, got, tt.expected)
			}
		})
	}
}

func TestSeriesEpisodeDir(t *testing.T) {
	t.Parallel()

	l := Layout{BaseDir: "/videos"}

	tests := []struct {
		name     string
		show     string
		season   int
		episode  int
		expected string
	}{
		{
			name:     "Single-digit season and episode are zero-padded",
			show:     "Show",
			season:   1,
			episode:  2,
			expected: filepath.Join("/videos", "series", "Show", "S01", "E02"),
		},
		{
			name:     "Double digits pass through",
			show:     "Show",
			season:   12,
			episode:  34,
			expected: filepath.Join("/videos", "series", "Show", "S12", "E34"),
		},
		{
			name:     "Show name is sanitized",
			show:     "Breaking Bad",
			season:   5,
			episode:  14,
			expected: filepath.Join("/videos", "series", "Breaking_Bad", "S05", "E14"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.SeriesEpisodeDir(tt.show, tt.season, tt.episode)
			if got != tt.expected {
				t.Errorf("SeriesEpisodeDir(%q, %d, %d) = %q, expected %q",
					tt.show, tt.season, tt.episode, got, tt.expected)
			}
		})
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	t.Parallel()

	l := Layout{BaseDir: t.TempDir()}
	dir := l.MovieDir("Demo")

	if err := l.Ensure(dir); err != nil {
		t.Fatalf("Ensure() first call failed: %v", err)
	}
	if err := l.Ensure(dir); err != nil {
		t.Fatalf("Ensure() second call failed: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat(%q) failed: %v", dir, err)
	}
	if !info.IsDir() {
		t.Errorf("%q exists but is not a directory", dir)
	}
}

func TestStem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		expected string
	}{
		{"demo.mp4", "demo"},
		{"demo.tar.mp4", "demo.tar"},
		{"noext", "noext"},
		{"dir/nested.mkv", "nested"},
	}

	for _, tt := range tests {
		if got := Stem(tt.filename); got != tt.expected {
			t.Errorf("Stem(%q) = %q, expected %q", tt.filename, got, tt.expected)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain name unchanged", "Demo", "Demo"},
		{"Spaces become underscores", "My Great Movie", "My_Great_Movie"},
		{"Whitespace runs collapse", "a  \t b", "a_b"},
		{"Unix path components dropped", "../../etc/passwd", "passwd"},
		{"Windows path components dropped", `C:\Users\evil.mp4`, "evil.mp4"},
		{"Special characters dropped", "movie!@#$%.mp4", "movie.mp4"},
		{"Leading dots trimmed", "..hidden", "hidden"},
		{"Trailing underscore trimmed", "name_", "name"},
		{"Unicode dropped", "日本語", "_"},
		{"Empty input", "", "_"},
		{"Only unsafe characters", "!!!", "_"},
		{"Case preserved", "CamelCase.MP4", "CamelCase.MP4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeName(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeName(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
