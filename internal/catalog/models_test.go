package catalog

import "testing"

func TestParseContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected ContentType
		ok       bool
	}{
		{"movies", TypeMovie, true},
		{"tv-shows", TypeSeries, true},
		{"tvshow", TypeSeries, true},
		{"movie", "", false},
		{"series", "", false},
		{"tv-show", "", false},
		{"", "", false},
		{"podcast", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseContentType(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseContentType(%q) ok = %v, expected %v", tt.input, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("ParseContentType(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
