package upload

import (
	"mime/multipart"
	"testing"

	"media-ingest/internal/catalog"
)

func header(filename string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: filename, Size: size}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		file         *multipart.FileHeader
		declaredType string
		maxSize      int64
		wantType     catalog.ContentType
		wantReason   string
	}{
		{
			name:         "Valid movie upload",
			file:         header("demo.mp4", 1024),
			declaredType: "movies",
			wantType:     catalog.TypeMovie,
		},
		{
			name:         "Valid series upload",
			file:         header("episode.mkv", 1024),
			declaredType: "tv-shows",
			wantType:     catalog.TypeSeries,
		},
		{
			name:         "Legacy tvshow type string",
			file:         header("episode.webm", 1024),
			declaredType: "tvshow",
			wantType:     catalog.TypeSeries,
		},
		{
			name:         "Missing file part",
			file:         nil,
			declaredType: "movies",
			wantReason:   ReasonMissingFile,
		},
		{
			name:       "Missing type field",
			file:       header("demo.mp4", 1024),
			wantReason: ReasonMissingType,
		},
		{
			name:         "Empty filename",
			file:         header("", 1024),
			declaredType: "movies",
			wantReason:   ReasonEmptyFilename,
		},
		{
			name:         "Disallowed extension",
			file:         header("notes.txt", 1024),
			declaredType: "movies",
			wantReason:   ReasonExtension,
		},
		{
			name:         "Extension check is case-insensitive",
			file:         header("DEMO.MP4", 1024),
			declaredType: "movies",
			wantType:     catalog.TypeMovie,
		},
		{
			name:         "File too large",
			file:         header("demo.mp4", 2048),
			declaredType: "movies",
			maxSize:      1024,
			wantReason:   ReasonSize,
		},
		{
			name:         "File exactly at the ceiling",
			file:         header("demo.mp4", 1024),
			declaredType: "movies",
			maxSize:      1024,
			wantType:     catalog.TypeMovie,
		},
		{
			name:         "Unknown type string",
			file:         header("demo.mp4", 1024),
			declaredType: "podcast",
			wantReason:   ReasonUnknownType,
		},
		{
			name:         "Singular movie is rejected",
			file:         header("demo.mp4", 1024),
			declaredType: "movie",
			wantReason:   ReasonUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotErr := Validate(tt.file, tt.declaredType, tt.maxSize)

			if tt.wantReason != "" {
				if gotErr == nil {
					t.Fatalf("Validate() error = nil, expected reason %q", tt.wantReason)
				}
				if gotErr.Reason != tt.wantReason {
					t.Errorf("Validate() reason = %q, expected %q", gotErr.Reason, tt.wantReason)
				}
				return
			}

			if gotErr != nil {
				t.Fatalf("Validate() unexpected error: %v", gotErr)
			}
			if gotType != tt.wantType {
				t.Errorf("Validate() type = %q, expected %q", gotType, tt.wantType)
			}
		})
	}
}

func TestValidateCheckOrder(t *testing.T) {
	t.Parallel()

	// A request that fails several checks at once must report the first
	// one: the missing file part, not the missing type.
	_, err := Validate(nil, "", 0)
	if err == nil {
		t.Fatal("Validate() error = nil, expected missing file error")
	}
	if err.Reason != ReasonMissingFile {
		t.Errorf("Validate() reason = %q, expected %q", err.Reason, ReasonMissingFile)
	}

	// Bad extension beats oversize.
	_, err = Validate(header("notes.txt", 2048), "movies", 1024)
	if err == nil {
		t.Fatal("Validate() error = nil, expected extension error")
	}
	if err.Reason != ReasonExtension {
		t.Errorf("Validate() reason = %q, expected %q", err.Reason, ReasonExtension)
	}
}

func TestValidateDefaultMaxSize(t *testing.T) {
	t.Parallel()

	// maxSize <= 0 falls back to the 2 GiB default.
	if _, err := Validate(header("demo.mp4", DefaultMaxFileSize), "movies", 0); err != nil {
		t.Errorf("Validate() unexpected error at default ceiling: %v", err)
	}
	if _, err := Validate(header("demo.mp4", DefaultMaxFileSize+1), "movies", 0); err == nil {
		t.Error("Validate() error = nil, expected size error above default ceiling")
	}
}
