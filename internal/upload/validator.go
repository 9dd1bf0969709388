package upload

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"media-ingest/internal/catalog"
)

// DefaultMaxFileSize is the upload size ceiling when none is configured (2 GiB).
const DefaultMaxFileSize = 2 << 30

// AllowedExtensions is the container allow-list for uploaded media.
var AllowedExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".flv":  true,
	".mkv":  true,
	".mov":  true,
	".wmv":  true,
	".webm": true,
}

// Validation failure reasons, used as metric labels and surfaced in
// error messages.
const (
	ReasonMissingFile   = "missing_file"
	ReasonMissingType   = "missing_type"
	ReasonEmptyFilename = "empty_filename"
	ReasonExtension     = "extension"
	ReasonSize          = "size"
	ReasonUnknownType   = "unknown_type"
	ReasonBadMetadata   = "bad_metadata"
)

// ValidationError describes a rejected upload. It is always surfaced to
// the caller as a 400 and never retried.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks an uploaded file part and its declared content type,
// in order: file part present, type field present, filename non-empty,
// extension allow-listed, size within ceiling, type string known.
// On success it returns the normalized content type. Validate has no
// side effects; nothing is written to disk on failure.
func Validate(file *multipart.FileHeader, declaredType string, maxSize int64) (catalog.ContentType, *ValidationError) {
	if file == nil {
		return "", &ValidationError{ReasonMissingFile, "No file part in the request"}
	}
	if declaredType == "" {
		return "", &ValidationError{ReasonMissingType, "Type parameter is required"}
	}
	if file.Filename == "" {
		return "", &ValidationError{ReasonEmptyFilename, "No selected file"}
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !AllowedExtensions[ext] {
		return "", &ValidationError{ReasonExtension, "File type not allowed"}
	}

	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if file.Size > maxSize {
		return "", &ValidationError{ReasonSize, "File size exceeds maximum allowed"}
	}

	ctype, ok := catalog.ParseContentType(strings.ToLower(declaredType))
	if !ok {
		return "", &ValidationError{ReasonUnknownType, fmt.Sprintf("Invalid video type: %q", declaredType)}
	}

	return ctype, nil
}
