package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"media-ingest/internal/catalog"
	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"
	"media-ingest/internal/transcode"
	"media-ingest/internal/upload"
)

// uploadValues is the structured payload carried in the "values" form
// field of an upload request.
type uploadValues struct {
	Title       string                 `json:"title"`
	ReleaseYear int                    `json:"release_year"`
	Genre       []string               `json:"genre"`
	Rating      float64                `json:"rating"`
	Description string                 `json:"description,omitempty"`
	Cast        []string               `json:"cast,omitempty"`
	ShowDetails []catalog.EpisodeEntry `json:"show_details,omitempty"`
}

// fileMetadata is the per-file metadata entry accompanying each file
// part of a series upload.
type fileMetadata struct {
	Name    string `json:"name"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
}

// multipartMemory is the in-memory threshold for multipart parsing;
// larger parts spill to temp files.
const multipartMemory = 32 << 20

// errEncodeInFlight reports a duplicate upload racing an unfinished
// encode for the same output path.
var errEncodeInFlight = errors.New("encode already in progress for this file")

// Upload handles media ingestion.
// POST /v1/api/videos/upload
//
// The request returns once every file's transcode has been launched
// (or skipped); clients poll the content's status field to learn
// completion.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeFailure(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Warn("failed to clean up multipart temp files: %v", err)
		}
	}()

	declaredType := r.FormValue("type")
	files := r.MultipartForm.File["file"]

	var firstFile *multipart.FileHeader
	if len(files) > 0 {
		firstFile = files[0]
	}

	// Validation happens before any filesystem side effect; a rejected
	// upload leaves no directory behind.
	contentType, verr := upload.Validate(firstFile, declaredType, h.maxUpload)
	if verr != nil {
		metrics.UploadValidationFailures.WithLabelValues(verr.Reason).Inc()
		metrics.UploadsTotal.WithLabelValues("unknown", "rejected").Inc()
		writeFailure(w, verr.Message, http.StatusBadRequest)
		return
	}

	var values uploadValues
	if raw := r.FormValue("values"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			metrics.UploadsTotal.WithLabelValues(string(contentType), "rejected").Inc()
			writeFailure(w, "Invalid values payload", http.StatusBadRequest)
			return
		}
	}

	// The uuid is assigned exactly once, at first validation success,
	// and never changes afterwards.
	contentUUID := uuid.NewString()

	content := &catalog.Content{
		UUID:        contentUUID,
		Title:       values.Title,
		Type:        contentType,
		ReleaseYear: values.ReleaseYear,
		Genre:       values.Genre,
		Rating:      values.Rating,
		Description: values.Description,
		Cast:        values.Cast,
		Status:      catalog.StatusInProgress,
	}

	var err error
	switch contentType {
	case catalog.TypeMovie:
		err = h.uploadMovie(r, firstFile, content)
	case catalog.TypeSeries:
		err = h.uploadSeries(r, files, declaredType, &values, content)
	}

	if err != nil {
		if verr, ok := err.(*upload.ValidationError); ok {
			metrics.UploadValidationFailures.WithLabelValues(verr.Reason).Inc()
			metrics.UploadsTotal.WithLabelValues(string(contentType), "rejected").Inc()
			writeFailure(w, verr.Message, http.StatusBadRequest)
			return
		}
		if errors.Is(err, errEncodeInFlight) {
			metrics.UploadsTotal.WithLabelValues(string(contentType), "rejected").Inc()
			writeFailure(w, "An upload for this file is already being processed", http.StatusConflict)
			return
		}
		metrics.UploadsTotal.WithLabelValues(string(contentType), "failed").Inc()
		logging.Error("Upload failed for %s: %v", contentUUID, err)
		writeFailure(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Exactly one catalog insert per upload request. Workers racing
	// this insert only log a warning when the document is not there
	// yet; a stalled in_progress status is the observable result.
	if _, err := h.store.Insert(r.Context(), content); err != nil {
		metrics.UploadsTotal.WithLabelValues(string(contentType), "failed").Inc()
		logging.Error("Failed to persist content %s: %v", contentUUID, err)
		writeFailure(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	metrics.UploadsTotal.WithLabelValues(string(contentType), "success").Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{
		"status": "success",
		"id":     contentUUID,
	})
}

// uploadMovie dispatches the single file of a movie upload. The file's
// own sanitized stem doubles as the content directory name.
func (h *Handlers) uploadMovie(r *http.Request, fh *multipart.FileHeader, content *catalog.Content) error {
	safeName := upload.SanitizeName(fh.Filename)
	stem := upload.Stem(safeName)

	dir := h.layout.MovieDir(stem)
	if err := h.layout.Ensure(dir); err != nil {
		return err
	}

	result, err := h.dispatchFile(r, fh, content.UUID, dir, safeName, stem)
	if err != nil {
		return err
	}
	if result.Outcome == transcode.OutcomeFailed {
		return fmt.Errorf("dispatch failed: %s", result.Reason)
	}
	if result.Outcome == transcode.OutcomeInFlight {
		// Another request is still encoding this exact artifact; its
		// document tracks the outcome. A second row would claim a path
		// that may never materialize.
		return errEncodeInFlight
	}

	content.FilePath = result.OutputPath
	content.DurationSeconds = result.Duration
	if result.Outcome == transcode.OutcomeSkipped {
		// The artifact already exists; no worker will ever advance this
		// document, so it is ready from the start.
		content.Status = catalog.StatusReady
	}
	return nil
}

// uploadSeries dispatches every file of a series upload and folds the
// per-file episode metadata into season groupings. Episodes whose
// dispatch failed are omitted from the persisted document.
func (h *Handlers) uploadSeries(r *http.Request, files []*multipart.FileHeader, declaredType string, values *uploadValues, content *catalog.Content) error {
	metadataList := r.MultipartForm.Value["metadata"]
	if len(metadataList) != len(files) {
		return &upload.ValidationError{
			Reason:  upload.ReasonBadMetadata,
			Message: "Each file requires a metadata entry",
		}
	}

	grouped := catalog.GroupEpisodes(values.ShowDetails)

	anyStarted := false
	anyInFlight := false
	for i, fh := range files {
		if _, verr := upload.Validate(fh, declaredType, h.maxUpload); verr != nil {
			return verr
		}

		var meta fileMetadata
		if err := json.Unmarshal([]byte(metadataList[i]), &meta); err != nil {
			return &upload.ValidationError{
				Reason:  upload.ReasonBadMetadata,
				Message: fmt.Sprintf("Invalid metadata entry for file %q", fh.Filename),
			}
		}

		dir := h.layout.SeriesEpisodeDir(meta.Name, meta.Season, meta.Episode)
		if err := h.layout.Ensure(dir); err != nil {
			return err
		}

		safeName := upload.SanitizeName(fh.Filename)
		stem := upload.Stem(safeName)

		result, err := h.dispatchFile(r, fh, content.UUID, dir, safeName, stem)
		if err != nil {
			return err
		}
		if result.Outcome == transcode.OutcomeFailed {
			// The episode is dropped from the document rather than
			// persisted with empty fields.
			logging.Error("Dispatch failed for S%02dE%02d of %s: %s", meta.Season, meta.Episode, content.UUID, result.Reason)
			continue
		}
		if result.Outcome == transcode.OutcomeInFlight {
			// A sibling upload is still encoding this episode; omit it
			// here rather than record a path that may never materialize.
			logging.Warn("Encode already in flight for S%02dE%02d of %s, episode omitted", meta.Season, meta.Episode, content.UUID)
			anyInFlight = true
			continue
		}
		if result.Outcome == transcode.OutcomeStarted {
			anyStarted = true
		}

		if !catalog.AttachArtifact(grouped, meta.Season, meta.Episode, result.OutputPath, result.Duration) {
			logging.Warn("No show_details entry for S%02dE%02d of %s", meta.Season, meta.Episode, content.UUID)
		}
	}

	seasons, err := foldSeasons(grouped, false)
	if err != nil {
		return err
	}
	content.Seasons = seasons

	if !anyStarted {
		if len(seasons) == 0 && anyInFlight {
			// Nothing landed in the document and every file is still
			// being encoded by an earlier submission.
			return errEncodeInFlight
		}
		// Every remaining file was a duplicate of an existing artifact;
		// there is no pending encode to wait for.
		content.Status = catalog.StatusReady
	}
	return nil
}

// foldSeasons turns grouped episodes into an ordered season list. When
// includeAll is false, episodes without a playable artifact are left
// out (and empty seasons with them).
func foldSeasons(grouped map[int][]catalog.Episode, includeAll bool) ([]catalog.Season, error) {
	seasonNumbers := make([]int, 0, len(grouped))
	for season := range grouped {
		seasonNumbers = append(seasonNumbers, season)
	}
	sort.Ints(seasonNumbers)

	var seasons []catalog.Season
	for _, season := range seasonNumbers {
		episodes := grouped[season]
		if !includeAll {
			episodes = catalog.ReadyEpisodes(episodes)
		}
		if len(episodes) == 0 {
			continue
		}
		var err error
		seasons, err = catalog.AppendSeason(seasons, catalog.Season{
			SeasonNumber: season,
			Episodes:     episodes,
		})
		if err != nil {
			return nil, err
		}
	}
	return seasons, nil
}

// dispatchFile streams one file part into the dispatcher.
func (h *Handlers) dispatchFile(r *http.Request, fh *multipart.FileHeader, contentUUID, dir, safeName, stem string) (transcode.Result, error) {
	src, err := fh.Open()
	if err != nil {
		return transcode.Result{}, fmt.Errorf("failed to open file part: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logging.Warn("failed to close file part %s: %v", fh.Filename, err)
		}
	}()

	sourcePath := filepath.Join(dir, safeName)
	outputPath := filepath.Join(dir, stem+".m3u8")

	return h.dispatcher.Dispatch(r.Context(), contentUUID, src, sourcePath, outputPath, h.params), nil
}
