package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"media-ingest/internal/catalog"
	"media-ingest/internal/logging"
)

const defaultPerPage = 20

// ListAll returns every catalog entry, newest first.
// GET /v1/api/videos
func (h *Handlers) ListAll(w http.ResponseWriter, r *http.Request) {
	contents, err := h.store.List(r.Context())
	if err != nil {
		logging.Error("Failed to list contents: %v", err)
		writeFailure(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, contents)
}

// Create registers a catalog entry directly, without any file upload.
// Entries created this way are ready immediately since there is no
// transcode to wait for.
// POST /v1/api/videos
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var values uploadValues
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeFailure(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if values.Title == "" {
		writeFailure(w, "Title is required", http.StatusBadRequest)
		return
	}

	contentType := catalog.TypeMovie
	if len(values.ShowDetails) > 0 {
		contentType = catalog.TypeSeries
	}

	content := &catalog.Content{
		UUID:        uuid.NewString(),
		Title:       values.Title,
		Type:        contentType,
		ReleaseYear: values.ReleaseYear,
		Genre:       values.Genre,
		Rating:      values.Rating,
		Description: values.Description,
		Cast:        values.Cast,
		Status:      catalog.StatusReady,
	}

	if contentType == catalog.TypeSeries {
		grouped := catalog.GroupEpisodes(values.ShowDetails)
		seasons, err := foldSeasons(grouped, true)
		if err != nil {
			writeFailure(w, err.Error(), http.StatusBadRequest)
			return
		}
		content.Seasons = seasons
	}

	if _, err := h.store.Insert(r.Context(), content); err != nil {
		logging.Error("Failed to persist content %s: %v", content.UUID, err)
		writeFailure(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{
		"status": "success",
		"id":     content.UUID,
	})
}

// ListByType returns one page of catalog entries of the requested type.
// GET /v1/api/videos/{vtype}/list?page=N&per_page=M
func (h *Handlers) ListByType(w http.ResponseWriter, r *http.Request) {
	vtype := mux.Vars(r)["vtype"]

	contentType, ok := catalog.ParseContentType(vtype)
	if !ok {
		writeFailure(w, "Invalid video type: "+vtype, http.StatusBadRequest)
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", defaultPerPage)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = defaultPerPage
	}

	contents, err := h.store.ListByType(r.Context(), contentType, page, perPage)
	if err != nil {
		logging.Error("Failed to list %s contents: %v", contentType, err)
		writeFailure(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	total, err := h.store.CountByType(r.Context(), contentType)
	if err != nil {
		logging.Error("Failed to count %s contents: %v", contentType, err)
		writeFailure(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	totalPages := (total + perPage - 1) / perPage

	writeJSON(w, map[string]any{
		"status": "success",
		"data":   contents,
		"pagination": map[string]int{
			"page":        page,
			"per_page":    perPage,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

// Details returns the full catalog document for one uuid.
// GET /v1/api/videos/{id}/details
func (h *Handlers) Details(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	content, err := h.store.FindByUUID(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeFailure(w, "Video not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("Failed to fetch content %s: %v", id, err)
		writeFailure(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, content)
}

// SeasonEpisodes returns the flattened per-episode rows for one season
// of a series. 404 covers both an unknown uuid and a season with no
// episodes.
// GET /v1/api/videos/{id}/season/{number}
func (h *Handlers) SeasonEpisodes(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	season, err := strconv.Atoi(vars["number"])
	if err != nil {
		writeFailure(w, "Invalid season number", http.StatusBadRequest)
		return
	}

	rows, err := h.store.SeasonEpisodes(r.Context(), id, season)
	if errors.Is(err, catalog.ErrNotFound) {
		writeFailure(w, "Video not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("Failed to fetch season %d of %s: %v", season, id, err)
		writeFailure(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(rows) == 0 {
		writeFailure(w, "Season not found", http.StatusNotFound)
		return
	}

	writeJSON(w, rows)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
