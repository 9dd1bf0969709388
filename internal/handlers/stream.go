package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
)

// streamContentTypes maps the HLS artifact extensions the stdlib mime
// table gets wrong (or misses) to their proper media types.
var streamContentTypes = map[string]string{
	".m3u8": "application/x-mpegURL",
	".ts":   "video/mp2t",
	".m4s":  "video/iso.segment",
}

// Stream serves transcode artifacts (playlists, segments, thumbnails)
// from the upload root. Range requests are handled by http.ServeFile,
// which players rely on for seeking.
// GET /v1/api/videos/stream/{path:.*}
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	rel := mux.Vars(r)["path"]

	// Resolve against the upload root and refuse anything that escapes
	// it. The mux pattern passes the raw remainder through, so ".."
	// components arrive here intact.
	full := filepath.Join(h.uploadDir, filepath.FromSlash(rel))
	base, err := filepath.Abs(h.uploadDir)
	if err != nil {
		writeFailure(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	abs, err := filepath.Abs(full)
	if err != nil || (abs != base && !strings.HasPrefix(abs, base+string(filepath.Separator))) {
		writeFailure(w, "Invalid path", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		writeFailure(w, "File not found", http.StatusNotFound)
		return
	}

	if ctype, ok := streamContentTypes[strings.ToLower(filepath.Ext(abs))]; ok {
		w.Header().Set("Content-Type", ctype)
	}

	http.ServeFile(w, r, abs)
}
