package handlers

import (
	"time"

	"media-ingest/internal/catalog"
	"media-ingest/internal/startup"
	"media-ingest/internal/transcode"
	"media-ingest/internal/upload"
)

// Handlers carries the wired dependencies for the HTTP surface. The
// catalog store is passed in explicitly; there is no process-wide
// store handle.
type Handlers struct {
	store      *catalog.Store
	dispatcher *transcode.Dispatcher
	layout     upload.Layout
	params     transcode.Params
	maxUpload  int64
	uploadDir  string
	startedAt  time.Time
}

func New(store *catalog.Store, dispatcher *transcode.Dispatcher, config *startup.Config) *Handlers {
	return &Handlers{
		store:      store,
		dispatcher: dispatcher,
		layout:     upload.Layout{BaseDir: config.UploadDir},
		params: transcode.Params{
			SegmentTime: config.HLSSegmentTime,
			ListSize:    config.HLSListSize,
			SegmentType: config.HLSSegmentType,
		},
		maxUpload: config.MaxUploadSize,
		uploadDir: config.UploadDir,
		startedAt: time.Now(),
	}
}
