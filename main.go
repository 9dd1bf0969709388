package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-ingest/internal/catalog"
	"media-ingest/internal/handlers"
	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"
	"media-ingest/internal/middleware"
	"media-ingest/internal/probe"
	"media-ingest/internal/startup"
	"media-ingest/internal/thumbnail"
	"media-ingest/internal/transcode"
	"media-ingest/internal/workers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	// Initialize catalog store
	dbStart := time.Now()
	store, err := catalog.NewStore(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize catalog store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn("Failed to close catalog store: %v", err)
		}
	}()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Refresh database connection gauges periodically
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		for range ticker.C {
			store.UpdateMetrics()
		}
	}()

	// Initialize transcode pool and dispatcher
	workerCount := workers.ForCPU(8)
	startup.LogTranscoderInit(workerCount)
	pool := transcode.NewPool(
		transcode.FFmpegEncoder{},
		store,
		config.QuarantineDir,
		workerCount,
		config.TranscodeQueueSize,
	)
	dispatcher := transcode.NewDispatcher(pool, thumbnail.NewExtractor(), probe.NewFFprobe())

	// Initialize handlers
	h := handlers.New(store, dispatcher, config)

	// Setup router
	router := setupRouter(h)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply metrics middleware
	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics on a separate listener so scrape traffic stays off the
	// application port.
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, pool)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")

	// Video API routes
	api := r.PathPrefix("/v1/api/videos").Subrouter()
	api.HandleFunc("", h.ListAll).Methods("GET")
	api.HandleFunc("", h.Create).Methods("POST")
	api.HandleFunc("/upload", h.Upload).Methods("POST")
	api.HandleFunc("/stream/{path:.*}", h.Stream).Methods("GET")
	api.HandleFunc("/{vtype}/list", h.ListByType).Methods("GET")
	api.HandleFunc("/{id}/details", h.Details).Methods("GET")
	api.HandleFunc("/{id}/season/{number}", h.SeasonEpisodes).Methods("GET")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, pool *transcode.Pool) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Draining transcode queue")
	pool.Close()
	startup.LogShutdownStepComplete("Transcode workers stopped")

	startup.LogShutdownComplete()
}
