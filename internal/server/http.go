package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streamclip/clip-media-service/internal/clip"
	"github.com/streamclip/clip-media-service/internal/config"
	"github.com/streamclip/clip-media-service/internal/metrics"
)

const (
	serviceName    = "clip-media-service"
	serviceVersion = "1.0.0"
)

// HTTPServer provides the HTTP API for clip processing and monitoring
type HTTPServer struct {
	server    *http.Server
	logger    *slog.Logger
	config    *config.Config
	processor *clip.Processor
	metrics   *metrics.Metrics

	startTime time.Time
}

// NewHTTPServer creates a new HTTP API server
func NewHTTPServer(cfg *config.Config, logger *slog.Logger, processor *clip.Processor, m *metrics.Metrics) *HTTPServer {
	h := &HTTPServer{
		logger:    logger,
		config:    cfg,
		processor: processor,
		metrics:   m,
		startTime: time.Now(),
	}

	r := mux.NewRouter()
	h.setupRoutes(r)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1/clips").Subrouter()
	api.HandleFunc("/trim", h.withMetrics("/api/v1/clips/trim", h.handleTrim)).Methods(http.MethodPost)
	api.HandleFunc("/concat", h.withMetrics("/api/v1/clips/concat", h.handleConcat)).Methods(http.MethodPost)
	api.HandleFunc("/gain", h.withMetrics("/api/v1/clips/gain", h.handleGain)).Methods(http.MethodPost)
	api.HandleFunc("/thumbnails", h.withMetrics("/api/v1/clips/thumbnails", h.handleThumbnails)).Methods(http.MethodPost)
	api.HandleFunc("/waveform", h.withMetrics("/api/v1/clips/waveform", h.handleWaveform)).Methods(http.MethodPost)

	r.HandleFunc("/health", h.withMetrics("/health", h.handleHealth)).Methods(http.MethodGet)
	r.HandleFunc("/config", h.withMetrics("/config", h.handleConfig)).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.withMetrics("/stats", h.handleStats)).Methods(http.MethodGet)

	// Prometheus metrics endpoint (no metrics needed for metrics endpoint)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/", h.withMetrics("/", h.handleRoot)).Methods(http.MethodGet)
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: 200}
		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		statusCode := fmt.Sprintf("%d", ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    uptime.String(),
		"service": map[string]interface{}{
			"name":    serviceName,
			"version": serviceVersion,
		},
		"components": map[string]interface{}{
			"workspace": map[string]interface{}{
				"status":           "running",
				"staged_artifacts": h.processor.Session().StagedCount(),
			},
		},
	}

	writeJSON(w, http.StatusOK, health)
}

// handleConfig implements the /config endpoint
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	// Return sanitized configuration
	sanitized := map[string]interface{}{
		"http": map[string]interface{}{
			"port":             h.config.HTTP.Port,
			"address":          h.config.HTTP.Address,
			"max_upload_bytes": h.config.HTTP.MaxUploadBytes,
		},
		"engine": map[string]interface{}{
			"binary":           h.config.Engine.Binary,
			"exec_timeout":     h.config.Engine.ExecTimeout,
			"janitor_interval": h.config.Engine.JanitorInterval,
			"artifact_max_age": h.config.Engine.ArtifactMaxAge,
		},
		"media": map[string]interface{}{
			"waveform_sample_rate":    h.config.Media.WaveformSampleRate,
			"waveform_target_length":  h.config.Media.WaveformTargetLength,
			"thumbnail_quality":       h.config.Media.ThumbnailQuality,
			"thumbnail_preview_width": h.config.Media.ThumbnailPreviewWidth,
			"thumbnail_max_probe":     h.config.Media.ThumbnailMaxProbe,
		},
		"logging": map[string]interface{}{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	writeJSON(w, http.StatusOK, sanitized)
}

// handleStats implements the /stats endpoint
func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	session := h.processor.Session()

	stats := map[string]interface{}{
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC(),
		"workspace": map[string]interface{}{
			"staged_artifacts": session.StagedCount(),
			"staged_names":     session.StagedNames(),
		},
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "Clip Media Processing Service",
		"version": serviceVersion,
		"endpoints": map[string]interface{}{
			"POST /api/v1/clips/trim":       "Trim a time range out of a clip",
			"POST /api/v1/clips/concat":     "Concatenate clips in order",
			"POST /api/v1/clips/gain":       "Adjust audio gain",
			"POST /api/v1/clips/thumbnails": "Sample thumbnail frames",
			"POST /api/v1/clips/waveform":   "Extract a waveform visualization vector",
			"GET /health":                   "Service health check",
			"GET /config":                   "Get service configuration",
			"GET /stats":                    "Get workspace statistics",
			"GET /metrics":                  "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, apiDoc)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
