package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streamclip/clip-media-service/internal/clip"
	"github.com/streamclip/clip-media-service/internal/config"
	"github.com/streamclip/clip-media-service/internal/engine"
	"github.com/streamclip/clip-media-service/internal/metrics"
	"github.com/streamclip/clip-media-service/internal/server"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "clip-media-service"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	// Log service startup
	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	// Log configuration summary
	logger.Info("Configuration loaded",
		slog.Int("http_port", cfg.HTTP.Port),
		slog.String("http_address", cfg.HTTP.Address),
		slog.String("engine_binary", cfg.Engine.Binary),
		slog.Int("exec_timeout", cfg.Engine.ExecTimeout),
		slog.Int("waveform_sample_rate", cfg.Media.WaveformSampleRate),
		slog.Int("waveform_target_length", cfg.Media.WaveformTargetLength),
		slog.Int("thumbnail_quality", cfg.Media.ThumbnailQuality),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Initialize the transcoding engine
	eng, err := engine.NewFFmpeg(engine.FFmpegConfig{
		Binary:      cfg.Engine.Binary,
		WorkDir:     cfg.Engine.WorkDir,
		ExecTimeout: cfg.Engine.GetExecTimeout(),
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize transcoding engine", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the clip processor with its workspace session
	processor := clip.NewProcessor(eng, logger, appMetrics, clip.Defaults{
		WaveformSampleRate:    cfg.Media.WaveformSampleRate,
		WaveformTargetLength:  cfg.Media.WaveformTargetLength,
		ThumbnailQuality:      cfg.Media.ThumbnailQuality,
		ThumbnailPreviewWidth: cfg.Media.ThumbnailPreviewWidth,
		ThumbnailMaxProbe:     cfg.Media.ThumbnailMaxProbe,
	})
	logger.Info("Clip processor initialized")

	// Start the stale-artifact janitor
	processor.Session().StartJanitor(ctx, cfg.Engine.GetJanitorInterval(), cfg.Engine.GetArtifactMaxAge())

	// Initialize and start the HTTP API server
	httpServer := server.NewHTTPServer(cfg, logger, processor, appMetrics)
	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("http_address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
	)

	// Wait for shutdown signal
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down")
	}

	logger.Info("Starting graceful shutdown...")

	// Stop HTTP server first (stop accepting new requests)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	// Stop the janitor and release the engine scratch space
	cancel()
	if err := eng.Close(); err != nil {
		logger.Error("Error closing transcoding engine", slog.String("error", err.Error()))
	}

	logger.Info("Final workspace statistics",
		slog.Int("staged_artifacts", processor.Session().StagedCount()),
	)

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo // default fallback
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Add source info for debug level
	}

	// Determine output destination
	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	// Create handler based on format
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
