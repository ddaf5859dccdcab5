package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Engine  EngineConfig  `yaml:"engine"`
	Media   MediaConfig   `yaml:"media"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig contains HTTP API server configuration
type HTTPConfig struct {
	Port           int    `yaml:"port"`
	Address        string `yaml:"address"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// EngineConfig contains transcoding engine configuration
type EngineConfig struct {
	Binary          string  `yaml:"binary"`           // transcoder binary, e.g. "ffmpeg"
	WorkDir         string  `yaml:"work_dir"`         // scratch namespace parent; "" uses the system temp dir
	ExecTimeout     int     `yaml:"exec_timeout"`     // seconds per engine invocation; 0 disables
	JanitorInterval int     `yaml:"janitor_interval"` // seconds between stale-artifact sweeps
	ArtifactMaxAge  float64 `yaml:"artifact_max_age"` // seconds before a staged artifact counts as leaked
}

// MediaConfig contains operation defaults for clip processing
type MediaConfig struct {
	WaveformSampleRate    int `yaml:"waveform_sample_rate"`    // Hz, canonical 8000
	WaveformTargetLength  int `yaml:"waveform_target_length"`  // visualization buckets, canonical 200
	ThumbnailQuality      int `yaml:"thumbnail_quality"`       // engine scale, lower = higher fidelity
	ThumbnailPreviewWidth int `yaml:"thumbnail_preview_width"` // px; 0 keeps engine-native frame size
	ThumbnailMaxProbe     int `yaml:"thumbnail_max_probe"`     // hard bound on the frame probe loop
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	if err := c.Media.Validate(); err != nil {
		return fmt.Errorf("media config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}

	if h.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if h.MaxUploadBytes < 1024 {
		return fmt.Errorf("max_upload_bytes must be at least 1024, got %d", h.MaxUploadBytes)
	}

	return nil
}

// Validate validates engine configuration
func (e *EngineConfig) Validate() error {
	if e.Binary == "" {
		return fmt.Errorf("binary cannot be empty")
	}

	if e.ExecTimeout < 0 {
		return fmt.Errorf("exec_timeout cannot be negative, got %d", e.ExecTimeout)
	}

	if e.JanitorInterval < 1 {
		return fmt.Errorf("janitor_interval must be at least 1 second, got %d", e.JanitorInterval)
	}

	if e.ArtifactMaxAge <= 0 {
		return fmt.Errorf("artifact_max_age must be positive, got %f", e.ArtifactMaxAge)
	}

	return nil
}

// Validate validates media configuration
func (m *MediaConfig) Validate() error {
	if m.WaveformSampleRate < 1000 || m.WaveformSampleRate > 48000 {
		return fmt.Errorf("waveform_sample_rate must be between 1000 and 48000 Hz, got %d", m.WaveformSampleRate)
	}

	if m.WaveformTargetLength < 1 {
		return fmt.Errorf("waveform_target_length must be at least 1, got %d", m.WaveformTargetLength)
	}

	if m.ThumbnailQuality < 1 || m.ThumbnailQuality > 31 {
		return fmt.Errorf("thumbnail_quality must be between 1 and 31, got %d", m.ThumbnailQuality)
	}

	if m.ThumbnailPreviewWidth < 0 {
		return fmt.Errorf("thumbnail_preview_width cannot be negative, got %d", m.ThumbnailPreviewWidth)
	}

	if m.ThumbnailMaxProbe < 1 {
		return fmt.Errorf("thumbnail_max_probe must be at least 1, got %d", m.ThumbnailMaxProbe)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetExecTimeout returns the engine exec timeout as a time.Duration
func (e *EngineConfig) GetExecTimeout() time.Duration {
	return time.Duration(e.ExecTimeout) * time.Second
}

// GetJanitorInterval returns the janitor sweep interval as a time.Duration
func (e *EngineConfig) GetJanitorInterval() time.Duration {
	return time.Duration(e.JanitorInterval) * time.Second
}

// GetArtifactMaxAge returns the stale artifact threshold as a time.Duration
func (e *EngineConfig) GetArtifactMaxAge() time.Duration {
	return time.Duration(e.ArtifactMaxAge * float64(time.Second))
}
