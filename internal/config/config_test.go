package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validConfig returns a configuration that passes all validation
func validConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:           8080,
			Address:        "0.0.0.0",
			MaxUploadBytes: 256 * 1024 * 1024,
		},
		Engine: EngineConfig{
			Binary:          "ffmpeg",
			ExecTimeout:     300,
			JanitorInterval: 60,
			ArtifactMaxAge:  600,
		},
		Media: MediaConfig{
			WaveformSampleRate:   8000,
			WaveformTargetLength: 200,
			ThumbnailQuality:     2,
			ThumbnailMaxProbe:    1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func TestValidConfigPasses(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config to pass validation, got: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.HTTP.Port = 0 },
			wantErr: "port must be between",
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.HTTP.Port = 70000 },
			wantErr: "port must be between",
		},
		{
			name:    "empty address",
			mutate:  func(c *Config) { c.HTTP.Address = "" },
			wantErr: "address cannot be empty",
		},
		{
			name:    "tiny upload limit",
			mutate:  func(c *Config) { c.HTTP.MaxUploadBytes = 512 },
			wantErr: "max_upload_bytes",
		},
		{
			name:    "empty engine binary",
			mutate:  func(c *Config) { c.Engine.Binary = "" },
			wantErr: "binary cannot be empty",
		},
		{
			name:    "negative exec timeout",
			mutate:  func(c *Config) { c.Engine.ExecTimeout = -1 },
			wantErr: "exec_timeout cannot be negative",
		},
		{
			name:    "zero janitor interval",
			mutate:  func(c *Config) { c.Engine.JanitorInterval = 0 },
			wantErr: "janitor_interval",
		},
		{
			name:    "zero artifact max age",
			mutate:  func(c *Config) { c.Engine.ArtifactMaxAge = 0 },
			wantErr: "artifact_max_age",
		},
		{
			name:    "sample rate too low",
			mutate:  func(c *Config) { c.Media.WaveformSampleRate = 500 },
			wantErr: "waveform_sample_rate",
		},
		{
			name:    "sample rate too high",
			mutate:  func(c *Config) { c.Media.WaveformSampleRate = 96000 },
			wantErr: "waveform_sample_rate",
		},
		{
			name:    "zero target length",
			mutate:  func(c *Config) { c.Media.WaveformTargetLength = 0 },
			wantErr: "waveform_target_length",
		},
		{
			name:    "thumbnail quality out of range",
			mutate:  func(c *Config) { c.Media.ThumbnailQuality = 32 },
			wantErr: "thumbnail_quality",
		},
		{
			name:    "negative preview width",
			mutate:  func(c *Config) { c.Media.ThumbnailPreviewWidth = -1 },
			wantErr: "thumbnail_preview_width",
		},
		{
			name:    "zero probe bound",
			mutate:  func(c *Config) { c.Media.ThumbnailMaxProbe = 0 },
			wantErr: "thumbnail_max_probe",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "level must be one of",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "format must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	content := `
http:
  port: 9090
  address: "127.0.0.1"
  max_upload_bytes: 1048576

engine:
  binary: "ffmpeg"
  exec_timeout: 120
  janitor_interval: 30
  artifact_max_age: 300

media:
  waveform_sample_rate: 8000
  waveform_target_length: 200
  thumbnail_quality: 2
  thumbnail_preview_width: 320
  thumbnail_max_probe: 500

logging:
  level: "debug"
  format: "text"
  output: "stdout"
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Engine.GetExecTimeout() != 120*time.Second {
		t.Errorf("Expected 120s exec timeout, got %v", cfg.Engine.GetExecTimeout())
	}
	if cfg.Engine.GetJanitorInterval() != 30*time.Second {
		t.Errorf("Expected 30s janitor interval, got %v", cfg.Engine.GetJanitorInterval())
	}
	if cfg.Engine.GetArtifactMaxAge() != 5*time.Minute {
		t.Errorf("Expected 5m artifact max age, got %v", cfg.Engine.GetArtifactMaxAge())
	}
	if cfg.Media.ThumbnailPreviewWidth != 320 {
		t.Errorf("Expected preview width 320, got %d", cfg.Media.ThumbnailPreviewWidth)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug level, got %s", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http: [not a mapping"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	// Parses fine but fails validation
	content := `
http:
  port: 8080
  address: "0.0.0.0"
  max_upload_bytes: 1048576

engine:
  binary: ""
  janitor_interval: 60
  artifact_max_age: 600

media:
  waveform_sample_rate: 8000
  waveform_target_length: 200
  thumbnail_quality: 2
  thumbnail_max_probe: 1000

logging:
  level: "info"
  format: "json"
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "binary cannot be empty") {
		t.Errorf("Expected engine binary error, got: %v", err)
	}
}
