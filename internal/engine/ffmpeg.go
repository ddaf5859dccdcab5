package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// FFmpegConfig contains configuration for the ffmpeg-backed engine.
type FFmpegConfig struct {
	Binary      string        // ffmpeg binary, e.g. "ffmpeg"
	WorkDir     string        // parent directory for the scratch namespace; "" means os.TempDir()
	ExecTimeout time.Duration // per-invocation timeout; 0 disables
}

// FFmpeg executes commands by shelling out to ffmpeg with the virtual
// namespace mapped onto a private scratch directory. File names resolve
// relative to that directory, so staged names never touch the rest of the
// host filesystem.
type FFmpeg struct {
	config FFmpegConfig
	root   string
	logger *slog.Logger
}

// NewFFmpeg creates the scratch directory and returns the engine.
func NewFFmpeg(cfg FFmpegConfig, logger *slog.Logger) (*FFmpeg, error) {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}

	root, err := os.MkdirTemp(cfg.WorkDir, "clip-engine-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create engine scratch directory: %w", err)
	}

	logger.Info("FFmpeg engine initialized",
		slog.String("binary", cfg.Binary),
		slog.String("scratch_dir", root),
	)

	return &FFmpeg{
		config: cfg,
		root:   root,
		logger: logger,
	}, nil
}

// WriteFile stages a file in the scratch directory.
func (f *FFmpeg) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(f.root, name), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Exec runs one ffmpeg invocation inside the scratch directory.
func (f *FFmpeg) Exec(ctx context.Context, args []string) error {
	if f.config.ExecTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.ExecTimeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, f.config.Binary, args...)
	cmd.Dir = f.root

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg aborted: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(stderr.Bytes()))
	}

	f.logger.Debug("Engine command completed",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("args", len(args)),
	)
	return nil
}

// ReadFile reads a file back from the scratch directory.
func (f *FFmpeg) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(f.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// RemoveFile deletes a file from the scratch directory.
func (f *FFmpeg) RemoveFile(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(f.root, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// Close removes the scratch directory and everything staged in it.
func (f *FFmpeg) Close() error {
	return os.RemoveAll(f.root)
}

// lastLine extracts the final non-empty stderr line, which is where ffmpeg
// reports the actual failure reason.
func lastLine(out []byte) string {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.TrimSpace(lines[len(lines)-1]))
}
