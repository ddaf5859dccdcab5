package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/streamclip/clip-media-service/internal/engine"
)

var (
	// ErrStagingFailed indicates the engine rejected a write into its
	// namespace.
	ErrStagingFailed = errors.New("staging failed")

	// ErrArtifactMissing indicates a collect or release referenced a name
	// that was never staged or has already been removed. During thumbnail
	// probing this is the expected termination signal, not a failure.
	ErrArtifactMissing = errors.New("artifact missing")
)

// Session is a long-lived handle to one engine's namespace. It is created
// once per engine instance and reused across operations. Staged names carry
// a random session suffix plus a monotonic counter, so two operations can
// never collide even when they start within the same millisecond.
type Session struct {
	engine  engine.Engine
	logger  *slog.Logger
	id      string
	counter atomic.Uint64

	mu     sync.Mutex
	staged map[string]time.Time
}

// NewSession creates a session bound to the given engine.
func NewSession(eng engine.Engine, logger *slog.Logger) *Session {
	return &Session{
		engine: eng,
		logger: logger,
		id:     uuid.NewString()[:8],
		staged: make(map[string]time.Time),
	}
}

// AllocateName returns a namespace-unique staged name with the given
// operation-kind prefix and extension.
func (s *Session) AllocateName(prefix, ext string) string {
	n := s.counter.Add(1)
	return fmt.Sprintf("%s-%s-%06d.%s", prefix, s.id, n, ext)
}

// AllocatePattern returns a namespace-unique numbered output pattern. The
// engine substitutes the %d placeholder with the 1-based frame index.
func (s *Session) AllocatePattern(prefix, ext string) string {
	n := s.counter.Add(1)
	return fmt.Sprintf("%s-%s-%06d-%%d.%s", prefix, s.id, n, ext)
}

// Stage writes a named artifact into the engine namespace and records it as
// staged.
func (s *Session) Stage(ctx context.Context, name string, data []byte) error {
	if err := s.engine.WriteFile(ctx, name, data); err != nil {
		return fmt.Errorf("stage %s: %w: %v", name, ErrStagingFailed, err)
	}

	s.mu.Lock()
	s.staged[name] = time.Now()
	s.mu.Unlock()

	return nil
}

// Collect reads a named artifact back out of the engine namespace. Outputs
// produced by the engine itself are tracked from this point so that Release
// and the janitor can see them.
func (s *Session) Collect(ctx context.Context, name string) ([]byte, error) {
	data, err := s.engine.ReadFile(ctx, name)
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return nil, fmt.Errorf("collect %s: %w", name, ErrArtifactMissing)
		}
		return nil, fmt.Errorf("collect %s: %w", name, err)
	}

	s.mu.Lock()
	if _, ok := s.staged[name]; !ok {
		s.staged[name] = time.Now()
	}
	s.mu.Unlock()

	return data, nil
}

// Release removes a named artifact from the engine namespace.
func (s *Session) Release(ctx context.Context, name string) error {
	err := s.engine.RemoveFile(ctx, name)

	s.mu.Lock()
	delete(s.staged, name)
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return fmt.Errorf("release %s: %w", name, ErrArtifactMissing)
		}
		return fmt.Errorf("release %s: %w", name, err)
	}
	return nil
}

// StagedCount returns the number of artifacts currently staged.
func (s *Session) StagedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}

// StagedNames returns a snapshot of all currently staged names.
func (s *Session) StagedNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.staged))
	for name := range s.staged {
		names = append(names, name)
	}
	return names
}

// StartJanitor launches a background loop that force-releases staged
// artifacts older than maxAge. Scoped cleanup already covers every normal
// exit path; the janitor is a backstop against callers that crashed between
// staging and release. It stops when ctx is cancelled.
func (s *Session) StartJanitor(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reapStale(ctx, maxAge)
			}
		}
	}()
}

// reapStale removes staged artifacts whose age exceeds maxAge.
func (s *Session) reapStale(ctx context.Context, maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	var stale []string
	for name, stagedAt := range s.staged {
		if stagedAt.Before(cutoff) {
			stale = append(stale, name)
		}
	}
	s.mu.Unlock()

	for _, name := range stale {
		s.logger.Warn("Reaping stale staged artifact",
			slog.String("name", name),
			slog.Duration("max_age", maxAge),
		)
		if err := s.Release(ctx, name); err != nil && !errors.Is(err, ErrArtifactMissing) {
			s.logger.Error("Failed to reap staged artifact",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
		}
	}
}
