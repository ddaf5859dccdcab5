package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/streamclip/clip-media-service/internal/engine"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAllocateNameUniqueness(t *testing.T) {
	session := NewSession(engine.NewMemory(nil), testLogger())

	const workers = 8
	const perWorker = 250

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				name := session.AllocateName("trim-in", "mp4")
				mu.Lock()
				if seen[name] {
					t.Errorf("Duplicate staged name: %s", name)
				}
				seen[name] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("Expected %d unique names, got %d", workers*perWorker, len(seen))
	}
}

func TestStageCollectRelease(t *testing.T) {
	ctx := context.Background()
	session := NewSession(engine.NewMemory(nil), testLogger())

	name := session.AllocateName("trim-in", "mp4")
	payload := []byte("clip bytes")

	if err := session.Stage(ctx, name, payload); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	if session.StagedCount() != 1 {
		t.Errorf("Expected 1 staged artifact, got %d", session.StagedCount())
	}

	data, err := session.Collect(ctx, name)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("Expected %q, got %q", payload, data)
	}

	if err := session.Release(ctx, name); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if session.StagedCount() != 0 {
		t.Errorf("Expected 0 staged artifacts after release, got %d", session.StagedCount())
	}
}

func TestCollectMissingArtifact(t *testing.T) {
	session := NewSession(engine.NewMemory(nil), testLogger())

	_, err := session.Collect(context.Background(), "never-staged.mp4")
	if !errors.Is(err, ErrArtifactMissing) {
		t.Errorf("Expected ErrArtifactMissing, got %v", err)
	}
}

func TestReleaseMissingArtifact(t *testing.T) {
	session := NewSession(engine.NewMemory(nil), testLogger())

	err := session.Release(context.Background(), "never-staged.mp4")
	if !errors.Is(err, ErrArtifactMissing) {
		t.Errorf("Expected ErrArtifactMissing, got %v", err)
	}
}

func TestScopeClosesAllStagedNames(t *testing.T) {
	ctx := context.Background()
	eng := engine.NewMemory(nil)
	session := NewSession(eng, testLogger())

	scope := session.NewScope()
	for i := 0; i < 3; i++ {
		name := session.AllocateName("concat-in", "mp4")
		if err := scope.Stage(ctx, name, []byte{byte(i)}); err != nil {
			t.Fatalf("Stage failed: %v", err)
		}
	}

	if session.StagedCount() != 3 {
		t.Fatalf("Expected 3 staged artifacts, got %d", session.StagedCount())
	}

	scope.Close(ctx)

	if session.StagedCount() != 0 {
		t.Errorf("Expected 0 staged artifacts after close, got %d", session.StagedCount())
	}
	if names := eng.FileNames(); len(names) != 0 {
		t.Errorf("Expected empty engine namespace, got %v", names)
	}
}

func TestScopeCloseSkipsReleasedNames(t *testing.T) {
	ctx := context.Background()
	session := NewSession(engine.NewMemory(nil), testLogger())

	scope := session.NewScope()
	name := session.AllocateName("thumb-out", "jpg")
	if err := scope.Stage(ctx, name, []byte("frame")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	if err := scope.Release(ctx, name); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	// Close must not fail or double-release
	scope.Close(ctx)

	if session.StagedCount() != 0 {
		t.Errorf("Expected 0 staged artifacts, got %d", session.StagedCount())
	}
}

func TestScopeCloseSurvivesCancelledContext(t *testing.T) {
	eng := engine.NewMemory(nil)
	session := NewSession(eng, testLogger())

	scope := session.NewScope()
	if err := scope.Stage(context.Background(), session.AllocateName("trim-in", "mp4"), []byte("x")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Cleanup must still run when the operation's context is already dead
	scope.Close(ctx)

	if names := eng.FileNames(); len(names) != 0 {
		t.Errorf("Expected empty engine namespace after close, got %v", names)
	}
}

func TestScopeTracksCollectedOutputs(t *testing.T) {
	ctx := context.Background()
	eng := engine.NewMemory(func(args []string, files map[string][]byte) error {
		files["engine-made.mp4"] = []byte("output")
		return nil
	})
	session := NewSession(eng, testLogger())

	scope := session.NewScope()
	if err := eng.Exec(ctx, nil); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}

	if _, err := scope.Collect(ctx, "engine-made.mp4"); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	scope.Close(ctx)

	if names := eng.FileNames(); len(names) != 0 {
		t.Errorf("Expected engine output released on close, got %v", names)
	}
}

func TestJanitorReapsStaleArtifacts(t *testing.T) {
	ctx := context.Background()
	eng := engine.NewMemory(nil)
	session := NewSession(eng, testLogger())

	name := session.AllocateName("trim-in", "mp4")
	if err := session.Stage(ctx, name, []byte("stale")); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	// Backdate the artifact past the max age
	session.mu.Lock()
	session.staged[name] = time.Now().Add(-time.Hour)
	session.mu.Unlock()

	session.reapStale(ctx, time.Minute)

	if session.StagedCount() != 0 {
		t.Errorf("Expected stale artifact reaped, got %d staged", session.StagedCount())
	}
	if names := eng.FileNames(); len(names) != 0 {
		t.Errorf("Expected empty engine namespace, got %v", names)
	}
}
