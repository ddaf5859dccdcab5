package engine

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryWriteReadRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	if err := m.WriteFile(ctx, "clip.mp4", []byte("payload")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := m.ReadFile(ctx, "clip.mp4")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Expected payload, got %q", data)
	}

	if err := m.RemoveFile(ctx, "clip.mp4"); err != nil {
		t.Fatalf("RemoveFile failed: %v", err)
	}

	if _, err := m.ReadFile(ctx, "clip.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after removal, got %v", err)
	}
}

func TestMemoryMissingFile(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	if _, err := m.ReadFile(ctx, "never-written.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from ReadFile, got %v", err)
	}
	if err := m.RemoveFile(ctx, "never-written.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from RemoveFile, got %v", err)
	}
}

func TestMemoryCopiesData(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	original := []byte("immutable")
	if err := m.WriteFile(ctx, "a.mp4", original); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Mutating the caller's buffer must not affect the staged copy
	original[0] = 'X'

	data, err := m.ReadFile(ctx, "a.mp4")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "immutable" {
		t.Errorf("Expected staged copy unchanged, got %q", data)
	}
}

func TestMemoryExecRunsAgainstNamespace(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(func(args []string, files map[string][]byte) error {
		files["out.mp4"] = []byte("produced")
		return nil
	})

	if err := m.Exec(ctx, []string{"-y", "out.mp4"}); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if m.ExecCount() != 1 {
		t.Errorf("Expected 1 exec, got %d", m.ExecCount())
	}

	data, err := m.ReadFile(ctx, "out.mp4")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "produced" {
		t.Errorf("Expected produced output, got %q", data)
	}
}

func TestMemoryNilExecSucceeds(t *testing.T) {
	m := NewMemory(nil)

	if err := m.Exec(context.Background(), []string{"-y"}); err != nil {
		t.Errorf("Expected nil ExecFunc to succeed, got %v", err)
	}
}

func TestMemoryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory(nil)
	if err := m.WriteFile(ctx, "a.mp4", []byte("x")); err == nil {
		t.Error("Expected error from cancelled context")
	}
	if err := m.Exec(ctx, nil); err == nil {
		t.Error("Expected error from cancelled context")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "trim-in-abc-000001.mp4", false},
		{"pattern name", "thumb-out-abc-000002-1.jpg", false},
		{"empty", "", true},
		{"forward slash", "dir/file.mp4", true},
		{"backslash", `dir\file.mp4`, true},
		{"parent traversal", "..file.mp4", true},
		{"absolute path", "/etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateName(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("Expected error for %q", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected %q accepted, got %v", tt.input, err)
			}
		})
	}
}
