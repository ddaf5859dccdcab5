package engine

import (
	"context"
	"fmt"
	"sync"
)

// ExecFunc simulates one transcoding command against the in-memory
// namespace. It may read and write the files map directly; the engine holds
// its lock for the duration of the call.
type ExecFunc func(args []string, files map[string][]byte) error

// Memory is an in-memory Engine used by tests and local development. Exec
// behavior is supplied by the caller.
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
	exec  ExecFunc

	writes int
	execs  int
}

// NewMemory creates an empty in-memory engine. fn may be nil, in which case
// Exec is a no-op that succeeds.
func NewMemory(fn ExecFunc) *Memory {
	return &Memory{
		files: make(map[string][]byte),
		exec:  fn,
	}
}

// WriteFile stages a file in the in-memory namespace.
func (m *Memory) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[name] = buf
	m.writes++
	return nil
}

// Exec invokes the configured ExecFunc against the namespace.
func (m *Memory) Exec(ctx context.Context, args []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.execs++
	if m.exec == nil {
		return nil
	}
	return m.exec(args, m.files)
}

// ReadFile reads a file from the in-memory namespace.
func (m *Memory) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// RemoveFile deletes a file from the in-memory namespace.
func (m *Memory) RemoveFile(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[name]; !ok {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	delete(m.files, name)
	return nil
}

// FileNames returns a snapshot of every name currently in the namespace.
// Tests use it to verify that operations leave nothing staged behind.
func (m *Memory) FileNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	return names
}

// ExecCount returns how many commands have been executed.
func (m *Memory) ExecCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.execs
}
