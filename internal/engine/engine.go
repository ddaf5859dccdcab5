package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by ReadFile and RemoveFile when the named file does
// not exist in the engine's namespace. Callers probing for optional outputs
// (thumbnail frames) treat it as a termination signal rather than a failure.
var ErrNotFound = errors.New("file not found in engine namespace")

// Engine is the only I/O boundary of the clip processor. All calls block
// until the engine has finished; ctx allows callers to abandon the wait.
//
// The namespace is flat: names are opaque tokens, not paths. Implementations
// must reject names containing path separators.
type Engine interface {
	// WriteFile stages a named file in the engine's namespace.
	WriteFile(ctx context.Context, name string, data []byte) error

	// Exec runs one transcoding command. Input and output names inside args
	// resolve against the engine's namespace.
	Exec(ctx context.Context, args []string) error

	// ReadFile reads a named file back out of the namespace.
	ReadFile(ctx context.Context, name string) ([]byte, error)

	// RemoveFile deletes a named file from the namespace.
	RemoveFile(ctx context.Context, name string) error
}

// validateName rejects names that would escape a directory-backed namespace.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty file name")
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}
