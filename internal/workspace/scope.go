package workspace

import (
	"context"
	"errors"
	"log/slog"
)

// Scope tracks every artifact name staged during one operation so that all
// of them can be released in a single deferred call. Operations wrap their
// engine interaction in a scope instead of duplicating cleanup at each error
// branch.
//
// A Scope is used by a single goroutine; the session it belongs to handles
// its own locking.
type Scope struct {
	session *Session
	names   []string
}

// NewScope opens a scope on the session.
func (s *Session) NewScope() *Scope {
	return &Scope{session: s}
}

// Stage writes a named artifact and tracks it for release.
func (sc *Scope) Stage(ctx context.Context, name string, data []byte) error {
	if err := sc.session.Stage(ctx, name, data); err != nil {
		return err
	}
	sc.names = append(sc.names, name)
	return nil
}

// Track registers a name the engine is expected to produce, so it is
// released with the rest of the scope even if it was never staged by us.
func (sc *Scope) Track(name string) {
	sc.names = append(sc.names, name)
}

// Collect reads a named artifact; engine-produced outputs are tracked for
// release on first collect.
func (sc *Scope) Collect(ctx context.Context, name string) ([]byte, error) {
	data, err := sc.session.Collect(ctx, name)
	if err != nil {
		return nil, err
	}
	if !sc.tracked(name) {
		sc.names = append(sc.names, name)
	}
	return data, nil
}

// Release removes one artifact immediately and stops tracking it. Used by
// the thumbnail probe loop, which releases each frame as soon as it has been
// converted.
func (sc *Scope) Release(ctx context.Context, name string) error {
	err := sc.session.Release(ctx, name)
	for i, n := range sc.names {
		if n == name {
			sc.names = append(sc.names[:i], sc.names[i+1:]...)
			break
		}
	}
	return err
}

// Close releases every still-tracked name. It is safe to call in a defer on
// both success and failure paths; names already released individually are
// skipped. Release failures are logged, never propagated: cleanup must not
// mask the operation's own error.
func (sc *Scope) Close(ctx context.Context) {
	// Cleanup still has to run when the operation failed because ctx died.
	ctx = context.WithoutCancel(ctx)
	for _, name := range sc.names {
		if err := sc.session.Release(ctx, name); err != nil && !errors.Is(err, ErrArtifactMissing) {
			sc.session.logger.Warn("Failed to release staged artifact",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
		}
	}
	sc.names = nil
}

// tracked reports whether the name is already registered with the scope.
func (sc *Scope) tracked(name string) bool {
	for _, n := range sc.names {
		if n == name {
			return true
		}
	}
	return false
}
