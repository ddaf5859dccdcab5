package clip

import "errors"

var (
	// ErrInvalidRequest indicates parameter validation failed. It is always
	// raised before any engine call; no artifacts are staged.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrEngineExecution indicates the engine rejected or crashed on a
	// command. The underlying engine message is carried in the wrapped
	// error text.
	ErrEngineExecution = errors.New("engine execution failed")
)
