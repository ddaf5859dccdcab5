// Package engine defines the transcoding engine boundary. The orchestrator
// only ever talks to the Engine interface: a command executor with a virtual
// file namespace for passing inputs and outputs. Two implementations are
// provided, an ffmpeg-backed engine that maps the namespace onto a private
// scratch directory, and an in-memory engine for tests and local development.
package engine
