// Package command translates typed operation requests into the ordered
// argument vectors the transcoding engine interprets. Builders are pure:
// no I/O, no side effects, deterministic output for a given request.
package command
