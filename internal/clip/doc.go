// Package clip implements the media segment processing operations: trim,
// concatenate, gain adjustment, thumbnail sampling, and waveform extraction.
// Each operation stages its inputs into the workspace, runs one or more
// transcoding engine commands, collects the outputs, and releases every
// staged artifact before returning, on success and failure paths alike.
package clip
