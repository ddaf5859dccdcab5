// Package audio handles the canonical PCM audio container and waveform
// reduction. It implements encoding/decoding of mono 16-bit little-endian
// WAV buffers (the intermediate format the transcoding engine emits for
// waveform extraction) and peak-based downsampling of the sample stream
// into a fixed-length visualization vector.
package audio
