package command

import (
	"fmt"
	"strconv"
	"strings"
)

// TrimRequest selects a time range from one staged input.
type TrimRequest struct {
	Input  string  // staged input name
	Output string  // staged output name
	Start  float64 // seconds
	End    float64 // seconds, exclusive of Start

	// ReEncode requests frame-accurate cuts. The default stream-copy mode
	// is near-zero cost but snaps the cut to the nearest engine-chosen
	// boundary rather than the exact requested time; callers that need
	// exact cuts must opt in to re-encoding.
	ReEncode bool
}

// ConcatRequest joins staged inputs listed in a manifest artifact. The
// engine's concat path assumes all inputs share compatible encoding
// parameters (codec, resolution, sample rate); heterogeneous inputs are the
// caller's responsibility.
type ConcatRequest struct {
	Manifest string // staged manifest name
	Output   string
}

// GainRequest scales audio amplitude by a linear multiplier.
type GainRequest struct {
	Input      string
	Output     string
	Multiplier float64 // 1.0 = unchanged

	// ReEncodeVideo re-encodes the video stream instead of copying it.
	ReEncodeVideo bool
}

// ThumbnailRequest samples frames at a fixed interval.
type ThumbnailRequest struct {
	Input         string
	OutputPattern string  // numbered pattern, e.g. "thumb-ab12-%d.jpg"
	Interval      float64 // seconds between sampled frames
	Quality       int     // engine quality scale; lower value = higher fidelity
	MaxCount      int     // 0 = no limit
}

// WaveformRequest extracts the audio track as a mono 16-bit PCM container.
type WaveformRequest struct {
	Input      string
	Output     string
	SampleRate int
}

// BuildTrim returns the argument vector for a trim operation.
func BuildTrim(req TrimRequest) []string {
	args := []string{
		"-y",
		"-ss", num(req.Start),
		"-to", num(req.End),
		"-i", req.Input,
	}

	if req.ReEncode {
		args = append(args,
			"-c:v", "libx264",
			"-preset", "fast",
			"-crf", "23",
			"-c:a", "aac",
		)
	} else {
		args = append(args, "-c", "copy")
	}

	return append(args, req.Output)
}

// BuildConcat returns the argument vector for a concatenation. Inputs are
// never passed directly; the engine reads join order from the manifest.
func BuildConcat(req ConcatRequest) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", req.Manifest,
		"-c", "copy",
		req.Output,
	}
}

// Manifest renders the concat manifest listing staged names in join order.
func Manifest(names []string) []byte {
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "file '%s'\n", name)
	}
	return []byte(b.String())
}

// BuildGain returns the argument vector for a gain adjustment. The video
// stream is copied unmodified unless re-encoding is requested.
func BuildGain(req GainRequest) []string {
	args := []string{
		"-y",
		"-i", req.Input,
		"-af", fmt.Sprintf("volume=%s", num(req.Multiplier)),
	}

	if !req.ReEncodeVideo {
		args = append(args, "-c:v", "copy")
	}

	return append(args, req.Output)
}

// BuildThumbnails returns the argument vector for interval frame sampling.
// The engine writes numbered frames matching the output pattern; how many
// materialize depends on the source duration, so callers probe for them.
func BuildThumbnails(req ThumbnailRequest) []string {
	args := []string{
		"-y",
		"-i", req.Input,
		"-vf", fmt.Sprintf("fps=1/%s", num(req.Interval)),
		"-q:v", strconv.Itoa(req.Quality),
	}

	if req.MaxCount > 0 {
		args = append(args, "-frames:v", strconv.Itoa(req.MaxCount))
	}

	return append(args, req.OutputPattern)
}

// BuildWaveform returns the argument vector for waveform source extraction:
// no video, forced mono, caller-specified sample rate, canonical WAV target.
func BuildWaveform(req WaveformRequest) []string {
	return []string{
		"-y",
		"-i", req.Input,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(req.SampleRate),
		"-f", "wav",
		req.Output,
	}
}

// num formats a float argument without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
