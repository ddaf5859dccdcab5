package clip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"

	"github.com/streamclip/clip-media-service/internal/audio"
	"github.com/streamclip/clip-media-service/internal/command"
	"github.com/streamclip/clip-media-service/internal/workspace"
)

// Thumbnail is one sampled frame, in capture order.
type Thumbnail struct {
	Index       int    `json:"index"` // 1-based capture index
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// ThumbnailOptions describes one thumbnail extraction.
type ThumbnailOptions struct {
	Interval float64 // seconds between sampled frames; must be positive
	Quality  int     // engine quality scale, lower = higher fidelity; 0 uses the configured default
	MaxCount int     // stop after this many frames; 0 means no caller limit
	Format   string  // container extension of the source, default "mp4"
}

// ExtractThumbnails samples one frame per interval and returns however many
// frames the engine produced, in capture order.
//
// The engine does not report how many frames it wrote, so the processor
// probes sequentially from index 1 and stops at the first missing artifact;
// that miss is the documented termination condition, not a failure. MaxCount
// and the configured probe bound also terminate the loop. Each frame is
// released from the workspace as soon as it has been converted.
func (p *Processor) ExtractThumbnails(ctx context.Context, source []byte, opts ThumbnailOptions) (thumbs []Thumbnail, err error) {
	start := time.Now()
	p.begin(KindThumbnails)
	defer func() { p.finish(KindThumbnails, start, err) }()

	if opts.Interval <= 0 {
		return nil, fmt.Errorf("%w: thumbnail interval must be positive, got %g", ErrInvalidRequest, opts.Interval)
	}
	if opts.MaxCount < 0 {
		return nil, fmt.Errorf("%w: max count cannot be negative, got %d", ErrInvalidRequest, opts.MaxCount)
	}

	quality := opts.Quality
	if quality <= 0 {
		quality = p.defaults.ThumbnailQuality
	}

	format := opts.Format
	if format == "" {
		format = defaultFormat
	}

	scope := p.session.NewScope()
	defer scope.Close(ctx)

	input := p.session.AllocateName("thumb-in", format)
	pattern := p.session.AllocatePattern("thumb-out", "jpg")

	if err := scope.Stage(ctx, input, source); err != nil {
		return nil, err
	}

	args := command.BuildThumbnails(command.ThumbnailRequest{
		Input:         input,
		OutputPattern: pattern,
		Interval:      opts.Interval,
		Quality:       quality,
		MaxCount:      opts.MaxCount,
	})

	if err := p.exec(ctx, args); err != nil {
		return nil, err
	}

	limit := p.defaults.ThumbnailMaxProbe
	if opts.MaxCount > 0 && opts.MaxCount < limit {
		limit = opts.MaxCount
	}

	for index := 1; index <= limit; index++ {
		name := fmt.Sprintf(pattern, index)

		data, err := scope.Collect(ctx, name)
		if errors.Is(err, workspace.ErrArtifactMissing) {
			// First absent frame marks the end of the engine's output.
			break
		}
		if err != nil {
			return nil, err
		}

		thumbs = append(thumbs, Thumbnail{
			Index:       index,
			ContentType: "image/jpeg",
			Data:        p.normalizeThumbnail(data),
		})

		if err := scope.Release(ctx, name); err != nil {
			return nil, err
		}
	}

	p.logger.Info("Thumbnail extraction completed",
		slog.Float64("interval", opts.Interval),
		slog.Int("frames", len(thumbs)),
	)
	if p.metrics != nil {
		p.metrics.RecordThumbnailFrames(len(thumbs))
	}

	return thumbs, nil
}

// normalizeThumbnail downscales a frame to the configured preview width and
// re-encodes it as JPEG. Frames pass through untouched when no preview width
// is configured or the frame does not decode.
func (p *Processor) normalizeThumbnail(data []byte) []byte {
	width := p.defaults.ThumbnailPreviewWidth
	if width <= 0 {
		return data
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		p.logger.Warn("Thumbnail frame did not decode, keeping engine output",
			slog.String("error", err.Error()),
		)
		return data
	}

	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		p.logger.Warn("Thumbnail re-encode failed, keeping engine output",
			slog.String("error", err.Error()),
		)
		return data
	}
	return buf.Bytes()
}

// WaveformOptions describes one waveform extraction.
type WaveformOptions struct {
	SampleRate   int    // Hz; 0 uses the configured default (8000)
	TargetLength int    // visualization buckets; 0 uses the configured default (200)
	Format       string // container extension of the source, default "mp4"
}

// ExtractWaveform extracts the audio track as mono 16-bit PCM and reduces it
// to a peak-amplitude visualization vector. The vector holds at most
// TargetLength values in [0,1]; clips shorter than TargetLength samples
// produce proportionally fewer values.
func (p *Processor) ExtractWaveform(ctx context.Context, source []byte, opts WaveformOptions) (vector []float64, err error) {
	start := time.Now()
	p.begin(KindWaveform)
	defer func() { p.finish(KindWaveform, start, err) }()

	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = p.defaults.WaveformSampleRate
	}
	if sampleRate < 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidRequest, sampleRate)
	}

	targetLength := opts.TargetLength
	if targetLength == 0 {
		targetLength = p.defaults.WaveformTargetLength
	}
	if targetLength < 0 {
		return nil, fmt.Errorf("%w: target length must be positive, got %d", ErrInvalidRequest, targetLength)
	}

	format := opts.Format
	if format == "" {
		format = defaultFormat
	}

	scope := p.session.NewScope()
	defer scope.Close(ctx)

	input := p.session.AllocateName("wave-in", format)
	output := p.session.AllocateName("wave-out", "wav")

	if err := scope.Stage(ctx, input, source); err != nil {
		return nil, err
	}
	scope.Track(output)

	args := command.BuildWaveform(command.WaveformRequest{
		Input:      input,
		Output:     output,
		SampleRate: sampleRate,
	})

	if err := p.exec(ctx, args); err != nil {
		return nil, err
	}

	data, err := scope.Collect(ctx, output)
	if err != nil {
		return nil, err
	}

	vector = audio.Downsample(data, targetLength)

	p.logger.Info("Waveform extraction completed",
		slog.Int("sample_rate", sampleRate),
		slog.Int("buckets", len(vector)),
	)
	if p.metrics != nil {
		p.metrics.RecordWaveformBuckets(len(vector))
	}

	return vector, nil
}
