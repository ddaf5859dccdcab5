package clip

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streamclip/clip-media-service/internal/command"
	"github.com/streamclip/clip-media-service/internal/engine"
	"github.com/streamclip/clip-media-service/internal/metrics"
	"github.com/streamclip/clip-media-service/internal/workspace"
)

// Operation kind labels used for logging and metrics.
const (
	KindTrim       = "trim"
	KindConcat     = "concat"
	KindGain       = "gain"
	KindThumbnails = "thumbnails"
	KindWaveform   = "waveform"
)

// defaultFormat is the container extension assumed for staged media when the
// caller does not specify one.
const defaultFormat = "mp4"

// ProgressFunc receives advisory fractional progress in [0,1]. It is never
// used for cancellation.
type ProgressFunc func(fraction float64)

// Defaults contains tunable operation parameters, normally taken from the
// media section of the service configuration.
type Defaults struct {
	WaveformSampleRate    int // Hz, canonical 8000
	WaveformTargetLength  int // visualization buckets, canonical 200
	ThumbnailQuality      int // engine quality scale, lower = higher fidelity
	ThumbnailPreviewWidth int // normalize frames to this width; 0 keeps engine-native size
	ThumbnailMaxProbe     int // hard bound on the probe loop
}

// Processor sequences workspace and command builder calls for each editing
// primitive. It issues exactly one engine invocation at a time and never
// retries; retry policy belongs to the caller.
type Processor struct {
	engine   engine.Engine
	session  *workspace.Session
	logger   *slog.Logger
	metrics  *metrics.Metrics
	defaults Defaults
}

// NewProcessor creates a processor with its own long-lived workspace session
// on the given engine. m may be nil to disable metrics (tests).
func NewProcessor(eng engine.Engine, logger *slog.Logger, m *metrics.Metrics, defaults Defaults) *Processor {
	if defaults.WaveformSampleRate <= 0 {
		defaults.WaveformSampleRate = 8000
	}
	if defaults.WaveformTargetLength <= 0 {
		defaults.WaveformTargetLength = 200
	}
	if defaults.ThumbnailQuality <= 0 {
		defaults.ThumbnailQuality = 2
	}
	if defaults.ThumbnailMaxProbe <= 0 {
		defaults.ThumbnailMaxProbe = 1000
	}

	return &Processor{
		engine:   eng,
		session:  workspace.NewSession(eng, logger),
		logger:   logger,
		metrics:  m,
		defaults: defaults,
	}
}

// Session exposes the workspace session for stats reporting and janitor
// wiring.
func (p *Processor) Session() *workspace.Session {
	return p.session
}

// TrimOptions describes one trim operation.
type TrimOptions struct {
	Start  float64 // seconds
	End    float64 // seconds; must exceed Start
	Format string  // container extension of the source, default "mp4"

	// ReEncode requests frame-accurate cuts at full transcoding cost. The
	// default stream-copy mode snaps cut points to the nearest
	// engine-chosen boundary.
	ReEncode bool
}

// Trim cuts the [Start, End) range out of the source and returns the
// resulting buffer.
func (p *Processor) Trim(ctx context.Context, source []byte, opts TrimOptions) (out []byte, err error) {
	start := time.Now()
	p.begin(KindTrim)
	defer func() { p.finish(KindTrim, start, err) }()

	if opts.Start < 0 || opts.End <= opts.Start {
		return nil, fmt.Errorf("%w: trim range [%g, %g) is invalid", ErrInvalidRequest, opts.Start, opts.End)
	}

	format := opts.Format
	if format == "" {
		format = defaultFormat
	}

	scope := p.session.NewScope()
	defer scope.Close(ctx)

	input := p.session.AllocateName("trim-in", format)
	output := p.session.AllocateName("trim-out", format)

	if err := scope.Stage(ctx, input, source); err != nil {
		return nil, err
	}
	scope.Track(output)

	args := command.BuildTrim(command.TrimRequest{
		Input:    input,
		Output:   output,
		Start:    opts.Start,
		End:      opts.End,
		ReEncode: opts.ReEncode,
	})

	if err := p.exec(ctx, args); err != nil {
		return nil, err
	}

	data, err := scope.Collect(ctx, output)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Trim completed",
		slog.Float64("start", opts.Start),
		slog.Float64("end", opts.End),
		slog.Bool("re_encode", opts.ReEncode),
		slog.Int("output_bytes", len(data)),
	)
	p.recordOutput(len(data))

	return data, nil
}

// ConcatOptions describes one concatenation.
type ConcatOptions struct {
	Format string // container extension shared by all sources, default "mp4"

	// Progress, when non-nil, receives advisory fractions after each source
	// is staged and again on completion.
	Progress ProgressFunc
}

// Concatenate joins the sources in input order and returns the resulting
// buffer. All sources must share compatible encoding parameters; the engine
// does not validate that, and neither does this method.
func (p *Processor) Concatenate(ctx context.Context, sources [][]byte, opts ConcatOptions) (out []byte, err error) {
	start := time.Now()
	p.begin(KindConcat)
	defer func() { p.finish(KindConcat, start, err) }()

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: concatenation requires at least one source", ErrInvalidRequest)
	}

	format := opts.Format
	if format == "" {
		format = defaultFormat
	}

	scope := p.session.NewScope()
	defer scope.Close(ctx)

	// Output order equals input order, so sources are staged sequentially
	// and the manifest lists them as staged.
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = p.session.AllocateName("concat-in", format)
		if err := scope.Stage(ctx, names[i], src); err != nil {
			return nil, err
		}
		reportProgress(opts.Progress, float64(i+1)/float64(len(sources)+1))
	}

	manifest := p.session.AllocateName("concat-list", "txt")
	if err := scope.Stage(ctx, manifest, command.Manifest(names)); err != nil {
		return nil, err
	}

	output := p.session.AllocateName("concat-out", format)
	scope.Track(output)

	args := command.BuildConcat(command.ConcatRequest{
		Manifest: manifest,
		Output:   output,
	})

	if err := p.exec(ctx, args); err != nil {
		return nil, err
	}

	data, err := scope.Collect(ctx, output)
	if err != nil {
		return nil, err
	}

	reportProgress(opts.Progress, 1.0)

	p.logger.Info("Concatenation completed",
		slog.Int("sources", len(sources)),
		slog.Int("output_bytes", len(data)),
	)
	p.recordOutput(len(data))

	return data, nil
}

// GainOptions describes one gain adjustment.
type GainOptions struct {
	Multiplier float64 // linear amplitude multiplier; 1.0 = unchanged
	Format     string  // container extension of the source, default "mp4"

	// ReEncodeVideo re-encodes the video stream; by default it is copied
	// through unmodified.
	ReEncodeVideo bool
}

// AdjustGain scales the audio amplitude of the source and returns the
// resulting buffer.
func (p *Processor) AdjustGain(ctx context.Context, source []byte, opts GainOptions) (out []byte, err error) {
	start := time.Now()
	p.begin(KindGain)
	defer func() { p.finish(KindGain, start, err) }()

	if opts.Multiplier <= 0 {
		return nil, fmt.Errorf("%w: gain multiplier must be positive, got %g", ErrInvalidRequest, opts.Multiplier)
	}

	format := opts.Format
	if format == "" {
		format = defaultFormat
	}

	scope := p.session.NewScope()
	defer scope.Close(ctx)

	input := p.session.AllocateName("gain-in", format)
	output := p.session.AllocateName("gain-out", format)

	if err := scope.Stage(ctx, input, source); err != nil {
		return nil, err
	}
	scope.Track(output)

	args := command.BuildGain(command.GainRequest{
		Input:         input,
		Output:        output,
		Multiplier:    opts.Multiplier,
		ReEncodeVideo: opts.ReEncodeVideo,
	})

	if err := p.exec(ctx, args); err != nil {
		return nil, err
	}

	data, err := scope.Collect(ctx, output)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Gain adjustment completed",
		slog.Float64("multiplier", opts.Multiplier),
		slog.Int("output_bytes", len(data)),
	)
	p.recordOutput(len(data))

	return data, nil
}

// exec runs one engine command, recording metrics and mapping failures to
// the typed engine error.
func (p *Processor) exec(ctx context.Context, args []string) error {
	err := p.engine.Exec(ctx, args)
	if p.metrics != nil {
		p.metrics.RecordEngineInvocation(err != nil)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineExecution, err)
	}
	return nil
}

// begin records the start of an operation.
func (p *Processor) begin(kind string) {
	if p.metrics != nil {
		p.metrics.RecordOperationStarted(kind)
	}
}

// finish records completion metrics and refreshes the staged artifact gauge.
func (p *Processor) finish(kind string, start time.Time, err error) {
	if p.metrics == nil {
		return
	}

	elapsed := time.Since(start).Seconds()
	if err != nil {
		p.metrics.RecordOperationFailed(kind, elapsed)
	} else {
		p.metrics.RecordOperationCompleted(kind, elapsed)
	}
	p.metrics.SetStagedArtifacts(p.session.StagedCount())
}

// recordOutput observes the output buffer size.
func (p *Processor) recordOutput(size int) {
	if p.metrics != nil {
		p.metrics.RecordOutputBytes(size)
	}
}

// reportProgress invokes the observer when one is set.
func reportProgress(fn ProgressFunc, fraction float64) {
	if fn != nil {
		fn(fraction)
	}
}
