// Package retexture turns green-screen sprite frames into retextured,
// outlined output images. Each frame is classified into fill and
// outline regions, chroma keyed, composited with a shading-modulated
// texture and downsampled. Every stage is also exported on its own so
// callers can run partial pipelines or persist intermediates.
package retexture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"
)

var (
	// ErrNilImage reports a nil frame or texture where an image is
	// required.
	ErrNilImage = errors.New("nil image")
	// ErrNoFrames reports an empty frame source.
	ErrNoFrames = errors.New("no frames")
)

// Stage names carried by StageError.
const (
	StageDecode    = "decode"
	StageComposite = "composite"
	StageEmit      = "emit"
)

// StageError wraps a per-frame failure with the 1-based frame index
// and the pipeline stage that produced it.
type StageError struct {
	Frame int
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("frame %d: %s: %v", e.Frame, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Frame pairs a 1-based index with its decoded image.
type Frame struct {
	Index int
	Image image.Image
}

// FrameSource hands frames to Run. Indexes are 1-based and dense:
// every i in [1, Len()] must resolve. Frame is called from multiple
// goroutines and must be safe for concurrent use.
type FrameSource interface {
	Len() int
	Frame(i int) (image.Image, error)
}

// OutputSink receives finished frames from Run. Emit is called from a
// single goroutine, possibly out of frame order.
type OutputSink interface {
	Emit(index int, img image.Image) error
}

// Pipeline applies the full retexturing sequence to frames. Construct
// it once and share it; Process and Run are safe for concurrent use.
type Pipeline struct {
	opt       Options
	texture   image.Image
	resampler imaging.ResampleFilter
	logger    *slog.Logger
	workers   int

	mu       sync.Mutex
	texCache map[image.Point]*image.NRGBA
}

// PipelineOption configures a Pipeline beyond its Options.
type PipelineOption func(*Pipeline)

// WithLogger sets a structured logger for batch runs. The default
// discards everything.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithWorkers caps batch parallelism. Values below 1 keep the default
// of one worker per CPU.
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n >= 1 {
			p.workers = n
		}
	}
}

// NewPipeline validates opt and builds a pipeline around it. texture
// may be nil, in which case frames are keyed and outlined but the
// composite and the aggressive key pass are skipped.
func NewPipeline(opt Options, texture image.Image, opts ...PipelineOption) (*Pipeline, error) {
	if err := opt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	resampler, err := opt.Filter.resampler()
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		opt:       opt,
		texture:   texture,
		resampler: resampler,
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
		workers:   runtime.NumCPU(),
		texCache:  make(map[image.Point]*image.NRGBA),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Process runs one frame through the full stage order: classify fill
// and outline on the source, dilate the fill mask, standard chroma
// key, then with a texture configured extract shading from the source,
// composite and key again aggressively, then overlay the outline and
// downsample to the output size. Failures wrap into StageError with
// the frame's index.
func (p *Pipeline) Process(frame Frame) (*image.NRGBA, error) {
	if frame.Image == nil {
		return nil, &StageError{Frame: frame.Index, Stage: StageDecode, Err: ErrNilImage}
	}
	src := asNRGBA(frame.Image)

	fill := ClassifyFill(src, p.opt.Fill).Dilate(p.opt.DilateIterations, p.opt.DilateNoise)
	outline := ClassifyOutline(src, p.opt.Outline)

	out := RemoveBackground(src, p.opt.KeyStandard)

	if p.texture != nil {
		// Shading comes from the source frame, not the keyed copy, so
		// background pixels cannot skew the luminance range.
		shading := ExtractShading(src, fill, p.opt.ShadingMin, p.opt.ShadingMax)
		tex, err := p.resizedTexture(src.Rect.Dx(), src.Rect.Dy())
		if err != nil {
			return nil, &StageError{Frame: frame.Index, Stage: StageComposite, Err: err}
		}
		out, err = ApplyTexture(out, tex, fill, shading, p.opt.Filter)
		if err != nil {
			return nil, &StageError{Frame: frame.Index, Stage: StageComposite, Err: err}
		}
		out = RemoveBackground(out, p.opt.KeyAggressive)
	}

	out = OverlayOutline(out, outline)
	return imaging.Resize(out, p.opt.OutputSize.X, p.opt.OutputSize.Y, p.resampler), nil
}

// Run processes every frame from src and hands finished frames to
// sink, which must be non-nil. Frames run in parallel; a failed frame
// never stops its siblings. All per-frame failures, and the context
// error when the run is cancelled, come back joined into one error.
func (p *Pipeline) Run(ctx context.Context, src FrameSource, sink OutputSink) error {
	if src == nil || src.Len() <= 0 {
		return ErrNoFrames
	}
	total := src.Len()
	workers := min(p.workers, total)

	p.logger.Info("processing frames", "frames", total, "workers", workers, "textured", p.texture != nil)

	tasks := make(chan int, workers)
	results := make(chan frameResult, workers*2)
	var wg sync.WaitGroup

	var errs []error
	aggDone := make(chan struct{})
	go func() {
		defer close(aggDone)
		for res := range results {
			if res.err == nil {
				if err := sink.Emit(res.index, res.img); err != nil {
					res.err = &StageError{Frame: res.index, Stage: StageEmit, Err: err}
				}
			}
			if res.err != nil {
				p.logger.Error("frame failed", "frame", res.index, "error", res.err)
				errs = append(errs, res.err)
				continue
			}
			p.logger.Debug("frame done", "frame", res.index)
		}
	}()

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range tasks {
				results <- p.processIndex(index, src)
			}
		}()
	}

	for index := 1; index <= total && ctx.Err() == nil; index++ {
		select {
		case tasks <- index:
		case <-ctx.Done():
		}
	}
	close(tasks)
	wg.Wait()
	close(results)
	<-aggDone

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		p.logger.Info("run finished with failures", "failed", len(errs), "frames", total)
	}
	return errors.Join(errs...)
}

type frameResult struct {
	index int
	img   *image.NRGBA
	err   error
}

func (p *Pipeline) processIndex(index int, src FrameSource) frameResult {
	img, err := src.Frame(index)
	if err != nil {
		return frameResult{index: index, err: &StageError{Frame: index, Stage: StageDecode, Err: err}}
	}
	out, err := p.Process(Frame{Index: index, Image: img})
	if err != nil {
		return frameResult{index: index, err: err}
	}
	return frameResult{index: index, img: out}
}

// resizedTexture returns the shared texture at w by h, resizing it at
// most once per target size.
func (p *Pipeline) resizedTexture(w, h int) (*image.NRGBA, error) {
	if p.texture == nil {
		return nil, ErrNilImage
	}
	key := image.Pt(w, h)
	p.mu.Lock()
	defer p.mu.Unlock()
	if tex, ok := p.texCache[key]; ok {
		return tex, nil
	}
	tex := asNRGBA(p.texture)
	if tex.Rect.Dx() != w || tex.Rect.Dy() != h {
		tex = imaging.Resize(p.texture, w, h, p.resampler)
	}
	p.texCache[key] = tex
	return tex, nil
}

// asNRGBA returns img as a zero-origin NRGBA image, copying only when
// the representation differs. Callers that write must clone first.
func asNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
