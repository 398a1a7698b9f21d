package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ryuk2git/dspipeline/pkg/frame"
)

// Pipeline chains steps. Each step consumes the previous step's output, so
// steps always run in list order.
type Pipeline struct {
	steps       []Step
	appendInput bool
	suffix      string
	description string
	logger      *slog.Logger

	fitted bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAppendInput makes the pipeline return its input columns alongside the
// derived ones instead of the derived ones alone.
func WithAppendInput(b bool) Option { return func(p *Pipeline) { p.appendInput = b } }

// WithAppendSuffix sets the suffix given to derived columns whose names clash
// with input columns in append mode.
func WithAppendSuffix(s string) Option { return func(p *Pipeline) { p.suffix = s } }

// WithDescription overrides the generated description.
func WithDescription(d string) Option { return func(p *Pipeline) { p.description = d } }

// WithLogger sets the logger that receives per-step progress records. Records
// are logged at debug level unless the run is verbose.
func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// New returns an unfitted pipeline over steps. The slice is copied; the steps
// themselves are owned by the pipeline from here on.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:  append([]Step(nil), steps...),
		suffix: frame.DefaultSuffix,
	}
	for _, o := range opts {
		o(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.description == "" {
		names := make([]string, len(p.steps))
		for i, s := range p.steps {
			names[i] = s.Description()
		}
		p.description = "Pipeline[" + strings.Join(names, " -> ") + "]"
	}
	return p
}

func (p *Pipeline) Description() string { return p.description }

// ChangesRowCount is always false: a pipeline decides per run whether its own
// row-changing steps execute, see RunOptions.AllowRowRemoval.
func (p *Pipeline) ChangesRowCount() bool { return false }

// Steps returns the pipeline's steps in order.
func (p *Pipeline) Steps() []Step { return append([]Step(nil), p.steps...) }

// Fitted reports whether Fit has completed at least once.
func (p *Pipeline) Fitted() bool { return p.fitted }

// Fit fits every step with the default run options.
func (p *Pipeline) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	opts := DefaultRunOptions()
	opts.Label = label
	return p.FitWith(data, opts)
}

// Transform transforms with the default run options.
func (p *Pipeline) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	opts := DefaultRunOptions()
	opts.Label = label
	return p.TransformWith(data, opts)
}

// FitWith fits each step in order on the output of the previous one and
// returns the final output. Fitting always runs every step:
// opts.AllowRowRemoval only affects TransformWith.
//
// A failing step's error is returned as is. Steps before it keep their new
// fitted state, but the pipeline itself is left unfitted, as it is when the
// append-mode merge fails.
func (p *Pipeline) FitWith(data *frame.Frame, opts RunOptions) (*frame.Frame, error) {
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	p.fitted = false
	opts.AllowRowRemoval = true
	cur := data
	for i, step := range p.steps {
		p.log(opts, "fitting step", i, step, cur)
		var err error
		if r, ok := step.(Runner); ok {
			cur, err = r.FitWith(cur, opts)
		} else {
			cur, err = step.Fit(cur, opts.Label)
		}
		if err != nil {
			return nil, err
		}
	}
	out, err := p.finish(data, cur, opts)
	if err != nil {
		return nil, err
	}
	p.fitted = true
	return out, nil
}

// TransformWith applies each fitted step in order. When opts.AllowRowRemoval
// is false, steps that change the row count are skipped, so evaluation data
// keeps every row.
func (p *Pipeline) TransformWith(data *frame.Frame, opts RunOptions) (*frame.Frame, error) {
	if !p.fitted {
		return nil, NotFitted(p)
	}
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	cur := data
	for i, step := range p.steps {
		if !opts.AllowRowRemoval && step.ChangesRowCount() {
			p.log(opts, "skipping row-changing step", i, step, cur)
			continue
		}
		p.log(opts, "transforming step", i, step, cur)
		var err error
		if r, ok := step.(Runner); ok {
			cur, err = r.TransformWith(cur, opts)
		} else {
			cur, err = step.Transform(cur, opts.Label)
		}
		if err != nil {
			return nil, err
		}
	}
	return p.finish(data, cur, opts)
}

// FitTransform fits on data and then transforms the same data with opts.
func (p *Pipeline) FitTransform(data *frame.Frame, opts RunOptions) (*frame.Frame, error) {
	if _, err := p.FitWith(data, opts); err != nil {
		return nil, err
	}
	return p.TransformWith(data, opts)
}

// finish applies append mode: input columns are joined to the output by row
// identity, so rows removed by a step are dropped from the input side too.
func (p *Pipeline) finish(input, output *frame.Frame, opts RunOptions) (*frame.Frame, error) {
	if !p.appendInput {
		return output, nil
	}
	return frame.Merge(input, output, opts.Label, p.suffix)
}

func (p *Pipeline) log(opts RunOptions, msg string, i int, step Step, cur *frame.Frame) {
	level := slog.LevelDebug
	if opts.Verbose {
		level = slog.LevelInfo
	}
	p.logger.Log(context.Background(), level, msg,
		slog.String("pipeline", p.description),
		slog.Int("index", i),
		slog.String("step", step.Description()),
		slog.Int("rows", cur.NumRows()),
		slog.Int("cols", cur.NumCols()),
	)
}
