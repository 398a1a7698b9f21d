// Package pipeline sequences data transformation steps over frames.
//
// A Step is fitted on training data and then applied to any number of frames
// with the same features. A Pipeline is itself a Step, so pipelines nest.
package pipeline

import "github.com/ryuk2git/dspipeline/pkg/frame"

// DefaultLabel is the conventional name of the label column.
const DefaultLabel = "label"

// Step is a single fit/transform stage.
//
// Fit estimates the step's parameters from data, marks the step fitted and
// returns the result of transforming the same data. Transform applies the
// fitted parameters and returns a *NotFittedError when called before Fit.
// Neither may modify data; both return a new frame. label names the label
// column; an empty label means the data is unlabeled.
type Step interface {
	// Description is a short human-readable name used in logs.
	Description() string
	// ChangesRowCount reports whether Transform may add or remove rows.
	ChangesRowCount() bool
	Fit(data *frame.Frame, label string) (*frame.Frame, error)
	Transform(data *frame.Frame, label string) (*frame.Frame, error)
}

// Runner is a Step that honours run options. Pipelines implement it, which is
// how an outer pipeline hands its row-removal policy to a nested one.
type Runner interface {
	Step
	FitWith(data *frame.Frame, opts RunOptions) (*frame.Frame, error)
	TransformWith(data *frame.Frame, opts RunOptions) (*frame.Frame, error)
}

// FitTransform fits step on data and then transforms the same data.
func FitTransform(step Step, data *frame.Frame, label string) (*frame.Frame, error) {
	if _, err := step.Fit(data, label); err != nil {
		return nil, err
	}
	return step.Transform(data, label)
}

// RunOptions controls a single fit or transform pass.
type RunOptions struct {
	// Label is the label column name. Empty means unlabeled data.
	Label string
	// AllowRowRemoval lets steps that change the row count run. Disable it
	// for evaluation or inference data.
	AllowRowRemoval bool
	// Verbose logs every step at Info level instead of Debug.
	Verbose bool
}

// DefaultRunOptions returns the options used by the plain Step methods:
// label "label", row removal allowed, not verbose.
func DefaultRunOptions() RunOptions {
	return RunOptions{Label: DefaultLabel, AllowRowRemoval: true}
}
