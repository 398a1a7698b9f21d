package pipeline

import (
	"errors"

	"github.com/ryuk2git/dspipeline/pkg/frame"
)

// ErrInvalidConfig is wrapped by step constructors that reject their
// configuration.
var ErrInvalidConfig = errors.New("invalid step configuration")

// ErrNotFitted matches every *NotFittedError.
var ErrNotFitted = errors.New("must fit before transforming")

// NotFittedError is returned when a step or pipeline is asked to transform
// before it has been fitted.
type NotFittedError struct {
	Step string
}

func (e *NotFittedError) Error() string {
	if e.Step == "" {
		return ErrNotFitted.Error()
	}
	return e.Step + ": " + ErrNotFitted.Error()
}

func (e *NotFittedError) Is(target error) bool { return target == ErrNotFitted }

// NotFitted returns the error a step reports from Transform before Fit.
func NotFitted(s Step) error {
	return &NotFittedError{Step: s.Description()}
}

// Aliases so callers handling pipeline errors need only this package.
type (
	MissingFeatureError = frame.MissingFeatureError
	AlignmentError      = frame.AlignmentError
)

var (
	ErrNotTable      = frame.ErrNotTable
	ErrLabelRequired = frame.ErrLabelRequired
)
