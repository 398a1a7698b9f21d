package pipeline

import "github.com/ryuk2git/dspipeline/pkg/frame"

// Empty is a step that passes data through untouched.
type Empty struct {
	fitted bool
}

// NewEmpty returns an unfitted Empty step.
func NewEmpty() *Empty { return &Empty{} }

func (e *Empty) Description() string   { return "Empty Step" }
func (e *Empty) ChangesRowCount() bool { return false }

func (e *Empty) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	e.fitted = true
	return e.Transform(data, label)
}

// Transform returns data itself; frames are immutable so sharing is safe.
func (e *Empty) Transform(data *frame.Frame, _ string) (*frame.Frame, error) {
	if !e.fitted {
		return nil, NotFitted(e)
	}
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	return data, nil
}
