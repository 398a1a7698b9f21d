package selection

import (
	"fmt"
	"slices"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
)

// ListConfig names the features to keep, in output order.
type ListConfig struct {
	Features []string `koanf:"features"`
}

// List keeps a fixed set of features.
type List struct {
	features []string
	fitted   bool
}

func NewList(cfg ListConfig) (*List, error) {
	if len(cfg.Features) == 0 {
		return nil, fmt.Errorf("%w: feature list is empty", pipeline.ErrInvalidConfig)
	}
	return &List{features: slices.Clone(cfg.Features)}, nil
}

func (l *List) Description() string {
	return fmt.Sprintf("Select features: %v", l.features)
}

func (l *List) ChangesRowCount() bool { return false }

// Features returns the kept feature names.
func (l *List) Features() []string { return slices.Clone(l.features) }

func (l *List) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	out, err := project(data, label, l.features)
	if err != nil {
		return nil, err
	}
	l.fitted = true
	return out, nil
}

func (l *List) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !l.fitted {
		return nil, pipeline.NotFitted(l)
	}
	return project(data, label, l.features)
}
