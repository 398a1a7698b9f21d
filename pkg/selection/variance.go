package selection

import (
	"fmt"
	"slices"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
	"github.com/ryuk2git/dspipeline/pkg/stats"
)

type VarianceConfig struct {
	Threshold float64 `koanf:"threshold"`
}

// VarianceThreshold drops features whose fitted variance is not above the
// threshold. The zero threshold removes constant columns.
type VarianceThreshold struct {
	cfg VarianceConfig

	selected []string
	fitted   bool
}

func NewVarianceThreshold(cfg VarianceConfig) (*VarianceThreshold, error) {
	if cfg.Threshold < 0 {
		return nil, fmt.Errorf("%w: variance threshold must not be negative, got %g", pipeline.ErrInvalidConfig, cfg.Threshold)
	}
	return &VarianceThreshold{cfg: cfg}, nil
}

func (v *VarianceThreshold) Description() string {
	return fmt.Sprintf("Variance > %g", v.cfg.Threshold)
}

func (v *VarianceThreshold) ChangesRowCount() bool { return false }

func (v *VarianceThreshold) Selected() []string { return slices.Clone(v.selected) }

func (v *VarianceThreshold) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	feats, _, _ := frame.SplitLabel(data, label)
	v.selected = v.selected[:0]
	for _, n := range feats.Names() {
		col, _ := feats.Column(n)
		if stats.Variance(stats.DropNaN(col)) > v.cfg.Threshold {
			v.selected = append(v.selected, n)
		}
	}
	v.fitted = true
	return project(data, label, v.selected)
}

func (v *VarianceThreshold) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !v.fitted {
		return nil, pipeline.NotFitted(v)
	}
	return project(data, label, v.selected)
}
