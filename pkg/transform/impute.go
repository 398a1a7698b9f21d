package transform

import (
	"fmt"
	"math"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
	"github.com/ryuk2git/dspipeline/pkg/stats"
)

// ImputeStrategy selects how Imputer computes fill values.
type ImputeStrategy string

const (
	ImputeMean     ImputeStrategy = "mean"
	ImputeMedian   ImputeStrategy = "median"
	ImputeConstant ImputeStrategy = "constant"
)

// ImputeConfig configures Imputer. Value is used by ImputeConstant.
type ImputeConfig struct {
	Strategy ImputeStrategy `koanf:"strategy"`
	Value    float64        `koanf:"value"`
}

// Imputer replaces NaN feature values with a per-column fill value learned
// at fit time. A column with no values at fit time is filled with 0.
type Imputer struct {
	cfg ImputeConfig

	names  []string
	fill   []float64
	fitted bool
}

func NewImputer(cfg ImputeConfig) (*Imputer, error) {
	switch cfg.Strategy {
	case "":
		cfg.Strategy = ImputeMean
	case ImputeMean, ImputeMedian, ImputeConstant:
	default:
		return nil, fmt.Errorf("%w: unknown impute strategy %q", pipeline.ErrInvalidConfig, cfg.Strategy)
	}
	return &Imputer{cfg: cfg}, nil
}

func (m *Imputer) Description() string   { return "Impute " + string(m.cfg.Strategy) }
func (m *Imputer) ChangesRowCount() bool { return false }

func (m *Imputer) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	feats, _, err := input(data, label, nil)
	if err != nil {
		return nil, err
	}
	m.names = feats.Names()
	m.fill = make([]float64, len(m.names))
	for j, col := range columns(feats, m.names) {
		col = stats.DropNaN(col)
		switch m.cfg.Strategy {
		case ImputeMean:
			m.fill[j] = stats.Mean(col)
		case ImputeMedian:
			m.fill[j] = stats.Median(col)
		case ImputeConstant:
			m.fill[j] = m.cfg.Value
		}
	}
	m.fitted = true
	return m.Transform(data, label)
}

func (m *Imputer) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !m.fitted {
		return nil, pipeline.NotFitted(m)
	}
	feats, target, err := input(data, label, m.names)
	if err != nil {
		return nil, err
	}
	cols := columns(feats, m.names)
	for j, col := range cols {
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = m.fill[j]
			}
		}
	}
	return output(data, feats, m.names, cols, label, target, false, "")
}
