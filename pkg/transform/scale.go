package transform

import (
	"math"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
	"github.com/ryuk2git/dspipeline/pkg/stats"
)

type scaleKind int

const (
	standard scaleKind = iota
	minMax
	robust
)

// ScaleConfig configures the scalers.
type ScaleConfig struct {
	// Append keeps the input columns and adds the scaled ones with a
	// "_scaled" suffix.
	Append bool `koanf:"append"`
}

// Scaler maps each feature to (x - center) / scale with per-column
// parameters learned at fit time. Constant columns get scale 1.
type Scaler struct {
	kind scaleKind
	cfg  ScaleConfig

	names  []string
	center []float64
	scale  []float64
	fitted bool
}

// NewStandardScaler centers on the mean and divides by the population
// standard deviation.
func NewStandardScaler(cfg ScaleConfig) *Scaler { return &Scaler{kind: standard, cfg: cfg} }

// NewMinMaxScaler maps each column's fitted range onto [0, 1].
func NewMinMaxScaler(cfg ScaleConfig) *Scaler { return &Scaler{kind: minMax, cfg: cfg} }

// NewRobustScaler centers on the median and divides by the interquartile
// range.
func NewRobustScaler(cfg ScaleConfig) *Scaler { return &Scaler{kind: robust, cfg: cfg} }

func (s *Scaler) Description() string {
	switch s.kind {
	case minMax:
		return "Min-Max Scaler"
	case robust:
		return "Robust Scaler"
	default:
		return "Standard Scaler"
	}
}

func (s *Scaler) ChangesRowCount() bool { return false }

func (s *Scaler) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	feats, _, err := input(data, label, nil)
	if err != nil {
		return nil, err
	}
	s.names = feats.Names()
	s.center = make([]float64, len(s.names))
	s.scale = make([]float64, len(s.names))
	for j, col := range columns(feats, s.names) {
		col = stats.DropNaN(col)
		switch s.kind {
		case standard:
			s.center[j], s.scale[j] = stats.Mean(col), stats.Std(col)
		case minMax:
			lo, hi := stats.MinMax(col)
			s.center[j], s.scale[j] = lo, hi-lo
		case robust:
			s.center[j] = stats.Median(col)
			s.scale[j] = stats.Percentile(col, 75) - stats.Percentile(col, 25)
		}
		if s.scale[j] == 0 || math.IsNaN(s.scale[j]) {
			s.scale[j] = 1
		}
	}
	s.fitted = true
	return s.Transform(data, label)
}

func (s *Scaler) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !s.fitted {
		return nil, pipeline.NotFitted(s)
	}
	feats, target, err := input(data, label, s.names)
	if err != nil {
		return nil, err
	}
	cols := columns(feats, s.names)
	for j, col := range cols {
		for i, v := range col {
			col[i] = (v - s.center[j]) / s.scale[j]
		}
	}
	return output(data, feats, s.names, cols, label, target, s.cfg.Append, "_scaled")
}
