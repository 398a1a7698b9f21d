package transform

import (
	"math"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
)

// ElementwiseConfig configures Sin.
type ElementwiseConfig struct {
	// Columns restricts the step to these features. Empty means all.
	Columns []string `koanf:"columns"`
	// Append keeps the input columns next to the derived ones.
	Append bool `koanf:"append"`
}

// LogConfig configures Log.
type LogConfig struct {
	Columns []string `koanf:"columns"`
	Append  bool     `koanf:"append"`
	// Plus1 computes log(1+x) instead of log(x).
	Plus1 bool `koanf:"plus1"`
}

// Elementwise applies a scalar function to every value of the selected
// columns. Output columns are named prefix+column.
type Elementwise struct {
	description string
	prefix      string
	fn          func(float64) float64
	cfg         ElementwiseConfig

	names  []string
	fitted bool
}

func NewSin(cfg ElementwiseConfig) *Elementwise {
	return &Elementwise{description: "Sine", prefix: "sin_", fn: math.Sin, cfg: cfg}
}

func NewLog(cfg LogConfig) *Elementwise {
	fn := math.Log
	if cfg.Plus1 {
		fn = math.Log1p
	}
	return &Elementwise{
		description: "Log",
		prefix:      "log_",
		fn:          fn,
		cfg:         ElementwiseConfig{Columns: cfg.Columns, Append: cfg.Append},
	}
}

func (e *Elementwise) Description() string   { return e.description }
func (e *Elementwise) ChangesRowCount() bool { return false }

func (e *Elementwise) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	var names []string
	if len(e.cfg.Columns) > 0 {
		names = e.cfg.Columns
	}
	feats, _, err := input(data, label, names)
	if err != nil {
		return nil, err
	}
	e.names = feats.Names()
	e.fitted = true
	return e.Transform(data, label)
}

func (e *Elementwise) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !e.fitted {
		return nil, pipeline.NotFitted(e)
	}
	feats, target, err := input(data, label, e.names)
	if err != nil {
		return nil, err
	}
	cols := columns(feats, e.names)
	names := make([]string, len(e.names))
	for j, col := range cols {
		names[j] = e.prefix + e.names[j]
		for i, v := range col {
			col[i] = e.fn(v)
		}
	}
	return output(data, feats, names, cols, label, target, e.cfg.Append, "_"+e.prefix)
}
