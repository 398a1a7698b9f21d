package transform

import (
	"fmt"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
	"github.com/ryuk2git/dspipeline/pkg/stats"
)

// WinsorizeConfig holds the clipping percentiles, 0 <= Lower < Upper <= 100.
type WinsorizeConfig struct {
	Lower float64 `koanf:"lower"`
	Upper float64 `koanf:"upper"`
}

// Winsorize clips each feature to the percentiles seen at fit time. Unlike
// the outlier removers it keeps every row.
type Winsorize struct {
	cfg WinsorizeConfig

	names  []string
	lows   []float64
	highs  []float64
	fitted bool
}

func NewWinsorize(cfg WinsorizeConfig) (*Winsorize, error) {
	if cfg.Lower < 0 || cfg.Upper > 100 || cfg.Lower >= cfg.Upper {
		return nil, fmt.Errorf("%w: winsorize percentiles must satisfy 0 <= lower < upper <= 100, got %g and %g",
			pipeline.ErrInvalidConfig, cfg.Lower, cfg.Upper)
	}
	return &Winsorize{cfg: cfg}, nil
}

func (w *Winsorize) Description() string   { return "Winsorize" }
func (w *Winsorize) ChangesRowCount() bool { return false }

func (w *Winsorize) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	feats, _, err := input(data, label, nil)
	if err != nil {
		return nil, err
	}
	w.names = feats.Names()
	w.lows = make([]float64, len(w.names))
	w.highs = make([]float64, len(w.names))
	for j, col := range columns(feats, w.names) {
		col = stats.DropNaN(col)
		w.lows[j] = stats.Percentile(col, w.cfg.Lower)
		w.highs[j] = stats.Percentile(col, w.cfg.Upper)
	}
	w.fitted = true
	return w.Transform(data, label)
}

func (w *Winsorize) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !w.fitted {
		return nil, pipeline.NotFitted(w)
	}
	feats, target, err := input(data, label, w.names)
	if err != nil {
		return nil, err
	}
	cols := columns(feats, w.names)
	for j, col := range cols {
		for i, v := range col {
			switch {
			case v < w.lows[j]:
				col[i] = w.lows[j]
			case v > w.highs[j]:
				col[i] = w.highs[j]
			}
		}
	}
	return output(data, feats, w.names, cols, label, target, false, "")
}
