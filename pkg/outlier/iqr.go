package outlier

import (
	"fmt"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
	"github.com/ryuk2git/dspipeline/pkg/stats"
)

// IQRConfig holds the Tukey fence multiplier. Zero means 1.5.
type IQRConfig struct {
	Factor float64 `koanf:"factor"`
}

// IQR drops rows with any feature outside [Q1 - f*IQR, Q3 + f*IQR], with the
// quartiles taken from the fit data. Missing values never trigger removal.
type IQR struct {
	cfg IQRConfig

	names  []string
	lows   []float64
	highs  []float64
	fitted bool
}

func NewIQR(cfg IQRConfig) (*IQR, error) {
	if cfg.Factor == 0 {
		cfg.Factor = 1.5
	}
	if cfg.Factor < 0 {
		return nil, fmt.Errorf("%w: iqr factor must be positive, got %g", pipeline.ErrInvalidConfig, cfg.Factor)
	}
	return &IQR{cfg: cfg}, nil
}

func (q *IQR) Description() string   { return "IQR Outlier Removal" }
func (q *IQR) ChangesRowCount() bool { return true }

func (q *IQR) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	feats, _, _ := frame.SplitLabel(data, label)
	q.names = feats.Names()
	q.lows = make([]float64, len(q.names))
	q.highs = make([]float64, len(q.names))
	for j, n := range q.names {
		col, _ := feats.Column(n)
		col = stats.DropNaN(col)
		q1, q3 := stats.Percentile(col, 25), stats.Percentile(col, 75)
		spread := q3 - q1
		q.lows[j] = q1 - q.cfg.Factor*spread
		q.highs[j] = q3 + q.cfg.Factor*spread
	}
	q.fitted = true
	return q.Transform(data, label)
}

func (q *IQR) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !q.fitted {
		return nil, pipeline.NotFitted(q)
	}
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	feats, _, _ := frame.SplitLabel(data, label)
	sel, err := feats.Select(q.names...)
	if err != nil {
		return nil, err
	}
	return data.Filter(func(i int) bool {
		for j, v := range sel.Row(i) {
			if v < q.lows[j] || v > q.highs[j] {
				return false
			}
		}
		return true
	}), nil
}
