// Package outlier provides steps that drop anomalous rows. Rows are removed
// from the whole frame, so the label and any other column stay aligned and
// surviving rows keep their identities.
package outlier

import (
	"math"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/stats"
)

// moments holds per-feature location and spread learned at fit time.
type moments struct {
	names []string
	mean  []float64
	std   []float64
}

func fitMoments(feats *frame.Frame) moments {
	m := moments{names: feats.Names()}
	m.mean = make([]float64, len(m.names))
	m.std = make([]float64, len(m.names))
	for j, n := range m.names {
		col, _ := feats.Column(n)
		col = stats.DropNaN(col)
		m.mean[j] = stats.Mean(col)
		m.std[j] = stats.Std(col)
		if m.std[j] == 0 || math.IsNaN(m.std[j]) {
			m.std[j] = 1
		}
	}
	return m
}

// zscores returns, per row, the z-score of every fitted feature.
func (m moments) zscores(data *frame.Frame, label string) ([][]float64, error) {
	feats, _, _ := frame.SplitLabel(data, label)
	sel, err := feats.Select(m.names...)
	if err != nil {
		return nil, err
	}
	z := make([][]float64, sel.NumRows())
	for i := range z {
		row := sel.Row(i)
		for j, v := range row {
			row[j] = (v - m.mean[j]) / m.std[j]
		}
		z[i] = row
	}
	return z, nil
}
