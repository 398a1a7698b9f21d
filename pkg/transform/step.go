// Package transform provides steps that rewrite feature columns without
// changing the number of rows: scalers, projections and feature expansion.
package transform

import (
	"github.com/ryuk2git/dspipeline/pkg/frame"
)

// input splits data into its feature columns and label. When names is not
// nil the features are restricted to names, in that order.
func input(data *frame.Frame, label string, names []string) (*frame.Frame, []float64, error) {
	if err := frame.Check(data); err != nil {
		return nil, nil, err
	}
	feats, target, _ := frame.SplitLabel(data, label)
	if names == nil {
		return feats, target, nil
	}
	feats, err := feats.Select(names...)
	if err != nil {
		return nil, nil, err
	}
	return feats, target, nil
}

// output builds a step result from derived columns that line up with feats.
// In append mode the derived columns are merged onto the full input.
func output(data, feats *frame.Frame, names []string, cols [][]float64, label string, target []float64, appendInput bool, suffix string) (*frame.Frame, error) {
	derived, err := frame.Derive(feats, names, cols)
	if err != nil {
		return nil, err
	}
	derived, err = frame.JoinLabel(derived, label, target)
	if err != nil {
		return nil, err
	}
	if appendInput {
		return frame.Merge(data, derived, label, suffix)
	}
	return derived, nil
}

// columns returns the named columns of f; every name must exist.
func columns(f *frame.Frame, names []string) [][]float64 {
	cols := make([][]float64, len(names))
	for j, n := range names {
		cols[j], _ = f.Column(n)
	}
	return cols
}
