// Package selection provides steps that keep a subset of the feature columns.
// Rows and the label column always pass through unchanged.
package selection

import (
	"github.com/ryuk2git/dspipeline/pkg/frame"
)

// project returns the named features of data followed by the label, when
// data has one.
func project(data *frame.Frame, label string, names []string) (*frame.Frame, error) {
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	feats, target, _ := frame.SplitLabel(data, label)
	out, err := feats.Select(names...)
	if err != nil {
		return nil, err
	}
	return frame.JoinLabel(out, label, target)
}
