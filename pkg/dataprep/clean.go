// Package dataprep provides the cleaning steps usually placed at the head of
// a pipeline.
package dataprep

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
)

// CleanConfig configures NewCleaner.
type CleanConfig struct {
	// MaxMissing drops features whose share of missing values at fit time
	// is above this ratio. Zero keeps every feature.
	MaxMissing float64 `koanf:"max_missing"`
	// DropMissingRows drops rows with a missing value in a kept feature.
	DropMissingRows bool `koanf:"drop_missing_rows"`
	// DropDuplicates drops rows equal to an earlier row, label included.
	DropDuplicates bool `koanf:"drop_duplicates"`
}

// NewCleaner returns a pipeline of a ColumnCleaner followed, when a row
// option is set, by a RowCleaner. Column removal always runs; row removal is
// gated by the run's AllowRowRemoval like any other row-changing step.
func NewCleaner(cfg CleanConfig, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	cols, err := NewColumnCleaner(cfg)
	if err != nil {
		return nil, err
	}
	steps := []pipeline.Step{cols}
	if cfg.DropMissingRows || cfg.DropDuplicates {
		steps = append(steps, NewRowCleaner(cfg))
	}
	opts = append([]pipeline.Option{pipeline.WithDescription("Clean")}, opts...)
	return pipeline.New(steps, opts...), nil
}

// ColumnCleaner drops features that were too sparse at fit time. It never
// changes the row count.
type ColumnCleaner struct {
	maxMissing float64

	names  []string
	fitted bool
}

func NewColumnCleaner(cfg CleanConfig) (*ColumnCleaner, error) {
	if cfg.MaxMissing < 0 || cfg.MaxMissing > 1 {
		return nil, fmt.Errorf("%w: max_missing must be within [0, 1], got %g", pipeline.ErrInvalidConfig, cfg.MaxMissing)
	}
	return &ColumnCleaner{maxMissing: cfg.MaxMissing}, nil
}

func (c *ColumnCleaner) Description() string   { return "Drop sparse columns" }
func (c *ColumnCleaner) ChangesRowCount() bool { return false }

// Features returns the features kept by the last Fit.
func (c *ColumnCleaner) Features() []string { return append([]string(nil), c.names...) }

func (c *ColumnCleaner) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	feats, _, _ := frame.SplitLabel(data, label)
	c.names = c.names[:0]
	for _, n := range feats.Names() {
		if c.maxMissing > 0 && feats.NumRows() > 0 {
			col, _ := feats.Column(n)
			missing := 0
			for _, v := range col {
				if math.IsNaN(v) {
					missing++
				}
			}
			if float64(missing)/float64(len(col)) > c.maxMissing {
				continue
			}
		}
		c.names = append(c.names, n)
	}
	c.fitted = true
	return c.Transform(data, label)
}

func (c *ColumnCleaner) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !c.fitted {
		return nil, pipeline.NotFitted(c)
	}
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	feats, target, _ := frame.SplitLabel(data, label)
	kept, err := feats.Select(c.names...)
	if err != nil {
		return nil, err
	}
	return frame.JoinLabel(kept, label, target)
}

// RowCleaner drops rows with a missing feature value and rows repeating an
// earlier row. Features are those seen at fit time; the whole frame is
// filtered so every column stays aligned.
type RowCleaner struct {
	dropMissing    bool
	dropDuplicates bool

	names  []string
	fitted bool
}

func NewRowCleaner(cfg CleanConfig) *RowCleaner {
	return &RowCleaner{dropMissing: cfg.DropMissingRows, dropDuplicates: cfg.DropDuplicates}
}

func (r *RowCleaner) Description() string   { return "Drop incomplete and duplicate rows" }
func (r *RowCleaner) ChangesRowCount() bool { return true }

func (r *RowCleaner) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	feats, _, _ := frame.SplitLabel(data, label)
	r.names = feats.Names()
	r.fitted = true
	return r.Transform(data, label)
}

func (r *RowCleaner) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !r.fitted {
		return nil, pipeline.NotFitted(r)
	}
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	feats, target, _ := frame.SplitLabel(data, label)
	sel, err := feats.Select(r.names...)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	return data.Filter(func(i int) bool {
		row := sel.Row(i)
		if r.dropMissing {
			for _, v := range row {
				if math.IsNaN(v) {
					return false
				}
			}
		}
		if r.dropDuplicates {
			if target != nil {
				row = append(row, target[i])
			}
			key := rowKey(row)
			if _, dup := seen[key]; dup {
				return false
			}
			seen[key] = struct{}{}
		}
		return true
	}), nil
}

// rowKey encodes values so that equal rows share a key; -0 and 0 are equal.
func rowKey(row []float64) string {
	var b strings.Builder
	for _, v := range row {
		if v == 0 {
			v = 0
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte(',')
	}
	return b.String()
}
