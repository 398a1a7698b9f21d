package dataprep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryuk2git/dspipeline/internal/steptest"
	"github.com/ryuk2git/dspipeline/internal/testutil"
	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
)

func sample(t *testing.T) *frame.Frame {
	t.Helper()
	nan := math.NaN()
	f, err := frame.FromRows([]string{"a", "sparse", "b", "label"}, [][]float64{
		{1, nan, 10, 0},
		{2, nan, nan, 1},
		{1, 5, 10, 0},
		{3, nan, 30, 1},
	})
	require.NoError(t, err)
	return f
}

func TestStepContracts(t *testing.T) {
	train := testutil.RandFrame(t, 1, 50, 4, true)
	test := testutil.RandFrame(t, 2, 20, 4, false)
	cases := map[string]func() pipeline.Step{
		"columns": func() pipeline.Step {
			c, _ := NewColumnCleaner(CleanConfig{MaxMissing: 0.5})
			return c
		},
		"rows": func() pipeline.Step {
			return NewRowCleaner(CleanConfig{DropMissingRows: true, DropDuplicates: true})
		},
		"cleaner": func() pipeline.Step {
			c, _ := NewCleaner(CleanConfig{MaxMissing: 0.5, DropDuplicates: true})
			return c
		},
	}
	for name, newStep := range cases {
		t.Run(name, func(t *testing.T) {
			steptest.Run(t, steptest.Case{New: newStep, Train: train, Test: test})
		})
	}
}

func TestColumnCleanerDropsSparseColumns(t *testing.T) {
	c, err := NewColumnCleaner(CleanConfig{MaxMissing: 0.5})
	require.NoError(t, err)
	assert.False(t, c.ChangesRowCount())

	out, err := c.Fit(sample(t), "label")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "label"}, out.Names())
	assert.Equal(t, []string{"a", "b"}, c.Features())
	assert.Equal(t, 4, out.NumRows())
}

func TestCleanerDropsRows(t *testing.T) {
	c, err := NewCleaner(CleanConfig{MaxMissing: 0.5, DropMissingRows: true, DropDuplicates: true})
	require.NoError(t, err)
	assert.Len(t, c.Steps(), 2)

	out, err := c.Fit(sample(t), "label")
	require.NoError(t, err)
	// Row 1 has a missing b, row 2 repeats row 0 once sparse is gone.
	assert.Equal(t, []int{0, 3}, out.Index())
	assert.Equal(t, []string{"a", "b", "label"}, out.Names())
}

func TestCleanerKeepsColumnsWhenRowRemovalIsOff(t *testing.T) {
	c, err := NewCleaner(CleanConfig{MaxMissing: 0.5, DropMissingRows: true})
	require.NoError(t, err)
	p := pipeline.New([]pipeline.Step{c})

	train, err := p.Fit(sample(t), "label")
	require.NoError(t, err)

	eval := sample(t).Drop("label")
	opts := pipeline.DefaultRunOptions()
	opts.AllowRowRemoval = false
	out, err := p.TransformWith(eval, opts)
	require.NoError(t, err)

	assert.Equal(t, train.Drop("label").Names(), out.Names())
	assert.Equal(t, eval.NumRows(), out.NumRows())
}

func TestRowCleanerTreatsSignedZerosAsEqual(t *testing.T) {
	f, err := frame.FromRows([]string{"x", "label"}, [][]float64{
		{0, 1},
		{math.Copysign(0, -1), 1},
		{0, 2},
	})
	require.NoError(t, err)

	r := NewRowCleaner(CleanConfig{DropDuplicates: true})
	out, err := r.Fit(f, "label")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, out.Index())
}

func TestCleanerConfig(t *testing.T) {
	_, err := NewCleaner(CleanConfig{MaxMissing: 1.5})
	assert.ErrorIs(t, err, pipeline.ErrInvalidConfig)

	c, err := NewCleaner(CleanConfig{MaxMissing: 0.2})
	require.NoError(t, err)
	assert.Len(t, c.Steps(), 1)
	assert.Equal(t, "Clean", c.Description())
}
