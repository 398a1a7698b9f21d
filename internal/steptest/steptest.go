// Package steptest runs the checks every pipeline.Step implementation must
// pass.
package steptest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryuk2git/dspipeline/internal/testutil"
	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
)

// Case describes one step under test.
type Case struct {
	// New returns a fresh, unfitted step.
	New func() pipeline.Step
	// Train is labeled data used for fitting.
	Train *frame.Frame
	// Test is unlabeled data with the same features. Only used for steps
	// that keep the row count. May be nil.
	Test *frame.Frame
	// Label defaults to testutil.Label.
	Label string
}

// Run executes the contract checks as subtests.
func Run(t *testing.T, c Case) {
	t.Helper()
	if c.Label == "" {
		c.Label = testutil.Label
	}

	t.Run("attributes", func(t *testing.T) {
		s := c.New()
		assert.NotEmpty(t, s.Description())
		assert.Equal(t, s.ChangesRowCount(), c.New().ChangesRowCount())
	})

	t.Run("transform before fit", func(t *testing.T) {
		s := c.New()
		_, err := s.Transform(c.Train, c.Label)
		require.Error(t, err)
		assert.ErrorIs(t, err, pipeline.ErrNotFitted)
		var nfe *pipeline.NotFittedError
		assert.ErrorAs(t, err, &nfe)
		assert.Contains(t, err.Error(), "must fit before transforming")
	})

	t.Run("fit returns transform of train", func(t *testing.T) {
		s := c.New()
		before := testutil.Clone(t, c.Train)

		fitted, err := s.Fit(c.Train, c.Label)
		require.NoError(t, err)
		require.NotNil(t, fitted)
		assert.True(t, before.Equal(c.Train), "Fit modified its input")

		again, err := s.Transform(c.Train, c.Label)
		require.NoError(t, err)
		assert.True(t, fitted.Equal(again), "Fit output differs from Transform output")
		assert.True(t, before.Equal(c.Train), "Transform modified its input")
	})

	t.Run("idempotent transform", func(t *testing.T) {
		s := c.New()
		_, err := s.Fit(c.Train, c.Label)
		require.NoError(t, err)
		a, err := s.Transform(c.Train, c.Label)
		require.NoError(t, err)
		b, err := s.Transform(c.Train, c.Label)
		require.NoError(t, err)
		assert.True(t, a.Equal(b))
	})

	t.Run("row alignment", func(t *testing.T) {
		s := c.New()
		out, err := pipeline.FitTransform(s, c.Train, c.Label)
		require.NoError(t, err)

		if !s.ChangesRowCount() {
			assert.Equal(t, c.Train.Index(), out.Index())
		}
		if !out.Has(c.Label) {
			return
		}
		original := make(map[int]float64, c.Train.NumRows())
		for i, id := range c.Train.Index() {
			original[id] = c.Train.At(i, c.Label)
		}
		for i, id := range out.Index() {
			want, ok := original[id]
			if !ok {
				// synthetic row
				continue
			}
			assert.Equal(t, want, out.At(i, c.Label), "label misaligned for row %d", id)
		}
	})

	if c.Test != nil {
		t.Run("unlabeled test data", func(t *testing.T) {
			s := c.New()
			if s.ChangesRowCount() {
				t.Skip("row-changing steps are not applied to evaluation data")
			}
			_, err := s.Fit(c.Train, c.Label)
			require.NoError(t, err)
			out, err := s.Transform(c.Test, c.Label)
			require.NoError(t, err)
			assert.Equal(t, c.Test.NumRows(), out.NumRows())
			assert.False(t, out.Has(c.Label))
		})
	}
}
