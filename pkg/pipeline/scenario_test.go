package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryuk2git/dspipeline/internal/steptest"
	"github.com/ryuk2git/dspipeline/internal/testutil"
	"github.com/ryuk2git/dspipeline/pkg/augment"
	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/outlier"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
	"github.com/ryuk2git/dspipeline/pkg/selection"
	"github.com/ryuk2git/dspipeline/pkg/transform"
)

func scaleAndSelect(t *testing.T, k int) *pipeline.Pipeline {
	t.Helper()
	pearson, err := selection.NewPearson(selection.PearsonConfig{K: k})
	require.NoError(t, err)
	return pipeline.New([]pipeline.Step{
		transform.NewStandardScaler(transform.ScaleConfig{}),
		pearson,
	}, pipeline.WithLogger(testutil.NewTestLogger(t)))
}

func TestScaleThenSelectTopK(t *testing.T) {
	train := testutil.RandFrame(t, 1, 100, 10, true)
	p := scaleAndSelect(t, 5)

	out, err := p.Fit(train, testutil.Label)
	require.NoError(t, err)
	assert.Equal(t, 100, out.NumRows())
	assert.Equal(t, 6, out.NumCols())
	assert.Equal(t, testutil.Label, out.Names()[5])

	test := testutil.RandFrame(t, 2, 50, 10, false)
	out, err = p.Transform(test, testutil.Label)
	require.NoError(t, err)
	assert.Equal(t, 50, out.NumRows())
	assert.Equal(t, 5, out.NumCols())
}

func TestOutlierRemovalScenario(t *testing.T) {
	train := testutil.RandFrame(t, 3, 100, 10, true)
	d, err := outlier.NewDistance(outlier.DistanceConfig{Remove: 3})
	require.NoError(t, err)
	p := pipeline.New([]pipeline.Step{d})

	out, err := p.Fit(train, testutil.Label)
	require.NoError(t, err)
	assert.Equal(t, 97, out.NumRows())

	eval := testutil.RandFrame(t, 4, 20, 10, false)
	opts := pipeline.DefaultRunOptions()
	opts.AllowRowRemoval = false
	out, err = p.TransformWith(eval, opts)
	require.NoError(t, err)
	assert.Equal(t, 20, out.NumRows())

	opts.AllowRowRemoval = true
	out, err = p.TransformWith(train, opts)
	require.NoError(t, err)
	assert.Equal(t, 97, out.NumRows())

	opts.AllowRowRemoval = false
	out, err = p.TransformWith(train, opts)
	require.NoError(t, err)
	assert.True(t, train.Equal(out))
}

func TestFailedAppendMergeLeavesPipelineUnfitted(t *testing.T) {
	over, err := augment.NewOversampler(augment.OversampleConfig{Seed: 1})
	require.NoError(t, err)
	p := pipeline.New([]pipeline.Step{over}, pipeline.WithAppendInput(true))

	_, err = p.Fit(testutil.ClassFrame(t, 8, 2, 10, 4), testutil.Label)
	var ae *frame.AlignmentError
	require.ErrorAs(t, err, &ae)
	assert.Len(t, ae.Unknown, 6)
	assert.False(t, p.Fitted())

	_, err = p.Transform(testutil.RandFrame(t, 9, 5, 2, false), testutil.Label)
	assert.ErrorIs(t, err, pipeline.ErrNotFitted)
}

func TestAppendKeepsLabelAlignedAfterOutlierRemoval(t *testing.T) {
	train := testutil.WithOutliers(t, testutil.RandFrame(t, 5, 60, 4, true), 2, testutil.Label)
	d, err := outlier.NewDistance(outlier.DistanceConfig{Remove: 2})
	require.NoError(t, err)
	p := pipeline.New([]pipeline.Step{
		d,
		transform.NewStandardScaler(transform.ScaleConfig{}),
	}, pipeline.WithAppendInput(true))

	out, err := p.Fit(train, testutil.Label)
	require.NoError(t, err)
	assert.Equal(t, 58, out.NumRows())
	assert.Equal(t, 9, out.NumCols())
	assert.NotContains(t, out.Index(), 0)
	for i, id := range out.Index() {
		assert.Equal(t, train.At(id, testutil.Label), out.At(i, testutil.Label))
		assert.Equal(t, train.At(id, "0"), out.At(i, "0"))
	}
}

func TestPipelineSatisfiesStepContract(t *testing.T) {
	steptest.Run(t, steptest.Case{
		New:   func() pipeline.Step { return scaleAndSelect(t, 3) },
		Train: testutil.LinearFrame(t, 6, 80, 6),
		Test:  testutil.RandFrame(t, 7, 20, 6, false),
	})
}
