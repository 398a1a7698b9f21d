package pipeline

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryuk2git/dspipeline/internal/testutil"
	"github.com/ryuk2git/dspipeline/pkg/frame"
)

// shift adds a constant, learned as the first feature's first value, to every
// feature.
type shift struct {
	by     float64
	fitted bool
}

func (s *shift) Description() string   { return "shift" }
func (s *shift) ChangesRowCount() bool { return false }

func (s *shift) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	feats, _, _ := frame.SplitLabel(data, label)
	s.by = feats.At(0, feats.Names()[0])
	s.fitted = true
	return s.Transform(data, label)
}

func (s *shift) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !s.fitted {
		return nil, NotFitted(s)
	}
	feats, target, _ := frame.SplitLabel(data, label)
	names := feats.Names()
	cols := make([][]float64, len(names))
	for j, n := range names {
		cols[j], _ = feats.Column(n)
		for i := range cols[j] {
			cols[j][i] += s.by
		}
	}
	out, err := frame.Derive(feats, names, cols)
	if err != nil {
		return nil, err
	}
	return frame.JoinLabel(out, label, target)
}

// dropEven removes rows at even positions.
type dropEven struct{ fitted bool }

func (d *dropEven) Description() string   { return "drop even rows" }
func (d *dropEven) ChangesRowCount() bool { return true }

func (d *dropEven) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	d.fitted = true
	return d.Transform(data, label)
}

func (d *dropEven) Transform(data *frame.Frame, _ string) (*frame.Frame, error) {
	if !d.fitted {
		return nil, NotFitted(d)
	}
	return data.Filter(func(i int) bool { return i%2 == 1 }), nil
}

var errBoom = errors.New("boom")

type failing struct{ onTransform bool }

func (f *failing) Description() string   { return "failing" }
func (f *failing) ChangesRowCount() bool { return false }

func (f *failing) Fit(data *frame.Frame, _ string) (*frame.Frame, error) {
	if f.onTransform {
		return data, nil
	}
	return nil, errBoom
}

func (f *failing) Transform(*frame.Frame, string) (*frame.Frame, error) { return nil, errBoom }

func TestTransformBeforeFit(t *testing.T) {
	p := New([]Step{&shift{}})
	_, err := p.Transform(testutil.RandFrame(t, 1, 5, 2, true), DefaultLabel)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFitted)
	assert.Contains(t, err.Error(), "must fit before transforming")
	assert.False(t, p.Fitted())
}

func TestDescription(t *testing.T) {
	p := New([]Step{&shift{}, NewEmpty()})
	assert.Equal(t, "Pipeline[shift -> Empty Step]", p.Description())
	assert.False(t, p.ChangesRowCount())
	assert.Len(t, p.Steps(), 2)

	assert.Equal(t, "custom", New(nil, WithDescription("custom")).Description())
}

func TestEmptyPipelineIsIdentity(t *testing.T) {
	f := testutil.RandFrame(t, 2, 10, 3, true)
	p := New(nil)
	out, err := p.Fit(f, DefaultLabel)
	require.NoError(t, err)
	assert.True(t, f.Equal(out))

	_, err = p.FitWith(nil, DefaultRunOptions())
	assert.ErrorIs(t, err, ErrNotTable)
}

func TestRowRemovalGating(t *testing.T) {
	f := testutil.RandFrame(t, 3, 10, 2, true)
	p := New([]Step{&dropEven{}, &shift{}})

	fitted, err := p.FitWith(f, RunOptions{Label: DefaultLabel, AllowRowRemoval: false})
	require.NoError(t, err)
	assert.Equal(t, 5, fitted.NumRows(), "fitting always runs row-changing steps")

	kept, err := p.TransformWith(f, RunOptions{Label: DefaultLabel})
	require.NoError(t, err)
	assert.Equal(t, 10, kept.NumRows())
	assert.Equal(t, f.Index(), kept.Index())

	removed, err := p.TransformWith(f, RunOptions{Label: DefaultLabel, AllowRowRemoval: true})
	require.NoError(t, err)
	if diff := cmp.Diff([]int{1, 3, 5, 7, 9}, removed.Index()); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendInput(t *testing.T) {
	f := testutil.RandFrame(t, 4, 8, 2, true)
	p := New([]Step{&shift{}}, WithAppendInput(true))
	out, err := p.Fit(f, DefaultLabel)
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1", "0_derived", "1_derived", DefaultLabel}, out.Names())
	assert.Equal(t, f.NumCols()*2-1, out.NumCols())
	by := f.At(0, "0")
	for i := range f.NumRows() {
		assert.Equal(t, f.At(i, "1"), out.At(i, "1"))
		assert.InDelta(t, f.At(i, "1")+by, out.At(i, "1_derived"), 1e-12)
		assert.Equal(t, f.At(i, DefaultLabel), out.At(i, DefaultLabel))
	}

	p = New([]Step{&shift{}}, WithAppendInput(true), WithAppendSuffix("_s"))
	out, err = p.Fit(f, DefaultLabel)
	require.NoError(t, err)
	assert.Contains(t, out.Names(), "0_s")
}

func TestAppendInputAfterRowRemoval(t *testing.T) {
	f := testutil.RandFrame(t, 5, 10, 2, true)
	p := New([]Step{&dropEven{}, &shift{}}, WithAppendInput(true))
	out, err := p.Fit(f, DefaultLabel)
	require.NoError(t, err)

	require.Equal(t, 5, out.NumRows())
	for i, id := range out.Index() {
		assert.Equal(t, f.At(id, "0"), out.At(i, "0"), "row %d joined by position", id)
		assert.Equal(t, f.At(id, DefaultLabel), out.At(i, DefaultLabel))
	}
}

func TestNestingEqualsSplicing(t *testing.T) {
	f := testutil.RandFrame(t, 6, 12, 3, true)
	eval := testutil.RandFrame(t, 7, 6, 3, false)

	flat := New([]Step{&shift{}, &dropEven{}, &shift{}})
	nested := New([]Step{&shift{}, New([]Step{&dropEven{}, &shift{}})})

	for _, opts := range []RunOptions{
		DefaultRunOptions(),
		{Label: DefaultLabel, AllowRowRemoval: false},
	} {
		a, err := flat.FitTransform(f, opts)
		require.NoError(t, err)
		b, err := nested.FitTransform(f, opts)
		require.NoError(t, err)
		assert.True(t, a.Equal(b), "fit transform differs for %+v", opts)

		a, err = flat.TransformWith(eval, opts)
		require.NoError(t, err)
		b, err = nested.TransformWith(eval, opts)
		require.NoError(t, err)
		assert.True(t, a.Equal(b), "transform differs for %+v", opts)
	}
}

func TestErrorsPropagateUnwrapped(t *testing.T) {
	f := testutil.RandFrame(t, 8, 4, 2, true)

	first := &shift{}
	p := New([]Step{first, &failing{}})
	out, err := p.Fit(f, DefaultLabel)
	assert.Nil(t, out)
	assert.Same(t, errBoom, err)
	assert.False(t, p.Fitted())
	assert.True(t, first.fitted)

	p = New([]Step{&failing{onTransform: true}})
	_, err = p.Fit(f, DefaultLabel)
	require.NoError(t, err)
	_, err = p.Transform(f, DefaultLabel)
	assert.Same(t, errBoom, err)
}

func TestVerboseLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	f := testutil.RandFrame(t, 9, 4, 2, true)

	p := New([]Step{&shift{}}, WithLogger(logger))
	_, err := p.FitWith(f, DefaultRunOptions())
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "quiet runs log at debug level")

	opts := DefaultRunOptions()
	opts.Verbose = true
	_, err = p.FitWith(f, opts)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "fitting step")
	assert.Contains(t, buf.String(), "step=shift")

	buf.Reset()
	_, err = New([]Step{&dropEven{}}, WithLogger(logger)).FitTransform(f, RunOptions{Label: DefaultLabel, Verbose: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "skipping row-changing step")
}

func TestDebugLoggingThroughTestLogger(t *testing.T) {
	p := New([]Step{&shift{}, NewEmpty()}, WithLogger(testutil.NewTestLogger(t)))
	_, err := p.FitTransform(testutil.RandFrame(t, 10, 4, 2, true), DefaultRunOptions())
	require.NoError(t, err)
}

func TestEmptyStep(t *testing.T) {
	e := NewEmpty()
	f := testutil.RandFrame(t, 11, 3, 2, true)
	_, err := e.Transform(f, DefaultLabel)
	assert.ErrorIs(t, err, ErrNotFitted)

	out, err := e.Fit(f, DefaultLabel)
	require.NoError(t, err)
	assert.Same(t, f, out)
}

func TestFitTransformHelper(t *testing.T) {
	f := testutil.RandFrame(t, 12, 6, 2, true)
	s := &shift{}
	out, err := FitTransform(s, f, DefaultLabel)
	require.NoError(t, err)
	assert.Equal(t, f.Index(), out.Index())

	_, err = FitTransform(&failing{}, f, DefaultLabel)
	assert.Same(t, errBoom, err)
}
