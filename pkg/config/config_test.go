package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryuk2git/dspipeline/internal/testutil"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
	"github.com/ryuk2git/dspipeline/pkg/selection"
	"github.com/ryuk2git/dspipeline/pkg/transform"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultRunOptions(), cfg.RunOptions())
	assert.Empty(t, cfg.Pipeline.Steps)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "pipeline.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "target", cfg.Label)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.AllowRowRemoval, "defaults survive when the file does not set a key")
	assert.Equal(t, "preprocessing", cfg.Pipeline.Description)
	require.Len(t, cfg.Pipeline.Steps, 3)
	assert.Equal(t, "impute", cfg.Pipeline.Steps[0].Kind)
	assert.Equal(t, "median", cfg.Pipeline.Steps[0].Params["strategy"])
	require.Len(t, cfg.Pipeline.Steps[2].Steps, 2)
	assert.Equal(t, "pearson", cfg.Pipeline.Steps[2].Steps[1].Kind)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dsp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("label: from_file\nverbose: false\nallow_row_removal: true\n"), 0o600))

	t.Setenv("DSP_LABEL", "from_env")
	t.Setenv("DSP_VERBOSE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Label)
	assert.True(t, cfg.Verbose)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--label", "from_flag", "--allow-row-removal=false"}))

	cfg, err = LoadWithFlags(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "from_flag", cfg.Label)
	assert.False(t, cfg.AllowRowRemoval)
	assert.True(t, cfg.Verbose, "unset flags must not override env")
}

func TestBuildFromFile(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "pipeline.yaml"))
	require.NoError(t, err)

	p, err := cfg.Build(testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "preprocessing", p.Description())

	steps := p.Steps()
	require.Len(t, steps, 3)
	assert.True(t, steps[1].ChangesRowCount())
	nested, ok := steps[2].(*pipeline.Pipeline)
	require.True(t, ok)
	inner := nested.Steps()
	assert.IsType(t, &transform.Scaler{}, inner[0])
	assert.IsType(t, &selection.Pearson{}, inner[1])

	train := testutil.LinearFrame(t, 1, 400, 4)
	train, err = train.Rename(map[string]string{testutil.Label: "target"})
	require.NoError(t, err)

	out, err := p.FitTransform(train, cfg.RunOptions())
	require.NoError(t, err)
	assert.Equal(t, 398, out.NumRows())
	assert.Equal(t, []string{"2", "3", "target"}, out.Names())
}

func TestBuildErrors(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "unknown_kind.yaml"))
	require.NoError(t, err)
	_, err = cfg.Build(nil)
	var uke *UnknownKindError
	require.ErrorAs(t, err, &uke)
	assert.Equal(t, "lasso", uke.Kind)
	assert.Contains(t, uke.Available, KindPearson)

	cfg, err = Load(filepath.Join("testdata", "bad_param.yaml"))
	require.NoError(t, err)
	_, err = cfg.Build(nil)
	assert.ErrorIs(t, err, pipeline.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "threshhold")

	_, err = Build(StepSpec{Kind: KindPearson, Params: map[string]any{"k": 1, "threshold": 0.5}})
	assert.ErrorIs(t, err, pipeline.ErrInvalidConfig)

	_, err = Build(StepSpec{Kind: KindEmpty, Steps: []StepSpec{{Kind: KindEmpty}}})
	assert.NoError(t, err, "empty ignores nested steps")

	_, err = Build(StepSpec{Kind: KindSin, Steps: []StepSpec{{Kind: KindEmpty}}})
	assert.ErrorIs(t, err, pipeline.ErrInvalidConfig)

	root := Config{Pipeline: StepSpec{Kind: KindPCA}}
	_, err = root.Build(nil)
	assert.ErrorIs(t, err, pipeline.ErrInvalidConfig)
}

func TestBuildEveryKind(t *testing.T) {
	params := map[string]map[string]any{
		KindClean:             {"max_missing": 0.5, "drop_duplicates": true},
		KindPCA:               {"components": 2},
		KindPoly:              {"degree": 2, "interaction_only": true},
		KindSin:               {"columns": []any{"0"}},
		KindLog:               {"plus1": true, "append": true},
		KindWinsorize:         {"lower": 1, "upper": 99},
		KindImpute:            {"strategy": "constant", "value": "0.5"},
		KindSelect:            {"features": "0,1"},
		KindPearson:           {"threshold": 0.1},
		KindVarianceThreshold: {"threshold": 0},
		KindDistanceOutlier:   {"max_z": 3},
		KindIQROutlier:        {"factor": 3},
		KindOversample:        {"seed": 1, "strategy": "interpolate", "neighbors": 3},
	}
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			step, err := Build(StepSpec{Kind: kind, Params: params[kind]})
			require.NoError(t, err)
			assert.NotEmpty(t, step.Description())
		})
	}

	step, err := Build(StepSpec{Kind: KindSelect, Params: params[KindSelect]})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, step.(*selection.List).Features())

	step, err = Build(StepSpec{Kind: KindClean, Params: params[KindClean]})
	require.NoError(t, err)
	clean, ok := step.(*pipeline.Pipeline)
	require.True(t, ok)
	require.Len(t, clean.Steps(), 2)
	assert.False(t, clean.Steps()[0].ChangesRowCount())
	assert.True(t, clean.Steps()[1].ChangesRowCount())
}

func TestRegisterCustomKind(t *testing.T) {
	Register("Identity", func(StepSpec, *Builder) (pipeline.Step, error) {
		return pipeline.NewEmpty(), nil
	})
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, "identity")
		registryMu.Unlock()
	})

	step, err := Build(StepSpec{Kind: "IDENTITY"})
	require.NoError(t, err)
	f := testutil.RandFrame(t, 2, 3, 1, false)
	out, err := pipeline.FitTransform(step, f, "")
	require.NoError(t, err)
	assert.True(t, f.Equal(out))
	assert.Contains(t, Kinds(), "identity")
}

func TestDecodeWeakTypes(t *testing.T) {
	var cfg transform.ImputeConfig
	require.NoError(t, Decode(map[string]any{"strategy": "constant", "value": "2.5"}, &cfg))
	assert.Equal(t, transform.ImputeConstant, cfg.Strategy)
	assert.Equal(t, 2.5, cfg.Value)

	require.NoError(t, Decode(nil, &cfg))
	assert.ErrorIs(t, Decode(map[string]any{"nope": 1}, &cfg), pipeline.ErrInvalidConfig)
}
