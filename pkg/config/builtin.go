package config

import (
	"fmt"

	"github.com/ryuk2git/dspipeline/pkg/augment"
	"github.com/ryuk2git/dspipeline/pkg/dataprep"
	"github.com/ryuk2git/dspipeline/pkg/outlier"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
	"github.com/ryuk2git/dspipeline/pkg/selection"
	"github.com/ryuk2git/dspipeline/pkg/transform"
)

// Built-in step kinds.
const (
	KindPipeline          = "pipeline"
	KindEmpty             = "empty"
	KindClean             = "clean"
	KindStandardScaler    = "standard_scaler"
	KindMinMaxScaler      = "min_max_scaler"
	KindRobustScaler      = "robust_scaler"
	KindPCA               = "pca"
	KindPoly              = "poly"
	KindSin               = "sin"
	KindLog               = "log"
	KindWinsorize         = "winsorize"
	KindImpute            = "impute"
	KindSelect            = "select"
	KindPearson           = "pearson"
	KindVarianceThreshold = "variance_threshold"
	KindDistanceOutlier   = "distance_outlier"
	KindIQROutlier        = "iqr_outlier"
	KindOversample        = "oversample"
)

func init() {
	Register(KindPipeline, func(spec StepSpec, b *Builder) (pipeline.Step, error) {
		return b.pipeline(spec)
	})
	Register(KindEmpty, func(spec StepSpec, _ *Builder) (pipeline.Step, error) {
		if err := Decode(spec.Params, &struct{}{}); err != nil {
			return nil, err
		}
		return pipeline.NewEmpty(), nil
	})

	Register(KindClean, func(spec StepSpec, b *Builder) (pipeline.Step, error) {
		if len(spec.Steps) > 0 {
			return nil, fmt.Errorf("%w: %s takes no nested steps", pipeline.ErrInvalidConfig, spec.Kind)
		}
		var cfg dataprep.CleanConfig
		if err := Decode(spec.Params, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Kind, err)
		}
		var opts []pipeline.Option
		if b.Logger != nil {
			opts = append(opts, pipeline.WithLogger(b.Logger))
		}
		return dataprep.NewCleaner(cfg, opts...)
	})

	Register(KindStandardScaler, simple(func(c transform.ScaleConfig) (pipeline.Step, error) {
		return transform.NewStandardScaler(c), nil
	}))
	Register(KindMinMaxScaler, simple(func(c transform.ScaleConfig) (pipeline.Step, error) {
		return transform.NewMinMaxScaler(c), nil
	}))
	Register(KindRobustScaler, simple(func(c transform.ScaleConfig) (pipeline.Step, error) {
		return transform.NewRobustScaler(c), nil
	}))
	Register(KindPCA, simple(func(c transform.PCAConfig) (pipeline.Step, error) {
		return transform.NewPCA(c)
	}))
	Register(KindPoly, simple(func(c transform.PolyConfig) (pipeline.Step, error) {
		return transform.NewPoly(c)
	}))
	Register(KindSin, simple(func(c transform.ElementwiseConfig) (pipeline.Step, error) {
		return transform.NewSin(c), nil
	}))
	Register(KindLog, simple(func(c transform.LogConfig) (pipeline.Step, error) {
		return transform.NewLog(c), nil
	}))
	Register(KindWinsorize, simple(func(c transform.WinsorizeConfig) (pipeline.Step, error) {
		return transform.NewWinsorize(c)
	}))
	Register(KindImpute, simple(func(c transform.ImputeConfig) (pipeline.Step, error) {
		return transform.NewImputer(c)
	}))

	Register(KindSelect, simple(func(c selection.ListConfig) (pipeline.Step, error) {
		return selection.NewList(c)
	}))
	Register(KindPearson, simple(func(c selection.PearsonConfig) (pipeline.Step, error) {
		return selection.NewPearson(c)
	}))
	Register(KindVarianceThreshold, simple(func(c selection.VarianceConfig) (pipeline.Step, error) {
		return selection.NewVarianceThreshold(c)
	}))

	Register(KindDistanceOutlier, simple(func(c outlier.DistanceConfig) (pipeline.Step, error) {
		return outlier.NewDistance(c)
	}))
	Register(KindIQROutlier, simple(func(c outlier.IQRConfig) (pipeline.Step, error) {
		return outlier.NewIQR(c)
	}))

	Register(KindOversample, simple(func(c augment.OversampleConfig) (pipeline.Step, error) {
		return augment.NewOversampler(c)
	}))
}

// simple adapts a constructor taking a decoded config struct to a Factory.
func simple[C any](build func(C) (pipeline.Step, error)) Factory {
	return func(spec StepSpec, _ *Builder) (pipeline.Step, error) {
		if len(spec.Steps) > 0 {
			return nil, fmt.Errorf("%w: %s takes no nested steps", pipeline.ErrInvalidConfig, spec.Kind)
		}
		var cfg C
		if err := Decode(spec.Params, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Kind, err)
		}
		return build(cfg)
	}
}
