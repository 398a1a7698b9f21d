package outlier

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
)

// DistanceConfig sets exactly one of Remove and MaxZ.
type DistanceConfig struct {
	// Remove drops this many rows with the largest squared z-distance from
	// the fitted mean.
	Remove int `koanf:"remove"`
	// MaxZ drops rows where any feature lies more than MaxZ standard
	// deviations from its fitted mean.
	MaxZ float64 `koanf:"max_z"`
}

// Distance removes rows far from the fitted feature means, measured in
// standard deviations.
type Distance struct {
	cfg DistanceConfig

	moments moments
	fitted  bool
}

func NewDistance(cfg DistanceConfig) (*Distance, error) {
	switch {
	case cfg.Remove < 0:
		return nil, fmt.Errorf("%w: remove must not be negative, got %d", pipeline.ErrInvalidConfig, cfg.Remove)
	case cfg.MaxZ < 0:
		return nil, fmt.Errorf("%w: max_z must not be negative, got %g", pipeline.ErrInvalidConfig, cfg.MaxZ)
	case (cfg.Remove > 0) == (cfg.MaxZ > 0):
		return nil, fmt.Errorf("%w: distance outlier removal needs exactly one of remove and max_z", pipeline.ErrInvalidConfig)
	}
	return &Distance{cfg: cfg}, nil
}

func (d *Distance) Description() string   { return "Distance Outlier Removal" }
func (d *Distance) ChangesRowCount() bool { return true }

func (d *Distance) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	feats, _, _ := frame.SplitLabel(data, label)
	d.moments = fitMoments(feats)
	d.fitted = true
	return d.Transform(data, label)
}

// Transform scores the rows of data against the fitted moments. In Remove
// mode the highest scores are dropped, earlier rows winning ties.
func (d *Distance) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !d.fitted {
		return nil, pipeline.NotFitted(d)
	}
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	z, err := d.moments.zscores(data, label)
	if err != nil {
		return nil, err
	}

	drop := make([]bool, len(z))
	if d.cfg.Remove > 0 {
		score := make([]float64, len(z))
		order := make([]int, len(z))
		for i, row := range z {
			order[i] = i
			for _, v := range row {
				score[i] += v * v
			}
			if math.IsNaN(score[i]) {
				score[i] = math.Inf(1)
			}
		}
		slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(score[b], score[a]) })
		for _, i := range order[:min(d.cfg.Remove, len(order))] {
			drop[i] = true
		}
	} else {
		for i, row := range z {
			for _, v := range row {
				if math.Abs(v) > d.cfg.MaxZ {
					drop[i] = true
					break
				}
			}
		}
	}
	return data.Filter(func(i int) bool { return !drop[i] }), nil
}
