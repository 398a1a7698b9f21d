package selection

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
	"github.com/ryuk2git/dspipeline/pkg/stats"
)

// PearsonConfig sets exactly one of K and Threshold.
type PearsonConfig struct {
	// K keeps the K features most correlated with the label.
	K int `koanf:"k"`
	// Threshold keeps features whose absolute correlation with the label is
	// at least Threshold.
	Threshold float64 `koanf:"threshold"`
}

// Pearson keeps the features with the strongest absolute Pearson correlation
// to the label. Kept features stay in input order.
type Pearson struct {
	cfg PearsonConfig

	scores   map[string]float64
	selected []string
	fitted   bool
}

func NewPearson(cfg PearsonConfig) (*Pearson, error) {
	switch {
	case cfg.K < 0:
		return nil, fmt.Errorf("%w: pearson k must not be negative, got %d", pipeline.ErrInvalidConfig, cfg.K)
	case cfg.Threshold < 0 || cfg.Threshold > 1:
		return nil, fmt.Errorf("%w: pearson threshold must be within [0, 1], got %g", pipeline.ErrInvalidConfig, cfg.Threshold)
	case (cfg.K > 0) == (cfg.Threshold > 0):
		return nil, fmt.Errorf("%w: pearson needs exactly one of k and threshold", pipeline.ErrInvalidConfig)
	}
	return &Pearson{cfg: cfg}, nil
}

func (p *Pearson) Description() string { return "Pearson Correlation Feature Selection" }

func (p *Pearson) ChangesRowCount() bool { return false }

// Selected returns the features kept by the last Fit.
func (p *Pearson) Selected() []string { return slices.Clone(p.selected) }

// Score returns the absolute correlation of a feature seen at fit time.
func (p *Pearson) Score(feature string) (float64, bool) {
	s, ok := p.scores[feature]
	return s, ok
}

func (p *Pearson) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	if err := frame.Check(data); err != nil {
		return nil, err
	}
	feats, target, ok := frame.SplitLabel(data, label)
	if !ok {
		return nil, fmt.Errorf("%w: pearson selection needs column %q", pipeline.ErrLabelRequired, label)
	}

	names := feats.Names()
	p.scores = make(map[string]float64, len(names))
	for _, n := range names {
		col, _ := feats.Column(n)
		p.scores[n] = math.Abs(stats.Correlation(col, target))
	}

	keep := make(map[string]bool, len(names))
	if p.cfg.K > 0 {
		ranked := slices.Clone(names)
		slices.SortStableFunc(ranked, func(a, b string) int {
			return cmp.Compare(p.scores[b], p.scores[a])
		})
		for _, n := range ranked[:min(p.cfg.K, len(ranked))] {
			keep[n] = true
		}
	} else {
		for _, n := range names {
			keep[n] = p.scores[n] >= p.cfg.Threshold
		}
	}
	p.selected = slices.DeleteFunc(names, func(n string) bool { return !keep[n] })
	p.fitted = true
	return project(data, label, p.selected)
}

func (p *Pearson) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !p.fitted {
		return nil, pipeline.NotFitted(p)
	}
	return project(data, label, p.selected)
}
