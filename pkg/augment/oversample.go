// Package augment provides steps that add synthetic rows to training data.
package augment

import (
	"cmp"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
)

// Strategy selects how synthetic rows are generated.
type Strategy string

const (
	// Duplicate copies randomly chosen rows of the minority class.
	Duplicate Strategy = "duplicate"
	// Interpolate places new rows on the segment between a random row of the
	// class and one of its nearest neighbours within the class.
	Interpolate Strategy = "interpolate"
)

// OversampleConfig configures Oversampler.
type OversampleConfig struct {
	Seed     int64    `koanf:"seed"`
	Strategy Strategy `koanf:"strategy"`
	// Neighbors is the neighbourhood size for Interpolate. Zero means 5.
	Neighbors int `koanf:"neighbors"`
}

// Oversampler balances label classes by adding rows to every class smaller
// than the largest one. Each call draws from a fresh generator seeded with
// Seed, so equal inputs give equal outputs. Synthetic rows receive new row
// identities; original rows are returned first and unchanged.
type Oversampler struct {
	cfg OversampleConfig

	names  []string
	fitted bool
}

func NewOversampler(cfg OversampleConfig) (*Oversampler, error) {
	switch cfg.Strategy {
	case "":
		cfg.Strategy = Duplicate
	case Duplicate, Interpolate:
	default:
		return nil, fmt.Errorf("%w: unknown oversampling strategy %q", pipeline.ErrInvalidConfig, cfg.Strategy)
	}
	if cfg.Neighbors == 0 {
		cfg.Neighbors = 5
	}
	if cfg.Neighbors < 0 {
		return nil, fmt.Errorf("%w: neighbors must be positive, got %d", pipeline.ErrInvalidConfig, cfg.Neighbors)
	}
	return &Oversampler{cfg: cfg}, nil
}

func (o *Oversampler) Description() string {
	if o.cfg.Strategy == Interpolate {
		return "SMOTE Data Augmentation"
	}
	return "Random Oversampling"
}

func (o *Oversampler) ChangesRowCount() bool { return true }

func (o *Oversampler) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	feats, _, err := split(data, label)
	if err != nil {
		return nil, err
	}
	o.names = feats.Names()
	o.fitted = true
	return o.Transform(data, label)
}

func (o *Oversampler) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !o.fitted {
		return nil, pipeline.NotFitted(o)
	}
	feats, target, err := split(data, label)
	if err != nil {
		return nil, err
	}
	feats, err = feats.Select(o.names...)
	if err != nil {
		return nil, err
	}
	ordered, err := frame.JoinLabel(feats, label, target)
	if err != nil {
		return nil, err
	}

	classes := make(map[float64][]int)
	for i, y := range target {
		if !math.IsNaN(y) {
			classes[y] = append(classes[y], i)
		}
	}
	largest := 0
	for _, rows := range classes {
		largest = max(largest, len(rows))
	}
	keys := make([]float64, 0, len(classes))
	for y := range classes {
		keys = append(keys, y)
	}
	slices.Sort(keys)

	rng := rand.New(rand.NewSource(o.cfg.Seed))
	var synthetic [][]float64
	for _, y := range keys {
		members := classes[y]
		var neighbours [][]int
		if o.cfg.Strategy == Interpolate && len(members) < largest {
			neighbours = nearest(feats, members, o.cfg.Neighbors)
		}
		for range largest - len(members) {
			k := rng.Intn(len(members))
			row := feats.Row(members[k])
			if neighbours != nil && len(neighbours[k]) > 0 {
				other := feats.Row(neighbours[k][rng.Intn(len(neighbours[k]))])
				gap := rng.Float64()
				for j := range row {
					row[j] += gap * (other[j] - row[j])
				}
			}
			synthetic = append(synthetic, append(row, y))
		}
	}
	return ordered.AppendRows(synthetic)
}

func split(data *frame.Frame, label string) (*frame.Frame, []float64, error) {
	if err := frame.Check(data); err != nil {
		return nil, nil, err
	}
	feats, target, ok := frame.SplitLabel(data, label)
	if !ok {
		return nil, nil, fmt.Errorf("%w: oversampling needs column %q", pipeline.ErrLabelRequired, label)
	}
	return feats, target, nil
}

// nearest returns, for each member row, the positions of its k closest
// other members by Euclidean distance.
func nearest(feats *frame.Frame, members []int, k int) [][]int {
	rows := make([][]float64, len(members))
	for i, m := range members {
		rows[i] = feats.Row(m)
	}
	out := make([][]int, len(members))
	for i := range members {
		others := make([]int, 0, len(members)-1)
		dist := make(map[int]float64, len(members)-1)
		for j := range members {
			if j == i {
				continue
			}
			others = append(others, j)
			dist[j] = floats.Distance(rows[i], rows[j], 2)
		}
		slices.SortStableFunc(others, func(a, b int) int { return cmp.Compare(dist[a], dist[b]) })
		others = others[:min(k, len(others))]
		for n, j := range others {
			others[n] = members[j]
		}
		out[i] = others
	}
	return out
}
