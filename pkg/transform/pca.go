package transform

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
)

// PCAConfig configures PCA.
type PCAConfig struct {
	// Components is the number of principal components kept. Zero keeps
	// min(rows, features).
	Components int `koanf:"components"`
	// Append keeps the input columns next to the components.
	Append bool `koanf:"append"`
}

// PCA projects the features onto their principal components, named
// PC_1..PC_k in order of decreasing variance.
type PCA struct {
	cfg PCAConfig

	names     []string
	means     []float64
	vectors   *mat.Dense // features × k
	variances []float64
	fitted    bool
}

func NewPCA(cfg PCAConfig) (*PCA, error) {
	if cfg.Components < 0 {
		return nil, fmt.Errorf("%w: pca components must not be negative, got %d", pipeline.ErrInvalidConfig, cfg.Components)
	}
	return &PCA{cfg: cfg}, nil
}

func (p *PCA) Description() string   { return "PCA" }
func (p *PCA) ChangesRowCount() bool { return false }

// ExplainedVariance returns the variance captured by each kept component.
func (p *PCA) ExplainedVariance() []float64 { return append([]float64(nil), p.variances...) }

func (p *PCA) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	feats, _, err := input(data, label, nil)
	if err != nil {
		return nil, err
	}
	n, d := feats.NumRows(), feats.NumCols()
	if n < 2 || d == 0 {
		return nil, fmt.Errorf("%w: pca needs at least 2 rows and 1 feature, got %d×%d", frame.ErrNotTable, n, d)
	}
	k := p.cfg.Components
	if k == 0 {
		k = min(n, d)
	}
	if k > min(n, d) {
		return nil, fmt.Errorf("%w: pca components %d exceed min(rows, features) = %d", pipeline.ErrInvalidConfig, k, min(n, d))
	}
	X, err := feats.Dense()
	if err != nil {
		return nil, err
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(X, nil); !ok {
		return nil, fmt.Errorf("pca: decomposition failed for %d×%d input", n, d)
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	p.names = feats.Names()
	p.means = make([]float64, d)
	for j := range d {
		p.means[j] = stat.Mean(mat.Col(nil, j, X), nil)
	}
	p.vectors = mat.DenseCopyOf(vecs.Slice(0, d, 0, k))
	p.variances = pc.VarsTo(nil)[:k]
	p.fitted = true
	return p.Transform(data, label)
}

func (p *PCA) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !p.fitted {
		return nil, pipeline.NotFitted(p)
	}
	feats, target, err := input(data, label, p.names)
	if err != nil {
		return nil, err
	}
	X, err := feats.Dense()
	if err != nil {
		return nil, err
	}
	r, c := X.Dims()
	for i := range r {
		for j := range c {
			X.Set(i, j, X.At(i, j)-p.means[j])
		}
	}
	var proj mat.Dense
	proj.Mul(X, p.vectors)

	_, k := p.vectors.Dims()
	names := make([]string, k)
	cols := make([][]float64, k)
	for j := range k {
		names[j] = "PC_" + strconv.Itoa(j+1)
		cols[j] = mat.Col(nil, j, &proj)
	}
	return output(data, feats, names, cols, label, target, p.cfg.Append, "_pca")
}
