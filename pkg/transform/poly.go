package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ryuk2git/dspipeline/pkg/frame"
	"github.com/ryuk2git/dspipeline/pkg/pipeline"
)

// PolyConfig configures polynomial feature expansion.
type PolyConfig struct {
	// Degree is the highest total degree of generated terms. Zero means 2.
	Degree int `koanf:"degree"`
	// InteractionOnly drops terms that raise a single feature to a power.
	InteractionOnly bool `koanf:"interaction_only"`
	// Append keeps the input columns next to the generated terms.
	Append bool `koanf:"append"`
}

// Poly generates every product of features up to the configured degree,
// including the degree-one terms. Terms are named like "a", "a^2", "a*b",
// "a^2*b".
type Poly struct {
	cfg PolyConfig

	names  []string
	terms  [][]int
	labels []string
	fitted bool
}

func NewPoly(cfg PolyConfig) (*Poly, error) {
	if cfg.Degree == 0 {
		cfg.Degree = 2
	}
	if cfg.Degree < 1 {
		return nil, fmt.Errorf("%w: poly degree must be positive, got %d", pipeline.ErrInvalidConfig, cfg.Degree)
	}
	return &Poly{cfg: cfg}, nil
}

func (p *Poly) Description() string   { return "Polynomial Features" }
func (p *Poly) ChangesRowCount() bool { return false }

func (p *Poly) Fit(data *frame.Frame, label string) (*frame.Frame, error) {
	feats, _, err := input(data, label, nil)
	if err != nil {
		return nil, err
	}
	p.names = feats.Names()
	p.terms = p.terms[:0]
	for deg := 1; deg <= p.cfg.Degree; deg++ {
		p.terms = combinations(len(p.names), deg, !p.cfg.InteractionOnly, p.terms)
	}
	p.labels = make([]string, len(p.terms))
	for t, term := range p.terms {
		p.labels[t] = termName(p.names, term)
	}
	p.fitted = true
	return p.Transform(data, label)
}

func (p *Poly) Transform(data *frame.Frame, label string) (*frame.Frame, error) {
	if !p.fitted {
		return nil, pipeline.NotFitted(p)
	}
	feats, target, err := input(data, label, p.names)
	if err != nil {
		return nil, err
	}
	src := columns(feats, p.names)
	rows := feats.NumRows()
	cols := make([][]float64, len(p.terms))
	for t, term := range p.terms {
		col := make([]float64, rows)
		for i := range rows {
			v := 1.0
			for _, j := range term {
				v *= src[j][i]
			}
			col[i] = v
		}
		cols[t] = col
	}
	return output(data, feats, p.labels, cols, label, target, p.cfg.Append, "_poly")
}

// combinations appends to out every non-decreasing (or strictly increasing
// when repeat is false) sequence of k indices below n.
func combinations(n, k int, repeat bool, out [][]int) [][]int {
	var rec func(start int, cur []int)
	rec = func(start int, cur []int) {
		if len(cur) == k {
			out = append(out, append([]int(nil), cur...))
			return
		}
		for i := start; i < n; i++ {
			next := i + 1
			if repeat {
				next = i
			}
			rec(next, append(cur, i))
		}
	}
	rec(0, make([]int, 0, k))
	return out
}

func termName(names []string, term []int) string {
	var parts []string
	for i := 0; i < len(term); {
		j := i
		for j < len(term) && term[j] == term[i] {
			j++
		}
		part := names[term[i]]
		if power := j - i; power > 1 {
			part += "^" + strconv.Itoa(power)
		}
		parts = append(parts, part)
		i = j
	}
	return strings.Join(parts, "*")
}
