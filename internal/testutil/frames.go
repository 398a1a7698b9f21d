package testutil

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/ryuk2git/dspipeline/pkg/frame"
)

// Label is the label column name used by the generators.
const Label = "label"

// FeatureNames returns "0".."n-1".
func FeatureNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}

// RandFrame returns a rows×features frame of values uniform in [-100, 100).
// When labeled, a uniform label column is appended.
func RandFrame(t testing.TB, seed int64, rows, features int, labeled bool) *frame.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	names := FeatureNames(features)
	if labeled {
		names = append(names, Label)
	}
	data := make([][]float64, rows)
	for i := range data {
		row := make([]float64, len(names))
		for j := range row {
			row[j] = rng.Float64()*200 - 100
		}
		data[i] = row
	}
	return mustRows(t, names, data)
}

// LinearFrame returns a frame whose label is sum_j (j+1)*x_j plus small
// noise, so a feature's correlation with the label grows with its position.
func LinearFrame(t testing.TB, seed int64, rows, features int) *frame.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	names := append(FeatureNames(features), Label)
	data := make([][]float64, rows)
	for i := range data {
		row := make([]float64, features+1)
		y := 0.0
		for j := range features {
			row[j] = rng.NormFloat64()
			y += float64(j+1) * row[j]
		}
		row[features] = y + rng.NormFloat64()*0.1
		data[i] = row
	}
	return mustRows(t, names, data)
}

// ClassFrame returns a frame with features drawn around a per-class centre
// and an integer class label. counts[c] rows are generated for class c.
func ClassFrame(t testing.TB, seed int64, features int, counts ...int) *frame.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	names := append(FeatureNames(features), Label)
	var data [][]float64
	for c, n := range counts {
		for range n {
			row := make([]float64, features+1)
			for j := range features {
				row[j] = float64(c*10) + rng.NormFloat64()
			}
			row[features] = float64(c)
			data = append(data, row)
		}
	}
	return mustRows(t, names, data)
}

// WithOutliers returns f with the first n rows' features pushed far from the
// rest of the data.
func WithOutliers(t testing.TB, f *frame.Frame, n int, label string) *frame.Frame {
	t.Helper()
	names := f.Names()
	rows := make([][]float64, f.NumRows())
	for i := range rows {
		rows[i] = f.Row(i)
		if i < n {
			for j, name := range names {
				if name != label {
					rows[i][j] += 1e4 * float64(i+1)
				}
			}
		}
	}
	out := mustRows(t, names, rows)
	out, err := out.WithIndex(f.Index())
	if err != nil {
		t.Fatalf("WithIndex: %v", err)
	}
	return out
}

// Clone returns a deep copy of f that keeps its row identities.
func Clone(t testing.TB, f *frame.Frame) *frame.Frame {
	t.Helper()
	rows := make([][]float64, f.NumRows())
	for i := range rows {
		rows[i] = f.Row(i)
	}
	out := mustRows(t, f.Names(), rows)
	out, err := out.WithIndex(f.Index())
	if err != nil {
		t.Fatalf("WithIndex: %v", err)
	}
	return out
}

func mustRows(t testing.TB, names []string, rows [][]float64) *frame.Frame {
	t.Helper()
	f, err := frame.FromRows(names, rows)
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	return f
}
