package frame

import (
	"fmt"
	"slices"
)

// DefaultSuffix is appended by Merge to derived column names that collide
// with original ones when no suffix is given.
const DefaultSuffix = "_derived"

// SplitLabel separates the label column from the features. When label is
// empty or the frame has no such column, it returns the frame unchanged and
// ok is false.
func SplitLabel(f *Frame, label string) (features *Frame, target []float64, ok bool) {
	if label == "" || !f.Has(label) {
		return f, nil, false
	}
	target, _ = f.Column(label)
	return f.Drop(label), target, true
}

// JoinLabel appends target as the label column of features. A nil target
// returns features unchanged, so callers can pass through the result of
// SplitLabel without branching.
func JoinLabel(features *Frame, label string, target []float64) (*Frame, error) {
	if target == nil {
		return features, nil
	}
	if label == "" {
		return nil, fmt.Errorf("%w: label values given without a label name", ErrNotTable)
	}
	return features.WithColumn(label, target)
}

// Derive builds a frame from freshly computed columns that correspond
// row-for-row to src, so the result keeps src's row identities.
func Derive(src *Frame, names []string, cols [][]float64) (*Frame, error) {
	for j, c := range cols {
		if len(c) != src.NumRows() {
			return nil, fmt.Errorf("%w: derived column %q has %d rows, want %d", ErrNotTable, names[j], len(c), src.NumRows())
		}
	}
	if len(names) != len(cols) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrNotTable, len(names), len(cols))
	}
	return build(slices.Clone(names), cols, src.index)
}

// Merge concatenates the columns of original and derived, matching rows by
// identity. The result has derived's rows in derived's order: rows removed on
// the way from original to derived stay removed. Original non-label columns
// come first, then derived non-label columns, then the label once. Derived
// columns whose names collide with original ones get suffix appended.
//
// Merge returns an *AlignmentError when derived holds a row identity that is
// not in original.
func Merge(original, derived *Frame, label, suffix string) (*Frame, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	positions := make(map[int]int, original.NumRows())
	for i, id := range original.index {
		positions[id] = i
	}
	take := make([]int, derived.NumRows())
	var unknown []int
	for i, id := range derived.index {
		p, ok := positions[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		take[i] = p
	}
	if len(unknown) > 0 {
		return nil, &AlignmentError{Unknown: unknown}
	}
	aligned := original.Take(take)

	origFeatures, origTarget, _ := SplitLabel(aligned, label)
	derivedFeatures, derivedTarget, _ := SplitLabel(derived, label)
	target := derivedTarget
	if target == nil {
		target = origTarget
	}

	names := origFeatures.Names()
	cols := slices.Clone(origFeatures.cols)
	taken := make(map[string]struct{}, len(names)+derivedFeatures.NumCols())
	for _, n := range names {
		taken[n] = struct{}{}
	}
	if label != "" {
		taken[label] = struct{}{}
	}
	for j, n := range derivedFeatures.names {
		for {
			if _, clash := taken[n]; !clash {
				break
			}
			n += suffix
		}
		taken[n] = struct{}{}
		names = append(names, n)
		cols = append(cols, derivedFeatures.cols[j])
	}
	out, err := build(names, cols, derived.index)
	if err != nil {
		return nil, err
	}
	return JoinLabel(out, label, target)
}
