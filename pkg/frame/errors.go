package frame

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNotTable is returned when input cannot be treated as a labeled table:
// a nil frame, ragged rows, mismatched name and column counts, duplicate or
// empty column names.
var ErrNotTable = errors.New("not a table")

// ErrLabelRequired is returned by operations that need the label column when
// it is absent from the input.
var ErrLabelRequired = errors.New("label column required")

// MissingFeatureError reports named columns that were requested but are not
// present in the input.
type MissingFeatureError struct {
	Requested []string
	Missing   []string
	Available []string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing features %v: requested %v, available %v", e.Missing, e.Requested, e.Available)
}

func missing(names, available []string) *MissingFeatureError {
	var absent []string
	for _, n := range names {
		if !slices.Contains(available, n) {
			absent = append(absent, n)
		}
	}
	return &MissingFeatureError{Requested: slices.Clone(names), Missing: absent, Available: slices.Clone(available)}
}

// AlignmentError is returned by Merge when the derived frame holds rows whose
// identity does not exist in the original frame, so the original columns
// cannot be attached to them.
type AlignmentError struct {
	Unknown []int
}

func (e *AlignmentError) Error() string {
	if len(e.Unknown) == 0 {
		return "cannot align derived rows with original input"
	}
	return fmt.Sprintf("cannot align derived rows with original input: %d row identities not in original (first %d)", len(e.Unknown), e.Unknown[0])
}

// Check returns ErrNotTable when f is nil.
func Check(f *Frame) error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrNotTable)
	}
	return nil
}
