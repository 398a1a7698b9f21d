package frame

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// ReadCSV reads a frame from CSV. The first record is the header. Empty
// cells and "NA"/"NaN" become NaN; any other unparsable cell is an error.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: csv has no header", ErrNotTable)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	names := append([]string(nil), header...)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: csv header is empty", ErrNotTable)
	}
	cols := make([][]float64, len(names))

	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		for j, s := range rec {
			v, err := parseCell(s)
			if err != nil {
				return nil, fmt.Errorf("csv line %d column %q: %w", line, names[j], err)
			}
			cols[j] = append(cols[j], v)
		}
	}
	for j := range cols {
		if cols[j] == nil {
			cols[j] = []float64{}
		}
	}
	return build(names, cols, sequence(len(cols[0])))
}

func parseCell(s string) (float64, error) {
	switch s {
	case "", "NA", "NaN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// WriteCSV writes the frame as CSV with a header row.
func WriteCSV(w io.Writer, f *Frame) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.names); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(f.names))
	for i := range f.NumRows() {
		for j, c := range f.cols {
			record[j] = strconv.FormatFloat(c[i], 'f', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
