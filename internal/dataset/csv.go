package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var nan = math.NaN()

// LoadCSV reads an observation table: a header row naming the columns, a
// leading identifier column labeling each row, and numeric cells elsewhere.
// Empty cells and the tokens NA/NaN parse as missing.
func LoadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, path)
}

// ReadCSV parses CSV content from r; name is used in diagnostics only.
func ReadCSV(r io.Reader, name string) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: need an identifier column plus at least one data column", name)
	}
	cols := make([]string, len(header)-1)
	for i, h := range header[1:] {
		cols[i] = strings.TrimSpace(h)
	}

	var rows []string
	var values []float64
	line := 1
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: read row %d: %w", name, line+1, err)
		}
		line++
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%s: row %d has %d fields, header has %d", name, line, len(rec), len(header))
		}
		rows = append(rows, strings.TrimSpace(rec[0]))
		for j, cell := range rec[1:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d column %q: %w", name, line, cols[j], err)
			}
			values = append(values, v)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no data rows", name)
	}
	fr, err := New(rows, cols, values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return fr, nil
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "", "NA", "NAN":
		return nan, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}
