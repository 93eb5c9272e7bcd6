package dataset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Options controls preprocessing of one scenario's paired matrices.
type Options struct {
	// DropEnvColumns are environmental columns removed after cleaning,
	// e.g. predictors known to be collinear with a retained one.
	DropEnvColumns []string
	// RenameEnvColumns, when non-empty, is the ordered list of new names
	// assigned to the surviving environmental columns.
	RenameEnvColumns []string
}

// Cleaned is the preprocessed pair of matrices a pipeline run operates on.
// Both frames share an identical row set and are strictly positive with a
// global minimum of exactly 1.
type Cleaned struct {
	Env       *Frame
	Abundance *Frame
}

// Clean standardizes the environmental matrix, drops abundance rows with any
// unmeasured taxon (a zero abundance is "not measured", not "absent"),
// mirrors that row filter onto the environmental matrix, shifts both
// matrices to a minimum of 1, and applies the configured column removals and
// renames. Inputs are not modified.
func Clean(env, abund *Frame, opt Options) (*Cleaned, error) {
	env, abund, err := alignRows(env, abund)
	if err != nil {
		return nil, err
	}

	env, err = Standardize(env)
	if err != nil {
		return nil, err
	}
	abund = zerosToMissing(abund)

	keep := completeRows(abund)
	if len(keep) == 0 {
		return nil, fmt.Errorf("no observation has complete abundance data")
	}
	abund, err = abund.SelectRows(keep)
	if err != nil {
		return nil, err
	}
	env, err = env.SelectRows(keep)
	if err != nil {
		return nil, err
	}

	env = shiftPositive(env)
	abund = shiftPositive(abund)

	env, err = env.Drop(opt.DropEnvColumns...)
	if err != nil {
		return nil, err
	}
	env, err = renameColumns(env, opt.RenameEnvColumns)
	if err != nil {
		return nil, err
	}
	return &Cleaned{Env: env, Abundance: abund}, nil
}

// alignRows restricts both frames to their shared row labels, keeping the
// abundance frame's row order. The inputs need not be sorted or aligned.
func alignRows(env, abund *Frame) (*Frame, *Frame, error) {
	inEnv := make(map[string]bool, env.NumRows())
	for _, l := range env.rows {
		inEnv[l] = true
	}
	var shared []string
	for _, l := range abund.rows {
		if inEnv[l] {
			shared = append(shared, l)
		}
	}
	if len(shared) == 0 {
		return nil, nil, fmt.Errorf("environment and abundance matrices share no observation labels")
	}
	e, err := env.SelectRows(shared)
	if err != nil {
		return nil, nil, err
	}
	a, err := abund.SelectRows(shared)
	if err != nil {
		return nil, nil, err
	}
	return e, a, nil
}

// Standardize z-scores every column (subtract mean, divide by sample
// standard deviation). A zero-variance column is an InvalidInputError.
func Standardize(f *Frame) (*Frame, error) {
	out := f.Clone()
	col := make([]float64, f.NumRows())
	for j, name := range f.cols {
		for i := range col {
			col[i] = f.data.At(i, j)
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			return nil, &InvalidInputError{Column: name, Reason: "zero variance"}
		}
		for i := range col {
			out.data.Set(i, j, (col[i]-mean)/std)
		}
	}
	return out, nil
}

// zerosToMissing converts exact-zero abundances to NaN.
func zerosToMissing(f *Frame) *Frame {
	out := f.Clone()
	for i := range f.rows {
		for j := range f.cols {
			if out.data.At(i, j) == 0 {
				out.data.Set(i, j, math.NaN())
			}
		}
	}
	return out
}

// completeRows returns the labels of rows with no missing values, in order.
func completeRows(f *Frame) []string {
	var keep []string
	for i, l := range f.rows {
		if !f.HasMissing(i) {
			keep = append(keep, l)
		}
	}
	return keep
}

// shiftPositive translates the whole frame so its minimum becomes exactly 1.
func shiftPositive(f *Frame) *Frame {
	out := f.Clone()
	min := f.Min()
	for i := range f.rows {
		for j := range f.cols {
			out.data.Set(i, j, f.data.At(i, j)-min+1)
		}
	}
	return out
}

func renameColumns(f *Frame, names []string) (*Frame, error) {
	if len(names) == 0 {
		return f, nil
	}
	if len(names) != len(f.cols) {
		return nil, &SchemaMismatchError{Want: len(names), Got: len(f.cols)}
	}
	if dup := firstDuplicate(names); dup != "" {
		return nil, fmt.Errorf("rename mapping repeats %q", dup)
	}
	out := f.Clone()
	out.cols = append([]string(nil), names...)
	return out, nil
}
