// Package regress corroborates variable importance with an ordinary
// least-squares model of the focal taxon's abundance on the retained
// environmental predictors.
package regress

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/dataset"
)

// TrainFraction is the share of observations used for fitting; the rest is
// held out for the reported validation score.
const TrainFraction = 0.7

// SingularMatrixError indicates a design matrix that is not full rank.
type SingularMatrixError struct {
	Detail string
}

func (e *SingularMatrixError) Error() string {
	return fmt.Sprintf("singular design matrix: %s", e.Detail)
}

// InsufficientDataError indicates too few training rows for the number of
// predictors.
type InsufficientDataError struct {
	TrainRows  int
	Predictors int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%d training rows for %d predictors (need at least %d)",
		e.TrainRows, e.Predictors, e.Predictors+1)
}

// Fit is a fitted model of the focal taxon.
type Fit struct {
	// Intercept and Coefficients of the least-squares solution; the
	// coefficient order matches Variables.
	Intercept    float64
	Coefficients []float64
	// HoldoutR2 is the coefficient of determination on the 30% held-out
	// rows. NaN when the held-out response has no variance.
	HoldoutR2 float64

	vars []string
}

// Variables returns the predictor names in coefficient order.
func (f *Fit) Variables() []string { return append([]string(nil), f.vars...) }

// Importance converts the fitted coefficients to relative importance: each
// predictor's absolute coefficient as a percentage of the sum of absolute
// coefficients. The intercept does not participate.
func (f *Fit) Importance() map[string]float64 {
	sum := 0.0
	for _, b := range f.Coefficients {
		sum += math.Abs(b)
	}
	out := make(map[string]float64, len(f.vars))
	for i, name := range f.vars {
		out[name] = math.Abs(f.Coefficients[i]) / sum * 100
	}
	return out
}

// Train fits OLS of the focal taxon's abundance on every environmental
// predictor, on a 70% subset chosen by the given seed. The split is
// deterministic for a fixed seed; the seed is scoped to this call and leaks
// no global state.
func Train(env, abund *dataset.Frame, focalTaxon string, seed int64) (*Fit, error) {
	y, err := abund.Column(focalTaxon)
	if err != nil {
		return nil, fmt.Errorf("focal taxon: %w", err)
	}
	n := env.NumRows()
	if len(y) != n {
		return nil, fmt.Errorf("environment has %d rows, abundance has %d", n, len(y))
	}
	q := env.NumCols()

	train, hold := split(n, seed)
	if len(train) < q+1 {
		return nil, &InsufficientDataError{TrainRows: len(train), Predictors: q}
	}

	x := env.Matrix()
	design := mat.NewDense(len(train), q+1, nil)
	resp := mat.NewVecDense(len(train), nil)
	for i, row := range train {
		design.Set(i, 0, 1)
		for j := 0; j < q; j++ {
			design.Set(i, j+1, x.At(row, j))
		}
		resp.SetVec(i, y[row])
	}
	if rk := matrixRank(design); rk < q+1 {
		return nil, &SingularMatrixError{Detail: fmt.Sprintf("rank %d < %d", rk, q+1)}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(design, resp); err != nil {
		return nil, &SingularMatrixError{Detail: "least squares failed"}
	}

	fit := &Fit{
		Intercept:    beta.AtVec(0),
		Coefficients: make([]float64, q),
		vars:         env.Cols(),
	}
	for j := 0; j < q; j++ {
		fit.Coefficients[j] = beta.AtVec(j + 1)
	}
	fit.HoldoutR2 = rsquared(fit, x, y, hold)
	return fit, nil
}

// split shuffles row indices with a run-scoped source and takes the first
// 70% (integer truncation) as the training set.
func split(n int, seed int64) (train, hold []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	cut := int(TrainFraction * float64(n))
	return idx[:cut], idx[cut:]
}

func rsquared(f *Fit, x *mat.Dense, y []float64, rows []int) float64 {
	if len(rows) < 2 {
		return math.NaN()
	}
	obs := make([]float64, len(rows))
	pred := make([]float64, len(rows))
	for i, row := range rows {
		obs[i] = y[row]
		p := f.Intercept
		for j, b := range f.Coefficients {
			p += b * x.At(row, j)
		}
		pred[i] = p
	}
	mean := stat.Mean(obs, nil)
	var ssRes, ssTot float64
	for i := range obs {
		ssRes += (obs[i] - pred[i]) * (obs[i] - pred[i])
		ssTot += (obs[i] - mean) * (obs[i] - mean)
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}

func matrixRank(a mat.Matrix) int {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return 0
	}
	sv := svd.Values(nil)
	if len(sv) == 0 || sv[0] == 0 {
		return 0
	}
	rank := 0
	for _, s := range sv {
		if s > 1e-10*sv[0] {
			rank++
		}
	}
	return rank
}
