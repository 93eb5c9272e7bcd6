// Package ordination fits a constrained correspondence analysis (CCA)
// relating taxa composition to environmental gradients. Axes are linear
// combinations of the predictors chosen to maximize the species-environment
// correlation, computed by weighted least squares on the chi-square residual
// matrix followed by a singular value decomposition of the fitted values.
package ordination

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/dataset"
)

// Axes is the number of displayed ordination axes.
const Axes = 2

// rank tolerance relative to the largest singular value
const rankTol = 1e-10

// SingularMatrixError indicates a rank-deficient constrained model, e.g.
// more predictors than independent observations or a surviving collinear
// predictor pair.
type SingularMatrixError struct {
	Detail string
}

func (e *SingularMatrixError) Error() string {
	return fmt.Sprintf("singular constrained model: %s", e.Detail)
}

// Coord is a position on the first two canonical axes.
type Coord [Axes]float64

// Result holds scaling type 2 scores: taxon-taxon distances approximate
// chi-square distances, environment arrows give correlation direction and
// relative magnitude.
type Result struct {
	// TaxonScores maps each taxon to its coordinates.
	TaxonScores map[string]Coord
	// EnvScores maps each environmental predictor to its biplot arrow.
	EnvScores map[string]Coord
	// SiteScores are the constrained observation coordinates, keyed by
	// observation label.
	SiteScores map[string]Coord
	// Eigenvalues of the displayed axes.
	Eigenvalues Coord
	// TotalInertia is the total chi-square variation in the response.
	TotalInertia float64

	taxa []string
	vars []string
}

// Taxa returns the response taxa in fit order.
func (r *Result) Taxa() []string { return append([]string(nil), r.taxa...) }

// Variables returns the environmental predictors in fit order.
func (r *Result) Variables() []string { return append([]string(nil), r.vars...) }

// Fit runs a CCA of the abundance frame (with the focal taxon removed)
// constrained by the environmental frame. Both frames must share row order,
// as produced by the preprocessor, and the abundance values must be
// non-negative with positive row and column totals.
func Fit(env, abund *dataset.Frame, focalTaxon string) (*Result, error) {
	resp, err := abund.Drop(focalTaxon)
	if err != nil {
		return nil, fmt.Errorf("exclude focal taxon: %w", err)
	}
	n, m := resp.NumRows(), resp.NumCols()
	q := env.NumCols()
	if env.NumRows() != n {
		return nil, fmt.Errorf("environment has %d rows, abundance has %d", env.NumRows(), n)
	}
	if n <= q {
		return nil, &SingularMatrixError{Detail: fmt.Sprintf("%d predictors for %d observations", q, n)}
	}

	y := resp.Matrix()
	total := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			total += y.At(i, j)
		}
	}
	if total <= 0 {
		return nil, fmt.Errorf("abundance matrix has no mass")
	}

	// Row and column masses of the relative-frequency table.
	r := make([]float64, n)
	c := make([]float64, m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			p := y.At(i, j) / total
			r[i] += p
			c[j] += p
		}
	}

	// Chi-square standardized residuals.
	qres := mat.NewDense(n, m, nil)
	inertia := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			p := y.At(i, j) / total
			v := (p - r[i]*c[j]) / math.Sqrt(r[i]*c[j])
			qres.Set(i, j, v)
			inertia += v * v
		}
	}

	// Weighted-centered predictors scaled by sqrt row mass.
	x := env.Matrix()
	xw := mat.NewDense(n, q, nil)
	for p := 0; p < q; p++ {
		wmean := 0.0
		for i := 0; i < n; i++ {
			wmean += r[i] * x.At(i, p)
		}
		for i := 0; i < n; i++ {
			xw.Set(i, p, math.Sqrt(r[i])*(x.At(i, p)-wmean))
		}
	}
	if rk := matrixRank(xw); rk < q {
		return nil, &SingularMatrixError{Detail: fmt.Sprintf("predictor matrix rank %d < %d", rk, q)}
	}

	// Least-squares projection of the residuals onto the predictor space.
	var coef mat.Dense
	if err := coef.Solve(xw, qres); err != nil {
		return nil, &SingularMatrixError{Detail: "weighted least squares failed"}
	}
	var fitted mat.Dense
	fitted.Mul(xw, &coef)

	var svd mat.SVD
	if !svd.Factorize(&fitted, mat.SVDThin) {
		return nil, &SingularMatrixError{Detail: "decomposition of fitted matrix failed"}
	}
	sv := svd.Values(nil)
	if len(sv) < Axes || sv[Axes-1] <= rankTol*sv[0] {
		return nil, &SingularMatrixError{Detail: "fewer than two constrained axes"}
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	res := &Result{
		TaxonScores:  make(map[string]Coord, m),
		EnvScores:    make(map[string]Coord, q),
		SiteScores:   make(map[string]Coord, n),
		TotalInertia: inertia,
		taxa:         resp.Cols(),
		vars:         env.Cols(),
	}
	for k := 0; k < Axes; k++ {
		res.Eigenvalues[k] = sv[k] * sv[k]
	}

	// Scaling 2 taxon scores.
	for j, name := range res.taxa {
		var s Coord
		for k := 0; k < Axes; k++ {
			s[k] = v.At(j, k) * sv[k] / math.Sqrt(c[j])
		}
		res.TaxonScores[name] = s
	}

	// Constrained site scores.
	site := mat.NewDense(n, Axes, nil)
	for i, label := range resp.Rows() {
		var s Coord
		for k := 0; k < Axes; k++ {
			s[k] = u.At(i, k) / math.Sqrt(r[i])
			site.Set(i, k, s[k])
		}
		res.SiteScores[label] = s
	}

	// Biplot arrows: mass-weighted correlation of each predictor with the
	// site axes, scaled by the singular value.
	axis := make([]float64, n)
	xcol := make([]float64, n)
	for p, name := range res.vars {
		var s Coord
		mat.Col(xcol, p, x)
		for k := 0; k < Axes; k++ {
			mat.Col(axis, k, site)
			s[k] = stat.Correlation(xcol, axis, r) * sv[k]
		}
		res.EnvScores[name] = s
	}
	return res, nil
}

// Contributions reports each predictor's relative importance: the sum of its
// squared arrow coordinates over the displayed axes, normalized so the
// predictors sum to 100.
func (r *Result) Contributions() map[string]float64 {
	sum := 0.0
	raw := make(map[string]float64, len(r.vars))
	for _, name := range r.vars {
		s := r.EnvScores[name]
		v := 0.0
		for k := 0; k < Axes; k++ {
			v += s[k] * s[k]
		}
		raw[name] = v
		sum += v
	}
	out := make(map[string]float64, len(raw))
	for name, v := range raw {
		out[name] = v / sum * 100
	}
	return out
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
		if s > rankTol*sv[0] {
			rank++
		}
	}
	return rank
}
