// Package compare reconciles the two variable-importance measures onto one
// ordered variable axis for joint rendering.
package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/ordination"
)

// AlignmentError indicates the two importance vectors do not reference the
// exact same variable names.
type AlignmentError struct {
	// Missing variables appear in only one of the two vectors.
	Missing []string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("importance vectors disagree on variables: %s", strings.Join(e.Missing, ", "))
}

// Comparison is the assembled per-scenario result: both importance series on
// the same ordered variable set, plus the ordination scores for the biplot.
type Comparison struct {
	// Variables in stable (ordination fit) order; both series index into it.
	Variables []string
	// Ordination and Regression are the two importance series, percent.
	Ordination []float64
	Regression []float64
	// Scores carries the taxon and environment coordinates for rendering.
	Scores *ordination.Result
}

// Assemble aligns the ordination-derived and regression-derived importance
// vectors on the ordination's variable order. The two maps must carry an
// identical key set.
func Assemble(res *ordination.Result, ordImp, regImp map[string]float64) (*Comparison, error) {
	if missing := symmetricDiff(ordImp, regImp); len(missing) > 0 {
		return nil, &AlignmentError{Missing: missing}
	}
	vars := res.Variables()
	if len(vars) != len(ordImp) {
		return nil, fmt.Errorf("ordination has %d variables, importance vectors have %d", len(vars), len(ordImp))
	}
	c := &Comparison{
		Variables:  vars,
		Ordination: make([]float64, len(vars)),
		Regression: make([]float64, len(vars)),
		Scores:     res,
	}
	for i, name := range vars {
		o, ok := ordImp[name]
		if !ok {
			return nil, &AlignmentError{Missing: []string{name}}
		}
		c.Ordination[i] = o
		c.Regression[i] = regImp[name]
	}
	return c, nil
}

func symmetricDiff(a, b map[string]float64) []string {
	var missing []string
	for k := range a {
		if _, ok := b[k]; !ok {
			missing = append(missing, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}
