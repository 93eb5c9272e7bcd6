// Package runner drives the per-scenario pipeline: preprocess the paired
// matrices, fit the ordination, fit the regression, assemble the comparison,
// and hand it to the renderer. A failing scenario is reported and never
// aborts the remaining ones.
package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/compare"
	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/config"
	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/dataset"
	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/ordination"
	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/regress"
	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/render"
)

// Renderer writes the assembled comparison for one scenario.
type Renderer interface {
	Render(c *compare.Comparison, meta render.Meta, path string) error
}

// Report is the outcome of one scenario run.
type Report struct {
	RunID    uuid.UUID
	Scenario string
	// Stage names the failing pipeline step when Err is set: load,
	// preprocess, ordination, regression, assemble, render.
	Stage     string
	Err       error
	HoldoutR2 float64
	OutFile   string
}

// Failed reports whether the scenario run failed.
func (r Report) Failed() bool { return r.Err != nil }

// Runner executes the configured scenarios in their configured order.
type Runner struct {
	cfg      *config.Config
	renderer Renderer
	diag     io.Writer
}

// Option adjusts a Runner.
type Option func(*Runner)

// WithRenderer substitutes the figure renderer.
func WithRenderer(r Renderer) Option {
	return func(rn *Runner) { rn.renderer = r }
}

// WithDiagnostics redirects diagnostic output (default os.Stderr).
func WithDiagnostics(w io.Writer) Option {
	return func(rn *Runner) { rn.diag = w }
}

// New builds a Runner for the given configuration.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, renderer: render.NewFigure(), diag: os.Stderr}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes every configured scenario and returns one report per
// scenario, in configuration order.
func (r *Runner) Run() []Report {
	reports := make([]Report, 0, len(r.cfg.Scenarios))
	for i := range r.cfg.Scenarios {
		rep := r.RunScenario(&r.cfg.Scenarios[i])
		if rep.Failed() {
			fmt.Fprintf(r.diag, "⚠ scenario %q failed at %s: %v\n", rep.Scenario, rep.Stage, rep.Err)
		} else {
			fmt.Fprintf(r.diag, "✓ scenario %q: wrote %s (held-out R²=%.3f)\n", rep.Scenario, rep.OutFile, rep.HoldoutR2)
		}
		reports = append(reports, rep)
	}
	return reports
}

// RunScenario executes one scenario end to end. All state is scoped to the
// call; the split seed is re-derived from the configuration, never from a
// process-wide counter.
func (r *Runner) RunScenario(s *config.Scenario) Report {
	rep := Report{RunID: uuid.New(), Scenario: s.Name}
	fail := func(stage string, err error) Report {
		rep.Stage = stage
		rep.Err = err
		return rep
	}

	env, err := dataset.LoadCSV(s.EnvFile)
	if err != nil {
		return fail("load", err)
	}
	abund, err := dataset.LoadCSV(s.AbundanceFile)
	if err != nil {
		return fail("load", err)
	}

	cleaned, err := dataset.Clean(env, abund, dataset.Options{
		DropEnvColumns:   s.DropEnvColumns,
		RenameEnvColumns: s.RenameEnvColumns,
	})
	if err != nil {
		return fail("preprocess", err)
	}

	ord, err := ordination.Fit(cleaned.Env, cleaned.Abundance, s.FocalTaxon)
	if err != nil {
		return fail("ordination", err)
	}

	fit, err := regress.Train(cleaned.Env, cleaned.Abundance, s.FocalTaxon, r.cfg.EffectiveSeed(s))
	if err != nil {
		return fail("regression", err)
	}
	rep.HoldoutR2 = fit.HoldoutR2

	cmp, err := compare.Assemble(ord, ord.Contributions(), fit.Importance())
	if err != nil {
		return fail("assemble", err)
	}

	rep.OutFile = r.outputPath(s)
	if dir := filepath.Dir(rep.OutFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail("render", fmt.Errorf("mkdir output dir: %w", err))
		}
	}
	meta := render.Meta{
		Title:      fmt.Sprintf("CCA biplot — %s", s.Name),
		Axis1Label: fmt.Sprintf("CCA1 (%.1f%%)", s.Axis1VarPct),
		Axis2Label: fmt.Sprintf("CCA2 (%.1f%%)", s.Axis2VarPct),
	}
	if err := r.renderer.Render(cmp, meta, rep.OutFile); err != nil {
		return fail("render", err)
	}
	return rep
}

func (r *Runner) outputPath(s *config.Scenario) string {
	if s.OutFile != "" {
		return s.OutFile
	}
	return filepath.Join(r.cfg.OutDir, s.Name+".png")
}
