package runner

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/compare"
	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/config"
	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/dataset"
	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/render"
)

type captureRenderer struct {
	calls []string
	last  *compare.Comparison
	fail  error
}

func (c *captureRenderer) Render(cmp *compare.Comparison, meta render.Meta, path string) error {
	if c.fail != nil {
		return c.fail
	}
	c.calls = append(c.calls, path)
	c.last = cmp
	return nil
}

// writeScenarioCSVs writes a well-formed scenario: 20 observations, 6
// environmental predictors, 5 taxa with "Tripos" as the focal one.
func writeScenarioCSVs(t *testing.T, dir string) (envPath, abundPath string) {
	t.Helper()
	envCols := []string{"River", "Salt", "Temp", "DO", "Turb", "Chla"}
	taxa := []string{"Tripos", "TaxonA", "TaxonB", "TaxonC", "TaxonD"}

	var env, abund strings.Builder
	env.WriteString("Date," + strings.Join(envCols, ",") + "\n")
	abund.WriteString("Date," + strings.Join(taxa, ",") + "\n")
	for i := 0; i < 20; i++ {
		label := fmt.Sprintf("2019-%02d-01", i+1)
		env.WriteString(label)
		abund.WriteString(label)
		x := make([]float64, len(envCols))
		for p := range envCols {
			x[p] = 2 + math.Sin(float64(i)*0.41*float64(p+1)) + 0.06*float64((i*5+p*2)%13)
			env.WriteString(fmt.Sprintf(",%.6f", x[p]))
		}
		for j := range taxa {
			v := 1 + math.Abs(2.4*x[j%len(x)]-x[(j+3)%len(x)]) + 0.25*float64((i+j)%6)
			abund.WriteString(fmt.Sprintf(",%.6f", v))
		}
		env.WriteString("\n")
		abund.WriteString("\n")
	}

	envPath = filepath.Join(dir, "env.csv")
	abundPath = filepath.Join(dir, "taxa.csv")
	if err := os.WriteFile(envPath, []byte(env.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abundPath, []byte(abund.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return envPath, abundPath
}

// writeDegenerateEnvCSV writes an environment table with a zero-variance
// column, which must fail preprocessing before any ordination attempt.
func writeDegenerateEnvCSV(t *testing.T, dir string) string {
	t.Helper()
	var env strings.Builder
	env.WriteString("Date,River,Flat\n")
	for i := 0; i < 10; i++ {
		env.WriteString(fmt.Sprintf("2019-%02d-01,%d,5.0\n", i+1, 80+3*i))
	}
	path := filepath.Join(dir, "env_flat.csv")
	if err := os.WriteFile(path, []byte(env.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	envPath, abundPath := writeScenarioCSVs(t, dir)
	flatPath := writeDegenerateEnvCSV(t, dir)
	return &config.Config{
		OutDir: filepath.Join(dir, "figures"),
		Seed:   42,
		Scenarios: []config.Scenario{
			{
				Name:          "monthly",
				EnvFile:       envPath,
				AbundanceFile: abundPath,
				Axis1VarPct:   45.1,
				Axis2VarPct:   22.7,
				FocalTaxon:    "Tripos",
			},
			{
				Name:          "degenerate",
				EnvFile:       flatPath,
				AbundanceFile: abundPath,
				FocalTaxon:    "Tripos",
			},
		},
	}
}

func TestRunOneFailureDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	rend := &captureRenderer{}
	var diag bytes.Buffer

	reports := New(cfg, WithRenderer(rend), WithDiagnostics(&diag)).Run()
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}

	good := reports[0]
	if good.Failed() {
		t.Fatalf("scenario %q failed at %s: %v", good.Scenario, good.Stage, good.Err)
	}
	if len(rend.calls) != 1 || rend.calls[0] != good.OutFile {
		t.Errorf("renderer calls = %v, want [%s]", rend.calls, good.OutFile)
	}
	if len(rend.last.Variables) != 6 {
		t.Errorf("comparison has %d variables, want 6", len(rend.last.Variables))
	}
	if got := len(rend.last.Scores.TaxonScores); got != 4 {
		t.Errorf("ordination has %d taxon coordinate pairs, want 4", got)
	}
	sumOrd, sumReg := 0.0, 0.0
	for i := range rend.last.Variables {
		sumOrd += rend.last.Ordination[i]
		sumReg += rend.last.Regression[i]
	}
	if math.Abs(sumOrd-100) > 1e-9 || math.Abs(sumReg-100) > 1e-9 {
		t.Errorf("importance sums = %g/%g, want 100/100", sumOrd, sumReg)
	}

	bad := reports[1]
	if !bad.Failed() {
		t.Fatal("degenerate scenario did not fail")
	}
	if bad.Stage != "preprocess" {
		t.Errorf("failing stage = %q, want preprocess", bad.Stage)
	}
	var invalid *dataset.InvalidInputError
	if !errors.As(bad.Err, &invalid) {
		t.Errorf("err = %v, want InvalidInputError", bad.Err)
	}
	if !strings.Contains(diag.String(), `"degenerate" failed at preprocess`) {
		t.Errorf("diagnostics missing failure line: %s", diag.String())
	}

	if good.RunID == bad.RunID {
		t.Error("scenario runs share a run ID")
	}
}

func TestRunDeterministicAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Scenarios = cfg.Scenarios[:1]

	first := &captureRenderer{}
	second := &captureRenderer{}
	var diag bytes.Buffer
	repA := New(cfg, WithRenderer(first), WithDiagnostics(&diag)).Run()[0]
	repB := New(cfg, WithRenderer(second), WithDiagnostics(&diag)).Run()[0]
	if repA.Failed() || repB.Failed() {
		t.Fatalf("runs failed: %v / %v", repA.Err, repB.Err)
	}
	if math.Float64bits(repA.HoldoutR2) != math.Float64bits(repB.HoldoutR2) {
		t.Error("held-out R² differs across identical runs")
	}
	for i := range first.last.Regression {
		if math.Float64bits(first.last.Regression[i]) != math.Float64bits(second.last.Regression[i]) {
			t.Errorf("regression importance %d differs across identical runs", i)
		}
	}
}

func TestRunRenderFailureReported(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Scenarios = cfg.Scenarios[:1]
	rend := &captureRenderer{fail: errors.New("disk full")}
	var diag bytes.Buffer

	rep := New(cfg, WithRenderer(rend), WithDiagnostics(&diag)).Run()[0]
	if !rep.Failed() || rep.Stage != "render" {
		t.Errorf("report = stage %q err %v, want render failure", rep.Stage, rep.Err)
	}
}
