package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	want := Default()
	if err := Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Scenarios) != len(want.Scenarios) {
		t.Fatalf("scenarios = %d, want %d", len(got.Scenarios), len(want.Scenarios))
	}
	for i, s := range got.Scenarios {
		w := want.Scenarios[i]
		if s.Name != w.Name || s.EnvFile != w.EnvFile || s.FocalTaxon != w.FocalTaxon {
			t.Errorf("scenario %d = %+v, want %+v", i, s, w)
		}
		if s.Axis1VarPct != w.Axis1VarPct || s.Axis2VarPct != w.Axis2VarPct {
			t.Errorf("scenario %d axis percentages = %g/%g, want %g/%g",
				i, s.Axis1VarPct, s.Axis2VarPct, w.Axis1VarPct, w.Axis2VarPct)
		}
	}
	if got.Seed != want.Seed {
		t.Errorf("seed = %d, want %d", got.Seed, want.Seed)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			"no scenarios",
			"out_dir: figures\n",
			"no scenarios",
		},
		{
			"missing focal taxon",
			"scenarios:\n  - name: monthly\n    env_file: e.csv\n    abundance_file: a.csv\n",
			"focal_taxon",
		},
		{
			"duplicate names",
			"scenarios:\n" +
				"  - {name: monthly, env_file: e.csv, abundance_file: a.csv, focal_taxon: Tripos}\n" +
				"  - {name: monthly, env_file: e2.csv, abundance_file: a2.csv, focal_taxon: Tripos}\n",
			"duplicate scenario name",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenarios.yaml")
			if err := writeFile(path, tc.yaml); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestEffectiveSeed(t *testing.T) {
	c := &Config{Seed: 42, Scenarios: []Scenario{{Name: "a"}, {Name: "b", Seed: 7}}}
	if got := c.EffectiveSeed(&c.Scenarios[0]); got != 42 {
		t.Errorf("default seed = %d, want 42", got)
	}
	if got := c.EffectiveSeed(&c.Scenarios[1]); got != 7 {
		t.Errorf("override seed = %d, want 7", got)
	}
}
