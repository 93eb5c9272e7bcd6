package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Scenario describes one sampling-frequency analysis: its input tables, the
// focal taxon modeled by regression, the declarative list of environmental
// columns to exclude, and the externally supplied explained-variance
// percentages used to annotate the ordination axes. Scenarios are built at
// startup and never mutated.
type Scenario struct {
	Name          string  `mapstructure:"name" yaml:"name"`
	EnvFile       string  `mapstructure:"env_file" yaml:"env_file"`
	AbundanceFile string  `mapstructure:"abundance_file" yaml:"abundance_file"`
	Axis1VarPct   float64 `mapstructure:"axis1_var_pct" yaml:"axis1_var_pct"`
	Axis2VarPct   float64 `mapstructure:"axis2_var_pct" yaml:"axis2_var_pct"`
	FocalTaxon    string  `mapstructure:"focal_taxon" yaml:"focal_taxon"`
	// DropEnvColumns lists predictors removed for this scenario, e.g. a
	// variable collinear with a retained one. Declarative so removals stay
	// auditable and order-independent.
	DropEnvColumns []string `mapstructure:"drop_env_columns" yaml:"drop_env_columns"`
	// RenameEnvColumns, when set, renames the surviving predictors
	// positionally.
	RenameEnvColumns []string `mapstructure:"rename_env_columns" yaml:"rename_env_columns,omitempty"`
	// Seed drives the train/test split; zero falls back to the global
	// default so every scenario stays reproducible.
	Seed    int64  `mapstructure:"seed" yaml:"seed,omitempty"`
	OutFile string `mapstructure:"out_file" yaml:"out_file,omitempty"`
}

// Config is the full run configuration.
type Config struct {
	OutDir    string     `mapstructure:"out_dir" yaml:"out_dir"`
	Seed      int64      `mapstructure:"seed" yaml:"seed"`
	Scenarios []Scenario `mapstructure:"scenarios" yaml:"scenarios"`
}

// EffectiveSeed resolves a scenario's split seed against the global default.
func (c *Config) EffectiveSeed(s *Scenario) int64 {
	if s.Seed != 0 {
		return s.Seed
	}
	return c.Seed
}

// Load reads configuration from file and environment.
// Precedence: env (PHYTO_*) > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PHYTO")
	v.AutomaticEnv()

	v.SetDefault("out_dir", "figures")
	v.SetDefault("seed", 42)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("scenarios")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("config defines no scenarios")
	}
	seen := make(map[string]bool, len(c.Scenarios))
	for i := range c.Scenarios {
		s := &c.Scenarios[i]
		if s.Name == "" {
			return fmt.Errorf("scenario %d has no name", i+1)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate scenario name %q", s.Name)
		}
		seen[s.Name] = true
		if s.EnvFile == "" || s.AbundanceFile == "" {
			return fmt.Errorf("scenario %q: env_file and abundance_file are required", s.Name)
		}
		if s.FocalTaxon == "" {
			return fmt.Errorf("scenario %q: focal_taxon is required", s.Name)
		}
	}
	return nil
}

// Save writes the configuration as YAML, creating parent directories.
func Save(c *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Default returns a starter configuration for the three sampling-frequency
// scenarios, ready to edit.
func Default() *Config {
	return &Config{
		OutDir: "figures",
		Seed:   42,
		Scenarios: []Scenario{
			{
				Name:           "low-frequency",
				EnvFile:        "data/env_low_frequency.csv",
				AbundanceFile:  "data/taxa_low_frequency.csv",
				Axis1VarPct:    41.8,
				Axis2VarPct:    26.3,
				FocalTaxon:     "Tripos",
				DropEnvColumns: []string{"Salinity_bottom"},
			},
			{
				Name:           "neap-spring",
				EnvFile:        "data/env_neap_spring.csv",
				AbundanceFile:  "data/taxa_neap_spring.csv",
				Axis1VarPct:    38.5,
				Axis2VarPct:    24.9,
				FocalTaxon:     "Tripos",
				DropEnvColumns: []string{"Salinity_bottom"},
			},
			{
				Name:           "monthly",
				EnvFile:        "data/env_monthly.csv",
				AbundanceFile:  "data/taxa_monthly.csv",
				Axis1VarPct:    45.1,
				Axis2VarPct:    22.7,
				FocalTaxon:     "Tripos",
				DropEnvColumns: []string{"Salinity_bottom"},
			},
		},
	}
}
