package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"snakeevo/internal/env"
	"snakeevo/internal/ga"
)

// Config is the root configuration structure
type Config struct {
	Seed        int64         `yaml:"seed" ini:"seed"`
	Generations int           `yaml:"generations" ini:"generations"` // 0 runs until stopped
	Env         EnvConfig     `yaml:"env" ini:"env"`
	NN          NNConfig      `yaml:"nn" ini:"nn"`
	GA          GAConfig      `yaml:"ga" ini:"ga"`
	Eval        EvalConfig    `yaml:"eval" ini:"eval"`
	Logging     LogConfig     `yaml:"logging" ini:"logging"`
	Storage     StorageConfig `yaml:"storage" ini:"storage"`
	Server      ServerConfig  `yaml:"server" ini:"server"`
}

// EnvConfig defines the playing field
type EnvConfig struct {
	Width  int `yaml:"width" ini:"width"`
	Height int `yaml:"height" ini:"height"`
}

// NNConfig defines neural network architecture
type NNConfig struct {
	Layers []int `yaml:"layers" ini:"layers" delim:","` // input size first
}

// GAConfig defines genetic algorithm parameters
type GAConfig struct {
	Population     int     `yaml:"population" ini:"population"`
	Elites         int     `yaml:"elites" ini:"elites"`
	MutationRate   float64 `yaml:"mutation_rate" ini:"mutation_rate"`
	TournamentSize int     `yaml:"tournament_size" ini:"tournament_size"`
	CrossoverSwap  float64 `yaml:"crossover_swap" ini:"crossover_swap"`
}

// EvalConfig defines evaluation parameters
type EvalConfig struct {
	Workers        int     `yaml:"workers" ini:"workers"` // 0 uses every CPU
	BenchmarkEvery int     `yaml:"benchmark_every" ini:"benchmark_every"`
	BenchmarkSeeds []int64 `yaml:"benchmark_seeds" ini:"benchmark_seeds" delim:","`
	ReplayEvery    int     `yaml:"replay_every" ini:"replay_every"`
}

// LogConfig defines logging parameters
type LogConfig struct {
	Level        string `yaml:"level" ini:"level"`   // debug|info|warn|error
	Format       string `yaml:"format" ini:"format"` // auto|text|json
	CSVPath      string `yaml:"csv_path" ini:"csv_path"`
	JSONPath     string `yaml:"json_path" ini:"json_path"`
	ArtifactsDir string `yaml:"artifacts_dir" ini:"artifacts_dir"`
	TopNDebug    int    `yaml:"topn_debug" ini:"topn_debug"`
}

// StorageConfig selects the run-history backend
type StorageConfig struct {
	Kind string `yaml:"kind" ini:"kind"` // memory|sqlite
	Path string `yaml:"path" ini:"path"`
}

// ServerConfig enables the snapshot feed when Addr is set
type ServerConfig struct {
	Addr string `yaml:"addr" ini:"addr"`
}

// Load reads a YAML or INI config file and returns a Config
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := newConfig()
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		err = decodeINI(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Apply defaults
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns a config with every default applied
func Default() *Config {
	cfg := newConfig()
	applyDefaults(cfg)
	return cfg
}

// newConfig presets the settings for which 0 is a meaningful value, so a file
// can still set them to 0 explicitly
func newConfig() *Config {
	return &Config{
		Seed: 1337,
		GA: GAConfig{
			MutationRate:  0.02,
			CrossoverSwap: 0.5,
		},
	}
}

// decodeINI maps top-level keys and one section per nested struct
func decodeINI(data []byte, cfg *Config) error {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return err
	}

	root := f.Section(ini.DefaultSection)
	cfg.Seed = root.Key("seed").MustInt64(cfg.Seed)
	cfg.Generations = root.Key("generations").MustInt(cfg.Generations)

	sections := map[string]interface{}{
		"env":     &cfg.Env,
		"nn":      &cfg.NN,
		"ga":      &cfg.GA,
		"eval":    &cfg.Eval,
		"logging": &cfg.Logging,
		"storage": &cfg.Storage,
		"server":  &cfg.Server,
	}
	for name, dst := range sections {
		if !f.HasSection(name) {
			continue
		}
		if err := f.Section(name).MapTo(dst); err != nil {
			return fmt.Errorf("section [%s]: %w", name, err)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Env.Width == 0 {
		cfg.Env.Width = 40
	}
	if cfg.Env.Height == 0 {
		cfg.Env.Height = 40
	}
	if len(cfg.NN.Layers) == 0 {
		cfg.NN.Layers = []int{env.InputSize, 24, 12, env.OutputCount}
	}
	// Elites and tournament size scale with a custom population
	if cfg.GA.Population == 0 {
		cfg.GA.Population = 1000
		if cfg.GA.Elites == 0 {
			cfg.GA.Elites = 40
		}
	}
	if cfg.GA.TournamentSize == 0 {
		cfg.GA.TournamentSize = max(1, cfg.GA.Population/10)
	}
	if len(cfg.Eval.BenchmarkSeeds) == 0 {
		cfg.Eval.BenchmarkSeeds = []int64{2000, 2001, 2002, 2003, 2004, 2005, 2006, 2007, 2008, 2009}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "auto"
	}
	if cfg.Logging.ArtifactsDir == "" {
		cfg.Logging.ArtifactsDir = "artifacts"
	}
	if cfg.Storage.Kind == "" {
		cfg.Storage.Kind = "memory"
	}
}

// Validate checks the constraints the trainer relies on
func (c *Config) Validate() error {
	switch {
	case c.Env.Width < 3 || c.Env.Height < 3:
		return fmt.Errorf("env: field %dx%d is too small, need at least 3x3", c.Env.Width, c.Env.Height)
	case len(c.NN.Layers) < 2:
		return errors.New("nn: layers must list the input size and at least one layer")
	case c.NN.Layers[0] != env.InputSize:
		return fmt.Errorf("nn: input layer must have %d neurons, got %d", env.InputSize, c.NN.Layers[0])
	case c.NN.Layers[len(c.NN.Layers)-1] != env.OutputCount:
		return fmt.Errorf("nn: output layer must have %d neurons, got %d", env.OutputCount, c.NN.Layers[len(c.NN.Layers)-1])
	case c.GA.Population < 2:
		return fmt.Errorf("ga: population must be at least 2, got %d", c.GA.Population)
	case c.GA.Elites < 0 || c.GA.Elites > c.GA.Population:
		return fmt.Errorf("ga: elites must be within [0, %d], got %d", c.GA.Population, c.GA.Elites)
	case (c.GA.Population-c.GA.Elites)%2 != 0:
		return fmt.Errorf("ga: population minus elites must be even, got %d", c.GA.Population-c.GA.Elites)
	case c.GA.TournamentSize < 1 || c.GA.TournamentSize >= c.GA.Population:
		return fmt.Errorf("ga: tournament size must be within [1, %d), got %d", c.GA.Population, c.GA.TournamentSize)
	case c.GA.MutationRate < 0 || c.GA.MutationRate > 1:
		return fmt.Errorf("ga: mutation rate must be within [0, 1], got %g", c.GA.MutationRate)
	case c.GA.CrossoverSwap < 0 || c.GA.CrossoverSwap > 1:
		return fmt.Errorf("ga: crossover swap must be within [0, 1], got %g", c.GA.CrossoverSwap)
	case c.Storage.Kind == "sqlite" && c.Storage.Path == "":
		return errors.New("storage: sqlite requires a path")
	}
	for i, size := range c.NN.Layers {
		if size < 1 {
			return fmt.Errorf("nn: layer %d has no neurons", i)
		}
	}
	return nil
}

// YAML encodes the effective configuration
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// GAParams returns the genetic algorithm settings
func (c *Config) GAParams() ga.Params {
	return ga.Params{
		Population:     c.GA.Population,
		Elites:         c.GA.Elites,
		TournamentSize: c.GA.TournamentSize,
		MutationRate:   c.GA.MutationRate,
		CrossoverSwap:  c.GA.CrossoverSwap,
	}
}

// WriteYAML saves the effective configuration next to the run artifacts
func (c *Config) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := c.YAML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
