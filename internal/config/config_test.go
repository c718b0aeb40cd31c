package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakeevo/internal/env"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1000, cfg.GA.Population)
	assert.Equal(t, 40, cfg.GA.Elites)
	assert.Equal(t, 0.02, cfg.GA.MutationRate)
	assert.Equal(t, 100, cfg.GA.TournamentSize)
	assert.Equal(t, 0.5, cfg.GA.CrossoverSwap)
	assert.Equal(t, 40, cfg.Env.Width)
	assert.Equal(t, 40, cfg.Env.Height)
	assert.Equal(t, []int{env.InputSize, 24, 12, env.OutputCount}, cfg.NN.Layers)
	assert.Equal(t, "memory", cfg.Storage.Kind)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
seed: 9
generations: 25
env:
  width: 20
  height: 12
ga:
  population: 60
  elites: 4
  crossover_swap: 0.3
eval:
  workers: 2
  benchmark_seeds: [1, 2, 3]
logging:
  level: debug
  csv_path: out/gens.csv
storage:
  kind: sqlite
  path: out/runs.db
server:
  addr: ":8080"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, 25, cfg.Generations)
	assert.Equal(t, 20, cfg.Env.Width)
	assert.Equal(t, 12, cfg.Env.Height)
	assert.Equal(t, 60, cfg.GA.Population)
	assert.Equal(t, 4, cfg.GA.Elites)
	assert.Equal(t, 6, cfg.GA.TournamentSize, "tournament defaults to a tenth of a custom population")
	assert.Equal(t, 0.3, cfg.GA.CrossoverSwap)
	assert.Equal(t, 0.02, cfg.GA.MutationRate)
	assert.Equal(t, []int64{1, 2, 3}, cfg.Eval.BenchmarkSeeds)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "sqlite", cfg.Storage.Kind)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadINI(t *testing.T) {
	path := writeFile(t, "run.ini", `
seed = 7
generations = 5

[env]
width = 18
height = 14

[nn]
layers = 31,8,4

[ga]
population = 50
elites = 4
mutation_rate = 0.05

[eval]
benchmark_seeds = 4,5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 5, cfg.Generations)
	assert.Equal(t, 18, cfg.Env.Width)
	assert.Equal(t, 14, cfg.Env.Height)
	assert.Equal(t, []int{31, 8, 4}, cfg.NN.Layers)
	assert.Equal(t, 50, cfg.GA.Population)
	assert.Equal(t, 4, cfg.GA.Elites)
	assert.Equal(t, 0.05, cfg.GA.MutationRate)
	assert.Equal(t, 5, cfg.GA.TournamentSize)
	assert.Equal(t, []int64{4, 5}, cfg.Eval.BenchmarkSeeds)
	assert.NoError(t, cfg.Validate())
}

func TestLoadKeepsExplicitZeros(t *testing.T) {
	for name, content := range map[string]string{
		"zero.yaml": `
seed: 0
ga:
  mutation_rate: 0
  crossover_swap: 0
`,
		"zero.ini": `
seed = 0

[ga]
mutation_rate = 0
crossover_swap = 0
`,
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, name, content))
			require.NoError(t, err)

			assert.Equal(t, int64(0), cfg.Seed)
			assert.Equal(t, 0.0, cfg.GA.MutationRate)
			assert.Equal(t, 0.0, cfg.GA.CrossoverSwap)
			assert.Equal(t, 1000, cfg.GA.Population)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "ga: [unclosed"))
	assert.ErrorContains(t, err, "bad.yaml")
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Seed = 99
	cfg.GA.Population = 20
	cfg.GA.Elites = 2
	cfg.GA.TournamentSize = 3

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"tiny field":         func(c *Config) { c.Env.Width = 2 },
		"no layers":          func(c *Config) { c.NN.Layers = []int{env.InputSize} },
		"wrong input":        func(c *Config) { c.NN.Layers = []int{27, 8, env.OutputCount} },
		"wrong output":       func(c *Config) { c.NN.Layers = []int{env.InputSize, 8, 3} },
		"empty hidden layer": func(c *Config) { c.NN.Layers = []int{env.InputSize, 0, env.OutputCount} },
		"population of one":  func(c *Config) { c.GA.Population = 1; c.GA.Elites = 1; c.GA.TournamentSize = 1 },
		"too many elites":    func(c *Config) { c.GA.Elites = 1002 },
		"odd remainder":      func(c *Config) { c.GA.Elites = 41 },
		"tournament too big": func(c *Config) { c.GA.TournamentSize = 1000 },
		"tournament zero":    func(c *Config) { c.GA.TournamentSize = 0 },
		"mutation above one": func(c *Config) { c.GA.MutationRate = 1.5 },
		"negative swap":      func(c *Config) { c.GA.CrossoverSwap = -0.1 },
		"sqlite without path": func(c *Config) {
			c.Storage.Kind = "sqlite"
			c.Storage.Path = ""
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGAParams(t *testing.T) {
	p := Default().GAParams()
	assert.Equal(t, 1000, p.Population)
	assert.Equal(t, 40, p.Elites)
	assert.Equal(t, 100, p.TournamentSize)
	assert.Equal(t, 0.02, p.MutationRate)
	assert.Equal(t, 0.5, p.CrossoverSwap)
}
