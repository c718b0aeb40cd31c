// Package trainer runs the generation loop: evaluate every world, record the
// outcome, breed the next population and publish a snapshot for viewers.
package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"snakeevo/internal/config"
	"snakeevo/internal/env"
	"snakeevo/internal/eval"
	"snakeevo/internal/ga"
	"snakeevo/internal/logging"
	"snakeevo/internal/nn"
	"snakeevo/internal/storage"
)

// benchmarkTop is how many of the fittest networks run the benchmark suite
const benchmarkTop = 5

// Snapshot is what an external renderer sees after each generation
type Snapshot struct {
	RunID      string   `json:"run_id"`
	Generation int      `json:"generation"`
	BestScore  int      `json:"best_score"` // best score so far in the run
	World      env.View `json:"world"`      // fittest member of the generation
}

// Option configures a Trainer
type Option func(*Trainer)

// WithLogger sets the structured logger
func WithLogger(log *slog.Logger) Option {
	return func(t *Trainer) { t.log = log }
}

// WithMetrics sets the per-generation metrics sink
func WithMetrics(m *logging.Logger) Option {
	return func(t *Trainer) { t.metrics = m }
}

// WithStore records the run and every generation summary. The store must
// already be initialized.
func WithStore(s storage.Store) Option {
	return func(t *Trainer) { t.store = s }
}

// WithSnapshots publishes a snapshot after every generation. The channel is
// used as a latest-value mailbox and should have a capacity of one; a value
// the consumer has not picked up yet is replaced, never waited on.
func WithSnapshots(ch chan Snapshot) Option {
	return func(t *Trainer) { t.snapshots = ch }
}

// Trainer owns the population and runs generations one at a time
type Trainer struct {
	cfg       *config.Config
	params    ga.Params
	runID     string
	rng       *rand.Rand
	evaluator *eval.Evaluator

	log       *slog.Logger
	metrics   *logging.Logger
	store     storage.Store
	snapshots chan Snapshot

	generation int
	worlds     []*env.World
	bestScore  int
	runSaved   bool
	startedAt  time.Time
}

// New validates the configuration and spawns generation zero from random
// networks
func New(cfg *config.Config, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	t := &Trainer{
		cfg:       cfg,
		params:    cfg.GAParams(),
		runID:     uuid.NewString(),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		evaluator: eval.NewEvaluator(cfg),
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	t.log = t.log.With("run", t.runID)
	if t.metrics == nil {
		// console only, no files to open
		t.metrics, _ = logging.NewLogger(t.log, "", "")
	}

	t.worlds = t.spawn(ga.RandomNetworks(cfg.GA.Population, cfg.NN.Layers, t.rng))
	return t, nil
}

// RunID identifies this training run
func (t *Trainer) RunID() string { return t.runID }

// Generation is the index of the generation the next Step evaluates
func (t *Trainer) Generation() int { return t.generation }

// BestScore is the highest score any member reached so far
func (t *Trainer) BestScore() int { return t.bestScore }

// Worlds returns the current population
func (t *Trainer) Worlds() []*env.World { return t.worlds }

// spawn wraps each network in a fresh world with its own goal seed
func (t *Trainer) spawn(networks []*nn.Network) []*env.World {
	worlds := make([]*env.World, len(networks))
	for i, n := range networks {
		worlds[i] = env.NewWorld(t.cfg.Env.Width, t.cfg.Env.Height, n, t.rng.Int63())
	}
	return worlds
}

// Step runs exactly one generation. Once evaluation starts the generation is
// finished even if ctx is cancelled; cancellation is honoured by Run between
// generations.
func (t *Trainer) Step(ctx context.Context) (logging.GenerationSummary, error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	gen := t.generation

	if err := t.saveRun(ctx); err != nil {
		return logging.GenerationSummary{}, err
	}

	if err := t.evaluator.Run(ctx, t.worlds); err != nil {
		return logging.GenerationSummary{}, fmt.Errorf("evaluating generation %d: %w", gen, err)
	}

	agents := make([]*ga.Agent, len(t.worlds))
	episodes := make([]env.EpisodeStats, len(t.worlds))
	for i, w := range t.worlds {
		if !w.HasFitness() {
			w.ComputeFitness()
		}
		agents[i] = ga.NewAgent(w.Network)
		agents[i].Fitness = w.Fitness
		agents[i].Stats = w.Stats()
		episodes[i] = agents[i].Stats
		t.bestScore = max(t.bestScore, w.Score)
	}
	// agents and worlds share indices
	best := t.worlds[ga.Best(agents)]

	summary := logging.NewGenerationSummary(t.runID, gen, env.Aggregate(episodes), t.bestScore, time.Since(start))
	if err := t.metrics.LogGeneration(summary); err != nil {
		t.log.Warn("failed to write generation summary", "gen", gen, "err", err)
	}
	if t.store != nil {
		if err := t.store.SaveGeneration(ctx, summary); err != nil {
			return summary, fmt.Errorf("storing generation %d: %w", gen, err)
		}
	}

	t.publish(Snapshot{
		RunID:      t.runID,
		Generation: gen,
		BestScore:  t.bestScore,
		World:      best.View(),
	})

	if t.cfg.Logging.TopNDebug > 0 {
		t.metrics.LogTopK(gen, agents, t.cfg.Logging.TopNDebug)
	}

	if every := t.cfg.Eval.BenchmarkEvery; every > 0 && gen > 0 && gen%every == 0 {
		results, err := t.evaluator.Benchmark(ctx, ga.Elites(agents, benchmarkTop), t.cfg.Eval.BenchmarkSeeds)
		if err != nil {
			return summary, fmt.Errorf("benchmarking generation %d: %w", gen, err)
		}
		t.metrics.LogBenchmark(gen, results)
	}

	if every := t.cfg.Eval.ReplayEvery; every > 0 && gen > 0 && gen%every == 0 {
		t.saveReplay(gen, best)
	}

	t.worlds = t.spawn(ga.Recombine(agents, t.params, t.rng))
	t.generation++
	return summary, nil
}

// Run steps until ctx is cancelled or the configured number of generations
// has been evaluated. Cancellation is not an error.
func (t *Trainer) Run(ctx context.Context) error {
	t.log.Info("training started",
		"population", humanize.Comma(int64(t.cfg.GA.Population)),
		"elites", t.cfg.GA.Elites,
		"field", fmt.Sprintf("%dx%d", t.cfg.Env.Width, t.cfg.Env.Height),
		"layers", t.cfg.NN.Layers,
		"workers", t.evaluator.Workers(),
	)

	for {
		if limit := t.cfg.Generations; limit > 0 && t.generation >= limit {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if _, err := t.Step(ctx); err != nil {
			return err
		}
	}

	t.log.Info("training stopped",
		"generations", t.generation,
		"best_score", t.bestScore,
		"elapsed", time.Since(t.startedAt).Round(time.Millisecond),
	)
	return nil
}

// publish replaces any snapshot still waiting in the mailbox
func (t *Trainer) publish(s Snapshot) {
	if t.snapshots == nil {
		return
	}
	select {
	case <-t.snapshots:
	default:
	}
	select {
	case t.snapshots <- s:
	default:
	}
}

func (t *Trainer) saveRun(ctx context.Context) error {
	if t.store == nil || t.runSaved {
		return nil
	}
	cfgYAML, err := t.cfg.YAML()
	if err != nil {
		return err
	}
	run := storage.Run{
		ID:         t.runID,
		Seed:       t.cfg.Seed,
		Population: t.cfg.GA.Population,
		Config:     cfgYAML,
		StartedAt:  t.startedAt,
	}
	if err := t.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("storing run: %w", err)
	}
	t.runSaved = true
	return nil
}

// saveReplay re-plays the best member on its own seed and writes the trace
func (t *Trainer) saveReplay(gen int, best *env.World) {
	replay, stats := t.evaluator.EvaluateWithReplay(best.Network, best.Seed)
	replay.Generation = gen

	path := filepath.Join(t.cfg.Logging.ArtifactsDir, fmt.Sprintf("replay_gen%d.json", gen))
	if err := replay.Save(path); err != nil {
		t.log.Warn("failed to save replay", "gen", gen, "err", err)
		return
	}
	t.metrics.LogReplay(gen, path, stats)
}
