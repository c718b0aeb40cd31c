package eval

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"snakeevo/internal/config"
	"snakeevo/internal/env"
	"snakeevo/internal/nn"
)

// Evaluator runs worlds to completion and gathers their statistics
type Evaluator struct {
	width   int
	height  int
	workers int
}

// NewEvaluator creates a new evaluator
func NewEvaluator(cfg *config.Config) *Evaluator {
	workers := cfg.Eval.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Evaluator{
		width:   cfg.Env.Width,
		height:  cfg.Env.Height,
		workers: workers,
	}
}

// Workers returns the number of worlds simulated at once
func (e *Evaluator) Workers() int {
	return e.workers
}

// RunWorld ticks a world until it dies, applying the starvation rule
func RunWorld(w *env.World) env.EpisodeStats {
	for w.Alive {
		w.Tick()
		if w.Alive && w.Starving() {
			w.Kill(env.DeathStarved)
		}
	}
	w.ComputeFitness()
	return w.Stats()
}

// Run simulates every world to completion. Worlds share nothing, so each one
// runs on its own goroutine, bounded by the worker count. A cancelled context
// stops worlds that have not started yet.
func (e *Evaluator) Run(ctx context.Context, worlds []*env.World) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, w := range worlds {
		if gctx.Err() != nil {
			break
		}
		w := w
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			RunWorld(w)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// gctx is always cancelled once Wait returns; only the caller's ctx counts
	return ctx.Err()
}

// EvaluateNetwork plays one episode with the given network and seed
func (e *Evaluator) EvaluateNetwork(network *nn.Network, seed int64) env.EpisodeStats {
	return RunWorld(env.NewWorld(e.width, e.height, network, seed))
}

// Benchmark plays every network on the fixed seed suite, one aggregate per
// network in input order
func (e *Evaluator) Benchmark(ctx context.Context, networks []*nn.Network, seeds []int64) ([]env.AggregatedStats, error) {
	episodes := make([][]env.EpisodeStats, len(networks))
	for i := range episodes {
		episodes[i] = make([]env.EpisodeStats, len(seeds))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, network := range networks {
		for j, seed := range seeds {
			i, network, j, seed := i, network, j, seed
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				episodes[i][j] = e.EvaluateNetwork(network, seed)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]env.AggregatedStats, len(networks))
	for i := range episodes {
		results[i] = env.Aggregate(episodes[i])
	}
	return results, nil
}

// EvaluateWithReplay runs an episode and records directions for replay
func (e *Evaluator) EvaluateWithReplay(network *nn.Network, seed int64) (*env.Replay, env.EpisodeStats) {
	w := env.NewWorld(e.width, e.height, network, seed)
	replay := env.NewReplay(seed, env.ReplayConfig{Width: e.width, Height: e.height})

	for w.Alive {
		dir := w.Decide()
		replay.Record(dir)
		w.Advance(dir)
		if w.Alive && w.Starving() {
			w.Kill(env.DeathStarved)
		}
	}

	w.ComputeFitness()
	stats := w.Stats()
	replay.SetFinalStats(stats)
	return replay, stats
}
