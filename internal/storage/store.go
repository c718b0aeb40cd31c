package storage

import (
	"context"
	"time"

	"snakeevo/internal/logging"
)

// Run describes one training run
type Run struct {
	ID         string
	Seed       int64
	Population int
	Config     []byte // effective configuration as YAML
	StartedAt  time.Time
}

// Store records the history of training runs, one summary per generation.
// Networks are never persisted.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	SaveGeneration(ctx context.Context, summary logging.GenerationSummary) error
	Generations(ctx context.Context, runID string) ([]logging.GenerationSummary, error)
}
