package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"snakeevo/internal/logging"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
	generations map[string]map[int]logging.GenerationSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	s.generations = make(map[string]map[int]logging.GenerationSummary)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	run.Config = append([]byte(nil), run.Config...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, summary logging.GenerationSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	gens, ok := s.generations[summary.RunID]
	if !ok {
		gens = make(map[int]logging.GenerationSummary)
		s.generations[summary.RunID] = gens
	}
	gens[summary.Generation] = summary
	return nil
}

func (s *MemoryStore) Generations(_ context.Context, runID string) ([]logging.GenerationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gens := s.generations[runID]
	out := make([]logging.GenerationSummary, 0, len(gens))
	for _, g := range gens {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}
