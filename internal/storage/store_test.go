package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"snakeevo/internal/logging"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db")),
	}
	for name, store := range stores {
		if err := store.Init(ctx); err != nil {
			t.Fatalf("%s init: %v", name, err)
		}
		t.Cleanup(func() {
			_ = CloseIfSupported(store)
		})
	}
	return stores
}

func TestStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			run := Run{ID: "run-1", Seed: 42, Population: 100, Config: []byte("seed: 42\n"), StartedAt: started}
			if err := store.SaveRun(ctx, run); err != nil {
				t.Fatalf("save run: %v", err)
			}

			loaded, ok, err := store.GetRun(ctx, "run-1")
			if err != nil {
				t.Fatalf("get run: %v", err)
			}
			if !ok {
				t.Fatal("expected persisted run")
			}
			if loaded.Seed != 42 || loaded.Population != 100 || string(loaded.Config) != "seed: 42\n" {
				t.Fatalf("unexpected run: %+v", loaded)
			}
			if !loaded.StartedAt.Equal(started) {
				t.Fatalf("started at %v, want %v", loaded.StartedAt, started)
			}

			_, ok, err = store.GetRun(ctx, "missing")
			if err != nil {
				t.Fatalf("get missing run: %v", err)
			}
			if ok {
				t.Fatal("expected missing run to be absent")
			}
		})
	}
}

func TestStoreGenerationsOrderedAndUpserted(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, gen := range []int{2, 0, 1} {
				s := logging.GenerationSummary{RunID: "run-1", Generation: gen, BestFitness: gen * 10, MeanFitness: 1.5}
				if err := store.SaveGeneration(ctx, s); err != nil {
					t.Fatalf("save generation %d: %v", gen, err)
				}
			}
			// rewriting a generation replaces it
			if err := store.SaveGeneration(ctx, logging.GenerationSummary{RunID: "run-1", Generation: 1, BestFitness: 99}); err != nil {
				t.Fatalf("overwrite generation: %v", err)
			}
			if err := store.SaveGeneration(ctx, logging.GenerationSummary{RunID: "run-2", Generation: 0}); err != nil {
				t.Fatalf("save other run: %v", err)
			}

			gens, err := store.Generations(ctx, "run-1")
			if err != nil {
				t.Fatalf("generations: %v", err)
			}
			if len(gens) != 3 {
				t.Fatalf("expected 3 generations, got %d", len(gens))
			}
			for i, g := range gens {
				if g.Generation != i {
					t.Fatalf("generation %d at position %d", g.Generation, i)
				}
			}
			if gens[1].BestFitness != 99 || gens[2].MeanFitness != 1.5 {
				t.Fatalf("unexpected generations: %+v", gens)
			}

			empty, err := store.Generations(ctx, "nope")
			if err != nil {
				t.Fatalf("generations of unknown run: %v", err)
			}
			if len(empty) != 0 {
				t.Fatalf("expected no generations, got %d", len(empty))
			}
		})
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err := store.SaveGeneration(context.Background(), logging.GenerationSummary{}); err == nil {
		t.Fatal("expected error before init")
	}
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNewStoreMemory(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	if store == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestNewStoreSQLite(t *testing.T) {
	store, err := NewStore("sqlite", filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	_, err := NewStore("unknown", "")
	if err == nil {
		t.Fatal("expected unsupported store error")
	}
}
