package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"snakeevo/internal/config"
	"snakeevo/internal/logging"
	"snakeevo/internal/server"
	"snakeevo/internal/storage"
	"snakeevo/internal/trainer"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "configs/default.yaml", "path to a YAML or INI config file")
	generations := flag.Int("generations", -1, "number of generations to run (0 runs until interrupted, -1 keeps the config value)")
	flag.Parse()

	if err := run(*configPath, *generations); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, generations int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if generations >= 0 {
		cfg.Generations = generations
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	handler, err := logging.NewHandler(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	log := slog.New(handler)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, err := logging.NewLogger(log, cfg.Logging.CSVPath, cfg.Logging.JSONPath)
	if err != nil {
		return fmt.Errorf("creating metrics logger: %w", err)
	}
	defer metrics.Close()

	store, err := storage.NewStore(cfg.Storage.Kind, cfg.Storage.Path)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Storage.Kind, err)
	}
	defer storage.CloseIfSupported(store)

	opts := []trainer.Option{
		trainer.WithLogger(log),
		trainer.WithMetrics(metrics),
		trainer.WithStore(store),
	}

	var snapshots chan trainer.Snapshot
	if cfg.Server.Addr != "" {
		snapshots = make(chan trainer.Snapshot, 1)
		opts = append(opts, trainer.WithSnapshots(snapshots))
	}

	t, err := trainer.New(cfg, opts...)
	if err != nil {
		return err
	}

	if cfg.Logging.ArtifactsDir != "" {
		path := filepath.Join(cfg.Logging.ArtifactsDir, t.RunID(), "config.yaml")
		if err := cfg.WriteYAML(path); err != nil {
			log.Warn("failed to save effective config", "path", path, "err", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	trainCtx, stopTraining := context.WithCancel(gctx)
	defer stopTraining()

	if snapshots != nil {
		srv := server.New(log)
		g.Go(func() error {
			srv.Consume(trainCtx, snapshots)
			return nil
		})
		g.Go(func() error {
			return srv.ListenAndServe(trainCtx, cfg.Server.Addr)
		})
	}
	g.Go(func() error {
		// training finishing also stops the server
		defer stopTraining()
		return t.Run(trainCtx)
	})

	return g.Wait()
}
