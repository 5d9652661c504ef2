package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammScope/internal/config"
	"ammScope/internal/engine"
	"ammScope/internal/model"
	"ammScope/internal/storage"
	"ammScope/internal/storage/postgres"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ops, err := engine.ReadOperations(cfg.Input)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolCfg, err := poolConfig(ctx, cfg.Pool, cfg.RPCURL, logger)
	if err != nil {
		return err
	}
	eng, err := engine.NewEngine(poolCfg, logger)
	if err != nil {
		return err
	}

	sinks := storage.MultiStorage{storage.NewJsonlStorage(cfg.Out, cfg.Errors)}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		var firstSeq uint64
		if len(ops) > 0 {
			firstSeq = ops[0].Seq
		}
		if err := store.UpsertPools(ctx, []model.Pool{eng.PoolRecord(firstSeq)}); err != nil {
			return fmt.Errorf("upsert pool: %w", err)
		}
		sinks = append(sinks, store)
	}

	runner := engine.NewRunner(engine.RunConfig{
		RunID:             cfg.RunID,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, eng, sinks, nil, logger)

	meta := eng.PoolMeta()
	logger.Info("replay start",
		zap.String("input", cfg.Input),
		zap.Int("operations", len(ops)),
		zap.String("pool", eng.Pool().Info().Address.Hex()),
		zap.String("share_symbol", meta.ShareSymbol),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	stats, err := runner.Run(ctx, ops)
	if err != nil {
		return err
	}

	state := eng.Pool().State()
	logger.Info("replay complete",
		zap.String("run_id", stats.RunID),
		zap.Int("total", stats.Total),
		zap.Int("replayed", stats.Replayed),
		zap.Int("applied", stats.Applied),
		zap.Int("rejected", stats.Rejected),
		zap.Int("events", stats.Events),
		zap.String("reserve_a", state.ReserveA.String()),
		zap.String("reserve_b", state.ReserveB.String()),
		zap.String("total_supply", state.TotalSupply.String()),
	)
	return nil
}
