package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ammScope/internal/chain"
	"ammScope/internal/config"
	"ammScope/internal/dex"
	"ammScope/internal/engine"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "ammd",
		Short:        "Constant-product pool replay and analytics",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Replay an operations file through a pool",
		RunE:  runReplay,
	}

	runCmd.Flags().String("in", "", "input operations JSONL")
	runCmd.Flags().String("out", "./data/events.jsonl", "output pool events JSONL")
	runCmd.Flags().String("errors", "./data/errors.jsonl", "rejected operations JSONL (empty to discard)")
	addPoolFlags(runCmd)
	runCmd.Flags().Uint64("batch-size", 500, "operations per batch")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().String("run-id", "", "run identifier (generated when empty)")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts for storage writes")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for events")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote an exact-input swap against a live pair",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("rpc", "", "RPC URL")
	quoteCmd.Flags().String("pair", "", "pair contract address")
	quoteCmd.Flags().String("token-in", "", "input token address")
	quoteCmd.Flags().String("amount-in", "", "input amount in base units")
	quoteCmd.Flags().Uint64("block", 0, "block number, 0 means latest")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate pool events into window metrics",
		RunE:  runAggregate,
	}

	aggregateCmd.Flags().String("rpc", "", "optional RPC URL for token decimals and balances")
	aggregateCmd.Flags().String("in", "./data/events.jsonl", "input pool events JSONL")
	aggregateCmd.Flags().String("window", "1h", "aggregation window (e.g. 1m, 5m, 1h)")
	aggregateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	aggregateCmd.Flags().Int("batch-size", 1000, "batch size for DB writes")
	aggregateCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	aggregateCmd.Flags().String("recompute-from", "", "recompute from timestamp (unix seconds or RFC3339)")
	aggregateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(aggregateCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Replay operations and serve pool queries over HTTP",
		RunE:  runServe,
	}

	serveCmd.Flags().String("in", "", "optional operations JSONL to replay before serving")
	addPoolFlags(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Duration("shutdown-timeout", 5*time.Second, "graceful shutdown timeout")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("assets", nil, "the two pool asset addresses (comma-separated)")
	cmd.Flags().StringSlice("symbols", nil, "asset symbols (comma-separated, looked up over RPC when empty)")
	cmd.Flags().StringSlice("decimals", nil, "asset decimals (comma-separated, looked up over RPC when empty)")
	cmd.Flags().String("rpc", "", "optional RPC URL for token metadata")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// poolConfig turns pool settings into an engine config, filling symbols and
// decimals from token contracts when they are not configured.
func poolConfig(ctx context.Context, settings config.PoolSettings, rpcURL string, logger *zap.Logger) (engine.PoolConfig, error) {
	var cfg engine.PoolConfig
	assetA, err := engine.ParseAddress(settings.Assets[0])
	if err != nil {
		return cfg, fmt.Errorf("asset a: %w", err)
	}
	assetB, err := engine.ParseAddress(settings.Assets[1])
	if err != nil {
		return cfg, fmt.Errorf("asset b: %w", err)
	}
	cfg.AssetA, cfg.AssetB = assetA, assetB

	if len(settings.Symbols) == 2 {
		cfg.SymbolA, cfg.SymbolB = settings.Symbols[0], settings.Symbols[1]
	}
	if len(settings.Decimals) == 2 {
		cfg.DecimalsA, cfg.DecimalsB = settings.Decimals[0], settings.Decimals[1]
	}
	if rpcURL == "" || (len(settings.Symbols) == 2 && len(settings.Decimals) == 2) {
		return cfg, nil
	}

	chainClient, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return cfg, fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	cache := dex.NewTokenMetaCache()
	metaA, err := cache.Resolve(ctx, chainClient, assetA, logger)
	if err != nil {
		return cfg, fmt.Errorf("asset a metadata: %w", err)
	}
	metaB, err := cache.Resolve(ctx, chainClient, assetB, logger)
	if err != nil {
		return cfg, fmt.Errorf("asset b metadata: %w", err)
	}

	if len(settings.Symbols) != 2 {
		cfg.SymbolA, cfg.SymbolB = metaA.Label(), metaB.Label()
	}
	if len(settings.Decimals) != 2 {
		cfg.DecimalsA, cfg.DecimalsB = metaA.Decimals, metaB.Decimals
	}
	logger.Info("token metadata resolved",
		zap.String("symbol_a", cfg.SymbolA),
		zap.String("symbol_b", cfg.SymbolB),
		zap.Uint8("decimals_a", cfg.DecimalsA),
		zap.Uint8("decimals_b", cfg.DecimalsB),
	)
	return cfg, nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
