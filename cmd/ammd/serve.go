package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammScope/internal/api"
	"ammScope/internal/config"
	"ammScope/internal/engine"
	"ammScope/internal/metrics"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

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

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	if cfg.Input != "" {
		if err := replay(eng, cfg.Input, m, logger); err != nil {
			return err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.NewServer(eng.Pool(), reg, logger.Named("api")).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("serve start", zap.String("addr", cfg.Addr), zap.String("pool", eng.Pool().Info().Address.Hex()))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("serve stopped")
	return nil
}

// replay applies every operation in path. Rejected operations are counted and
// logged at debug level.
func replay(eng *engine.Engine, path string, recorder engine.Recorder, logger *zap.Logger) error {
	ops, err := engine.ReadOperations(path)
	if err != nil {
		return err
	}

	var rejected int
	for _, op := range ops {
		events, err := eng.Apply(op)
		if err != nil {
			rejected++
			recorder.ObserveOperation(op.Op, engine.ResultRejected)
			logger.Debug("operation rejected", zap.Uint64("seq", op.Seq), zap.String("op", op.Op), zap.Error(err))
			continue
		}
		recorder.ObserveOperation(op.Op, engine.ResultOK)
		if len(events) > 0 {
			recorder.ObserveState(eng.Pool().State())
		}
	}

	logger.Info("replay complete", zap.Int("operations", len(ops)), zap.Int("rejected", rejected))
	return nil
}
