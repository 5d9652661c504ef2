package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ammScope/internal/amm"
	"ammScope/internal/model"
	"ammScope/internal/storage"
)

const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
)

// Recorder observes applied operations and the resulting pool state.
type Recorder interface {
	ObserveOperation(op, result string)
	ObserveState(state amm.State)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string) {}
func (nopRecorder) ObserveState(amm.State) {}

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	RunID             string
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// RunStats summarizes a replay.
type RunStats struct {
	RunID    string
	Total    int
	Replayed int
	Applied  int
	Rejected int
	Events   int
}

// Runner replays operations through an Engine and writes the emitted pool
// events to storage in batches.
type Runner struct {
	cfg        RunConfig
	engine     *Engine
	storage    storage.Storage
	recorder   Recorder
	logger     *zap.Logger
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies. recorder may be nil.
func NewRunner(cfg RunConfig, engine *Engine, storageSink storage.Storage, recorder Recorder, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Runner{
		cfg:        cfg,
		engine:     engine,
		storage:    storageSink,
		recorder:   recorder,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run applies ops in order. Operations at or below the checkpoint are
// re-applied to rebuild state but produce no output.
func (r *Runner) Run(ctx context.Context, ops []model.Operation) (RunStats, error) {
	if r.engine == nil {
		return RunStats{}, fmt.Errorf("engine is nil")
	}
	if r.storage == nil {
		return RunStats{}, fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return RunStats{}, fmt.Errorf("batch size must be greater than zero")
	}

	stats := RunStats{RunID: r.cfg.RunID, Total: len(ops)}
	var resumeAfter uint64
	var resumed bool

	cp, ok, err := r.checkpoint.Load()
	if err != nil {
		return stats, err
	}
	if ok {
		resumeAfter, resumed = cp.LastProcessedSeq, true
		if cp.RunID != "" {
			stats.RunID = cp.RunID
		}
		r.logger.Info("resume from checkpoint", zap.String("run_id", stats.RunID), zap.Uint64("last_processed_seq", resumeAfter))
	}
	if stats.RunID == "" {
		stats.RunID = uuid.NewString()
	}

	if len(ops) == 0 {
		r.logger.Info("nothing to replay")
		return stats, nil
	}

	ranges, err := SplitRange(0, uint64(len(ops)-1), r.cfg.BatchSize)
	if err != nil {
		return stats, err
	}

	poolAddr := r.engine.Pool().Info().Address.Hex()
	meta := r.engine.PoolMeta()

	for _, batchRange := range ranges {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		batch := ops[batchRange.From : batchRange.To+1]
		events := make([]model.PoolEvent, 0, len(batch))
		var rejected []model.OperationError

		for _, op := range batch {
			emitted, err := r.engine.Apply(op)
			if resumed && op.Seq <= resumeAfter {
				stats.Replayed++
				continue
			}
			if err != nil {
				stats.Rejected++
				rejected = append(rejected, operationError(stats.RunID, op, err))
				r.recorder.ObserveOperation(op.Op, ResultRejected)
				r.logger.Debug("operation rejected", zap.Uint64("seq", op.Seq), zap.String("op", op.Op), zap.Error(err))
				continue
			}

			stats.Applied++
			r.recorder.ObserveOperation(op.Op, ResultOK)
			if len(emitted) == 0 {
				continue
			}
			state := r.engine.Pool().State()
			r.recorder.ObserveState(state)
			for _, event := range emitted {
				events = append(events, buildPoolEvent(stats.RunID, op, poolAddr, meta, event, state))
			}
		}

		last := batch[len(batch)-1].Seq
		if resumed && last <= resumeAfter {
			continue
		}

		if err := r.putWithRetry(ctx, events, rejected); err != nil {
			return stats, fmt.Errorf("store batch: %w", err)
		}
		stats.Events += len(events)

		if err := r.checkpoint.Save(stats.RunID, last); err != nil {
			return stats, err
		}

		r.logger.Info("batch complete",
			zap.Int("operations", len(batch)),
			zap.Int("events", len(events)),
			zap.Int("rejected", len(rejected)),
			zap.Uint64("from_seq", batch[0].Seq),
			zap.Uint64("to_seq", last),
		)
	}

	return stats, nil
}

func (r *Runner) putWithRetry(ctx context.Context, events []model.PoolEvent, rejected []model.OperationError) error {
	if len(events) > 0 {
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			err := r.storage.PutEventBatch(ctx, events)
			if err != nil {
				r.logger.Warn("store events failed", zap.Error(err), zap.Int("events", len(events)))
			}
			return err
		})
		if err != nil {
			return err
		}
	}
	if len(rejected) > 0 {
		return withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			err := r.storage.PutErrorBatch(ctx, rejected)
			if err != nil {
				r.logger.Warn("store operation errors failed", zap.Error(err), zap.Int("errors", len(rejected)))
			}
			return err
		})
	}
	return nil
}
