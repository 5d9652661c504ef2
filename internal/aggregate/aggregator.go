package aggregate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"ammScope/internal/chain"
	"ammScope/internal/dex"
	"ammScope/internal/model"
)

const (
	feeMethodInput   = "fee_ppm_of_input"
	tvlMethodState   = "reserves_after_event"
	tvlMethodLatest  = "balance_of_latest"
	tvlMethodNone    = "unavailable"
	defaultBatchSize = 1000
)

// MetricsStore receives pool records and window metrics.
type MetricsStore interface {
	UpsertPools(ctx context.Context, pools []model.Pool) error
	UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error
}

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds uint64
	BatchSize     int
	RecomputeFrom uint64
	StateStore    StateStore
}

// Summary reports what a Run consumed.
type Summary struct {
	Total   int
	Windows int
	Skipped int
	Failed  int
}

// Aggregator aggregates pool events into pool window metrics.
type Aggregator struct {
	cfg          Config
	store        MetricsStore
	chainClient  *chain.Client
	logger       *zap.Logger
	tokens       *dex.TokenMetaCache
	accumulators map[string]*Accumulator
	poolSeen     map[string]model.Pool
}

// NewAggregator builds an Aggregator. chainClient may be nil, in which case
// decimals come from event metadata only and TVL falls back to event state.
func NewAggregator(cfg Config, store MetricsStore, chainClient *chain.Client, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Aggregator{
		cfg:          cfg,
		store:        store,
		chainClient:  chainClient,
		logger:       logger,
		tokens:       dex.NewTokenMetaCache(),
		accumulators: make(map[string]*Accumulator),
		poolSeen:     make(map[string]model.Pool),
	}
}

// Run executes aggregation over a pool events JSONL file.
func (a *Aggregator) Run(ctx context.Context, inputPath string) (Summary, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return Summary{}, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return a.RunReader(ctx, file)
}

// RunReader executes aggregation over JSONL pool events read from r.
func (a *Aggregator) RunReader(ctx context.Context, r io.Reader) (Summary, error) {
	var sum Summary
	if a.store == nil {
		return sum, fmt.Errorf("store is nil")
	}
	if a.cfg.WindowSeconds == 0 {
		return sum, fmt.Errorf("window seconds must be > 0")
	}
	if a.cfg.BatchSize <= 0 {
		a.cfg.BatchSize = defaultBatchSize
	}

	startTs, err := a.loadStartTimestamp(ctx)
	if err != nil {
		return sum, err
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	batch := make([]model.PoolWindowMetrics, 0, a.cfg.BatchSize)
	pools := make([]model.Pool, 0, 16)
	maxTs := startTs

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		sum.Total++

		var record model.PoolEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			sum.Failed++
			a.logger.Warn("decode pool event", zap.Error(err))
			continue
		}

		if record.Timestamp <= startTs {
			sum.Skipped++
			continue
		}

		start := windowStart(record.Timestamp, a.cfg.WindowSeconds)
		end := start + a.cfg.WindowSeconds

		accKey := poolKey(record.Address)
		acc := a.accumulators[accKey]
		if acc == nil {
			acc = NewAccumulator(record, start, end)
			a.accumulators[accKey] = acc
		} else if acc.WindowStart != start {
			metrics, pool := a.flushAccumulator(ctx, acc)
			if metrics != nil {
				batch = append(batch, *metrics)
				sum.Windows++
			}
			if pool != nil {
				pools = append(pools, *pool)
			}
			next := NewAccumulator(record, start, end)
			// reserves carry over so an event without state still has a TVL
			next.ReserveA, next.ReserveB = acc.ReserveA, acc.ReserveB
			acc = next
			a.accumulators[accKey] = acc
		}

		if err := acc.AddEvent(record); err != nil {
			sum.Failed++
			a.logger.Warn("aggregate event", zap.Error(err), zap.String("pool", record.Address), zap.String("event", record.EventName))
			continue
		}

		if record.Timestamp > maxTs {
			maxTs = record.Timestamp
		}

		if len(batch) >= a.cfg.BatchSize {
			if err := a.flushBatches(ctx, batch, pools); err != nil {
				return sum, err
			}
			batch = batch[:0]
			pools = pools[:0]

			if err := a.saveState(ctx); err != nil {
				return sum, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("scan input: %w", err)
	}

	for _, acc := range a.accumulators {
		metrics, pool := a.flushAccumulator(ctx, acc)
		if metrics != nil {
			batch = append(batch, *metrics)
			sum.Windows++
		}
		if pool != nil {
			pools = append(pools, *pool)
		}
	}
	a.accumulators = make(map[string]*Accumulator)

	if len(batch) > 0 || len(pools) > 0 {
		if err := a.flushBatches(ctx, batch, pools); err != nil {
			return sum, err
		}
	}

	a.cfg.RecomputeFrom = maxTs
	if err := a.saveState(ctx); err != nil {
		return sum, err
	}

	a.logger.Info("aggregate complete",
		zap.Int("total", sum.Total),
		zap.Int("windows", sum.Windows),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
	)

	return sum, nil
}

func (a *Aggregator) loadStartTimestamp(ctx context.Context) (uint64, error) {
	if a.cfg.RecomputeFrom > 0 {
		return a.cfg.RecomputeFrom - 1, nil
	}
	if a.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := a.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return last, nil
}

func (a *Aggregator) saveState(ctx context.Context) error {
	if a.cfg.StateStore == nil {
		return nil
	}

	if len(a.accumulators) == 0 {
		return a.cfg.StateStore.Save(ctx, a.cfg.RecomputeFrom)
	}

	safeTs := minOpenWindowStart(a.accumulators)
	if safeTs > 0 {
		safeTs = safeTs - 1
	}
	if safeTs == 0 {
		safeTs = a.cfg.RecomputeFrom
	}
	return a.cfg.StateStore.Save(ctx, safeTs)
}

func (a *Aggregator) flushBatches(ctx context.Context, batch []model.PoolWindowMetrics, pools []model.Pool) error {
	if len(pools) > 0 {
		if err := a.store.UpsertPools(ctx, pools); err != nil {
			return err
		}
	}
	if len(batch) > 0 {
		if err := a.store.UpsertWindowMetrics(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (a *Aggregator) flushAccumulator(ctx context.Context, acc *Accumulator) (*model.PoolWindowMetrics, *model.Pool) {
	if acc == nil {
		return nil, nil
	}

	meta := acc.PoolMeta
	if meta.AssetA == "" || meta.AssetB == "" {
		a.logger.Warn("missing pool meta", zap.String("pool", acc.PoolAddress))
		return nil, nil
	}

	poolRecord := a.registerPool(acc)

	decimalsA := a.tokenDecimals(ctx, meta.AssetA, meta.DecimalsA)
	decimalsB := a.tokenDecimals(ctx, meta.AssetB, meta.DecimalsB)

	tvlA, tvlB, tvlMethod := a.closingTVL(ctx, acc)
	var tvlAStr, tvlBStr *string
	if tvlA != nil && tvlB != nil {
		valA := formatTokenAmount(tvlA, decimalsA)
		valB := formatTokenAmount(tvlB, decimalsB)
		tvlAStr, tvlBStr = &valA, &valB
	}

	feeRateA, feeRateB := computeFeeRates(acc.FeeA, acc.FeeB, tvlA, tvlB)
	apr := computeAPR(acc.FeeA, acc.FeeB, tvlA, tvlB, a.cfg.WindowSeconds)

	metrics := &model.PoolWindowMetrics{
		PoolAddress:    acc.PoolAddress,
		WindowSizeSecs: int64(a.cfg.WindowSeconds),
		WindowStart:    time.Unix(int64(acc.WindowStart), 0).UTC(),
		WindowEnd:      time.Unix(int64(acc.WindowEnd), 0).UTC(),
		SwapCount:      acc.SwapCount,
		AddCount:       acc.AddCount,
		RemoveCount:    acc.RemoveCount,
		VolumeA:        formatTokenAmount(acc.VolumeA, decimalsA),
		VolumeB:        formatTokenAmount(acc.VolumeB, decimalsB),
		FeeA:           formatTokenAmount(acc.FeeA, decimalsA),
		FeeB:           formatTokenAmount(acc.FeeB, decimalsB),
		FeeRateA:       feeRateA,
		FeeRateB:       feeRateB,
		TVLA:           tvlAStr,
		TVLB:           tvlBStr,
		APR:            apr,
		FeeMethod:      feeMethodInput,
		TVLMethod:      tvlMethod,
	}

	return metrics, poolRecord
}

func (a *Aggregator) closingTVL(ctx context.Context, acc *Accumulator) (*big.Int, *big.Int, string) {
	if acc.ReserveA != nil && acc.ReserveB != nil {
		return acc.ReserveA, acc.ReserveB, tvlMethodState
	}
	if a.chainClient == nil {
		return nil, nil, tvlMethodNone
	}
	balanceA, balanceB, err := a.fetchTVL(ctx, acc.PoolMeta.AssetA, acc.PoolMeta.AssetB, acc.PoolAddress)
	if err != nil {
		a.logger.Warn("tvl fetch failed", zap.String("pool", acc.PoolAddress), zap.Error(err))
		return nil, nil, tvlMethodNone
	}
	return balanceA, balanceB, tvlMethodLatest
}

func (a *Aggregator) registerPool(acc *Accumulator) *model.Pool {
	key := poolKey(acc.PoolAddress)
	pool := model.Pool{
		Address:      acc.PoolAddress,
		AssetA:       acc.PoolMeta.AssetA,
		AssetB:       acc.PoolMeta.AssetB,
		ShareSymbol:  acc.PoolMeta.ShareSymbol,
		Fee:          acc.PoolMeta.Fee,
		FirstSeenSeq: acc.FirstSeq,
	}

	if existing, ok := a.poolSeen[key]; ok && existing.FirstSeenSeq <= pool.FirstSeenSeq {
		return nil
	}

	a.poolSeen[key] = pool
	return &pool
}

// tokenDecimals prefers the decimals carried in event metadata and only asks
// the chain when they are unset.
func (a *Aggregator) tokenDecimals(ctx context.Context, token string, fromMeta uint8) uint8 {
	if fromMeta != 0 || a.chainClient == nil {
		return fromMeta
	}
	decimals, err := a.getTokenDecimals(ctx, token)
	if err != nil {
		a.logger.Warn("token decimals", zap.String("token", token), zap.Error(err))
		return 0
	}
	return decimals
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}

func poolKey(address string) string {
	return strings.ToLower(address)
}

func minOpenWindowStart(acc map[string]*Accumulator) uint64 {
	var min uint64
	for _, entry := range acc {
		if entry == nil {
			continue
		}
		if min == 0 || entry.WindowStart < min {
			min = entry.WindowStart
		}
	}
	return min
}
