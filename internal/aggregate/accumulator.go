package aggregate

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"ammScope/internal/amm"
	"ammScope/internal/model"
)

// Accumulator holds aggregate values for a pool window.
type Accumulator struct {
	PoolAddress string
	PoolMeta    model.PoolMeta
	WindowStart uint64
	WindowEnd   uint64
	SwapCount   uint64
	AddCount    uint64
	RemoveCount uint64
	VolumeA     *big.Int
	VolumeB     *big.Int
	FeeA        *big.Int
	FeeB        *big.Int
	// ReserveA and ReserveB are the reserves after the latest event, nil until
	// an event carrying pool state is seen.
	ReserveA    *big.Int
	ReserveB    *big.Int
	FirstSeq    uint64
	LastSeq     uint64
	LastTS      uint64
}

func NewAccumulator(record model.PoolEventRecord, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		PoolAddress: record.Address,
		PoolMeta:    record.PoolMeta,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		VolumeA:     big.NewInt(0),
		VolumeB:     big.NewInt(0),
		FeeA:        big.NewInt(0),
		FeeB:        big.NewInt(0),
		FirstSeq:    record.Seq,
		LastSeq:     record.Seq,
		LastTS:      record.Timestamp,
	}
}

func (a *Accumulator) AddEvent(record model.PoolEventRecord) error {
	var err error
	switch record.EventName {
	case amm.EventTokenSwap:
		var swap model.SwapEventData
		if err := json.Unmarshal(record.Decoded, &swap); err != nil {
			return fmt.Errorf("decode swap: %w", err)
		}
		err = a.applySwap(swap)
	case amm.EventLiquidityAdded:
		a.AddCount++
	case amm.EventLiquidityRemoved:
		a.RemoveCount++
	default:
		return fmt.Errorf("unknown event %q", record.EventName)
	}
	if err != nil {
		return err
	}

	if record.Seq >= a.LastSeq {
		a.LastSeq = record.Seq
		a.LastTS = record.Timestamp
		if record.State != nil {
			if err := a.applyState(*record.State); err != nil {
				return err
			}
		}
	}
	if record.Seq < a.FirstSeq {
		a.FirstSeq = record.Seq
	}
	return nil
}

func (a *Accumulator) applySwap(swap model.SwapEventData) error {
	amountIn, err := parseBigInt(swap.AmountIn)
	if err != nil {
		return err
	}
	amountOut, err := parseBigInt(swap.AmountOut)
	if err != nil {
		return err
	}
	fee := feeFromAmount(amountIn, a.PoolMeta.Fee)

	switch {
	case sameAddress(swap.TokenIn, a.PoolMeta.AssetA):
		a.VolumeA.Add(a.VolumeA, amountIn)
		a.VolumeB.Add(a.VolumeB, amountOut)
		a.FeeA.Add(a.FeeA, fee)
	case sameAddress(swap.TokenIn, a.PoolMeta.AssetB):
		a.VolumeB.Add(a.VolumeB, amountIn)
		a.VolumeA.Add(a.VolumeA, amountOut)
		a.FeeB.Add(a.FeeB, fee)
	default:
		return fmt.Errorf("swap token %s not in pool %s", swap.TokenIn, a.PoolAddress)
	}

	a.SwapCount++
	return nil
}

func (a *Accumulator) applyState(state model.PoolState) error {
	reserveA, err := parseBigInt(state.ReserveA)
	if err != nil {
		return err
	}
	reserveB, err := parseBigInt(state.ReserveB)
	if err != nil {
		return err
	}
	a.ReserveA = reserveA
	a.ReserveB = reserveB
	return nil
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

func sameAddress(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

// feeFromAmount returns amountIn*feePPM/1e6, truncated.
func feeFromAmount(amountIn *big.Int, feePPM uint32) *big.Int {
	if amountIn == nil || feePPM == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Abs(amountIn)
	fee.Mul(fee, big.NewInt(int64(feePPM)))
	fee.Div(fee, big.NewInt(1_000_000))
	return fee
}
