package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"ammScope/internal/amm"
	"ammScope/internal/chain"
)

// PairState is a snapshot of an on-chain constant-product pair.
type PairState struct {
	Pair               common.Address
	Token0             common.Address
	Token1             common.Address
	Reserve0           *big.Int
	Reserve1           *big.Int
	BlockTimestampLast uint32
}

// FetchPairState reads token0, token1 and getReserves at block (nil = latest).
func FetchPairState(ctx context.Context, chainClient *chain.Client, pair common.Address, block *big.Int) (PairState, error) {
	state := PairState{Pair: pair}
	if chainClient == nil {
		return state, fmt.Errorf("chain client is nil")
	}
	pairABI, err := V2PairABI()
	if err != nil {
		return state, fmt.Errorf("parse pair abi: %w", err)
	}

	values, err := callView(ctx, chainClient, pair, pairABI, "token0", block)
	if err != nil {
		return state, err
	}
	if state.Token0, err = asAddress(values[0]); err != nil {
		return state, fmt.Errorf("token0: %w", err)
	}

	values, err = callView(ctx, chainClient, pair, pairABI, "token1", block)
	if err != nil {
		return state, err
	}
	if state.Token1, err = asAddress(values[0]); err != nil {
		return state, fmt.Errorf("token1: %w", err)
	}

	values, err = callView(ctx, chainClient, pair, pairABI, "getReserves", block)
	if err != nil {
		return state, err
	}
	if len(values) != 3 {
		return state, fmt.Errorf("getReserves returned %d values", len(values))
	}
	if state.Reserve0, err = asBigInt(values[0]); err != nil {
		return state, fmt.Errorf("reserve0: %w", err)
	}
	if state.Reserve1, err = asBigInt(values[1]); err != nil {
		return state, fmt.Errorf("reserve1: %w", err)
	}
	ts, err := asBigInt(values[2])
	if err != nil {
		return state, fmt.Errorf("block timestamp: %w", err)
	}
	state.BlockTimestampLast = uint32(ts.Uint64())

	return state, nil
}

// Reserves orders the pair reserves as (tokenIn, tokenOut).
func (s PairState) Reserves(tokenIn common.Address) (reserveIn, reserveOut *big.Int, tokenOut common.Address, err error) {
	switch tokenIn {
	case s.Token0:
		return s.Reserve0, s.Reserve1, s.Token1, nil
	case s.Token1:
		return s.Reserve1, s.Reserve0, s.Token0, nil
	default:
		return nil, nil, common.Address{}, fmt.Errorf("%w: %s is not in pair %s", amm.ErrInvalidAsset, tokenIn.Hex(), s.Pair.Hex())
	}
}

// QuoteExactIn prices an exact-input swap against the snapshot with the same
// formula the local pool uses.
func (s PairState) QuoteExactIn(tokenIn common.Address, amountIn *big.Int) (*big.Int, common.Address, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, common.Address{}, fmt.Errorf("%w: amount must be greater than zero", amm.ErrInvalidAmount)
	}
	reserveIn, reserveOut, tokenOut, err := s.Reserves(tokenIn)
	if err != nil {
		return nil, common.Address{}, err
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, tokenOut, fmt.Errorf("%w: pair %s has empty reserves", amm.ErrInsufficientLiquidity, s.Pair.Hex())
	}
	var t1, t2 big.Int
	return amm.GetAmountOut(new(big.Int), &t1, &t2, amountIn, reserveIn, reserveOut), tokenOut, nil
}
