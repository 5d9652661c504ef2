package amm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	EventLiquidityAdded   = "LiquidityAdded"
	EventLiquidityRemoved = "LiquidityRemoved"
	EventTokenSwap        = "TokenSwap"
)

// Event is a record emitted by a successful pool mutation.
type Event interface {
	EventName() string
}

// EventHandler receives events while the pool lock is held. Handlers must not
// call back into the pool.
type EventHandler func(Event)

type LiquidityAdded struct {
	Provider     common.Address
	AmountA      *big.Int
	AmountB      *big.Int
	SharesMinted *big.Int
}

func (LiquidityAdded) EventName() string { return EventLiquidityAdded }

type LiquidityRemoved struct {
	Provider     common.Address
	AmountA      *big.Int
	AmountB      *big.Int
	SharesBurned *big.Int
}

func (LiquidityRemoved) EventName() string { return EventLiquidityRemoved }

type TokenSwap struct {
	Trader    common.Address
	AmountIn  *big.Int
	TokenIn   common.Address
	AmountOut *big.Int
	TokenOut  common.Address
}

func (TokenSwap) EventName() string { return EventTokenSwap }
