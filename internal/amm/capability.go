package amm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Leg is one movement of an asset inside a settlement.
type Leg struct {
	Asset  common.Address
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// Ledger moves units of assets between accounts. Settle applies the legs in
// order as one step: either every leg applies, including any allowance it
// consumes, or Settle returns the first leg's error and nothing changes.
type Ledger interface {
	Settle(legs ...Leg) error
	BalanceOf(asset, account common.Address) *big.Int
}

// ShareToken tracks pool-share ownership. Lock adds to a permanent supply
// that belongs to no holder; TotalSupply includes it.
type ShareToken interface {
	Mint(holder common.Address, amount *big.Int)
	Burn(holder common.Address, amount *big.Int) error
	Lock(amount *big.Int)
	BalanceOf(holder common.Address) *big.Int
	TotalSupply() *big.Int
}
