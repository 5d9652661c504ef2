package amm

import "errors"

var (
	ErrInvalidConfiguration        = errors.New("invalid pool configuration")
	ErrInvalidAsset                = errors.New("invalid asset")
	ErrInvalidAmount               = errors.New("invalid amount")
	ErrSlippageExceeded            = errors.New("slippage exceeded")
	ErrInsufficientLiquidity       = errors.New("insufficient liquidity")
	ErrInsufficientLiquidityMinted = errors.New("insufficient liquidity minted")
	ErrInsufficientShares          = errors.New("insufficient shares")
	ErrInvariantViolation          = errors.New("pool invariant violated")
)

// Errors a Ledger implementation reports. The pool passes them through
// unchanged so callers can match them with errors.Is.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnauthorized      = errors.New("unauthorized transfer")
)
