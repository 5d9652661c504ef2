package engine

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"ammScope/internal/amm"
	"ammScope/internal/ledger"
	"ammScope/internal/model"
)

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrInvalidOperation = errors.New("invalid operation")
)

// PoolConfig describes the pair an Engine runs.
type PoolConfig struct {
	AssetA    common.Address
	AssetB    common.Address
	SymbolA   string
	SymbolB   string
	DecimalsA uint8
	DecimalsB uint8
}

// Engine owns a ledger, a share token and one pool over them, and applies
// replay operations to that state.
type Engine struct {
	book    *ledger.Book
	shares  *ledger.Shares
	pool    *amm.Pool
	meta    model.PoolMeta
	pending []amm.Event
}

func NewEngine(cfg PoolConfig, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		book:   ledger.NewBook(),
		shares: ledger.NewShares(),
	}
	pool, err := amm.NewPool(cfg.AssetA, cfg.AssetB,
		e.book.Spender(amm.PoolAddress(cfg.AssetA, cfg.AssetB)), e.shares,
		amm.WithLogger(logger.Named("pool")),
		amm.WithSymbols(cfg.SymbolA, cfg.SymbolB),
		amm.WithEventHandler(func(event amm.Event) { e.pending = append(e.pending, event) }),
	)
	if err != nil {
		return nil, err
	}
	e.pool = pool

	info := pool.Info()
	e.meta = model.PoolMeta{
		AssetA:      info.AssetA.Hex(),
		AssetB:      info.AssetB.Hex(),
		SymbolA:     cfg.SymbolA,
		SymbolB:     cfg.SymbolB,
		DecimalsA:   cfg.DecimalsA,
		DecimalsB:   cfg.DecimalsB,
		ShareSymbol: info.ShareSymbol,
		Fee:         model.FeePPM,
	}
	return e, nil
}

func (e *Engine) Pool() *amm.Pool { return e.pool }
func (e *Engine) Book() *ledger.Book { return e.book }
func (e *Engine) Shares() *ledger.Shares { return e.shares }
func (e *Engine) PoolMeta() model.PoolMeta { return e.meta }

// PoolRecord returns the storage record of the pool.
func (e *Engine) PoolRecord(firstSeenSeq uint64) model.Pool {
	info := e.pool.Info()
	return model.Pool{
		Address:      info.Address.Hex(),
		AssetA:       info.AssetA.Hex(),
		AssetB:       info.AssetB.Hex(),
		ShareSymbol:  info.ShareSymbol,
		Fee:          model.FeePPM,
		FirstSeenSeq: firstSeenSeq,
	}
}

// Apply executes one operation and returns the pool events it emitted.
// Apply is not safe for concurrent use.
func (e *Engine) Apply(op model.Operation) ([]amm.Event, error) {
	e.pending = e.pending[:0]

	account, err := ParseAddress(op.Account)
	if err != nil {
		return nil, fmt.Errorf("%w: account: %v", ErrInvalidOperation, err)
	}

	switch op.Op {
	case model.OpFund, model.OpApprove, model.OpTransfer:
		err = e.applyLedger(op, account)
	case model.OpAddLiquidity:
		err = e.applyAdd(op, account)
	case model.OpRemoveLiquidity:
		err = e.applyRemove(op, account)
	case model.OpSwap:
		err = e.applySwap(op, account)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownOperation, op.Op)
	}
	if err != nil {
		return nil, err
	}

	events := make([]amm.Event, len(e.pending))
	copy(events, e.pending)
	return events, nil
}

func (e *Engine) applyLedger(op model.Operation, account common.Address) error {
	asset, err := ParseAddress(op.Asset)
	if err != nil {
		return fmt.Errorf("%w: asset: %v", ErrInvalidOperation, err)
	}
	amount, err := ParseAmount(op.Amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}

	switch op.Op {
	case model.OpFund:
		return e.book.Mint(asset, account, amount)
	case model.OpApprove:
		spender, err := ParseOptionalAddress(op.Spender)
		if err != nil {
			return fmt.Errorf("%w: spender: %v", ErrInvalidOperation, err)
		}
		if spender == (common.Address{}) {
			spender = e.pool.Info().Address
		}
		return e.book.Approve(asset, account, spender, amount)
	default:
		to, err := ParseAddress(op.To)
		if err != nil {
			return fmt.Errorf("%w: to: %v", ErrInvalidOperation, err)
		}
		return e.book.Transfer(asset, account, to, amount)
	}
}

func (e *Engine) applyAdd(op model.Operation, account common.Address) error {
	var params amm.AddLiquidityParams
	var err error
	if params.AmountADesired, err = ParseAmount(op.AmountA); err != nil {
		return fmt.Errorf("%w: amount_a: %v", ErrInvalidOperation, err)
	}
	if params.AmountBDesired, err = ParseAmount(op.AmountB); err != nil {
		return fmt.Errorf("%w: amount_b: %v", ErrInvalidOperation, err)
	}
	if params.AmountAMin, err = ParseOptionalAmount(op.AmountAMin); err != nil {
		return fmt.Errorf("%w: amount_a_min: %v", ErrInvalidOperation, err)
	}
	if params.AmountBMin, err = ParseOptionalAmount(op.AmountBMin); err != nil {
		return fmt.Errorf("%w: amount_b_min: %v", ErrInvalidOperation, err)
	}
	if params.Recipient, err = ParseOptionalAddress(op.Recipient); err != nil {
		return fmt.Errorf("%w: recipient: %v", ErrInvalidOperation, err)
	}
	_, err = e.pool.AddLiquidity(account, params)
	return err
}

func (e *Engine) applyRemove(op model.Operation, account common.Address) error {
	var params amm.RemoveLiquidityParams
	var err error
	if params.Shares, err = ParseAmount(op.Shares); err != nil {
		return fmt.Errorf("%w: shares: %v", ErrInvalidOperation, err)
	}
	if params.AmountAMin, err = ParseOptionalAmount(op.AmountAMin); err != nil {
		return fmt.Errorf("%w: amount_a_min: %v", ErrInvalidOperation, err)
	}
	if params.AmountBMin, err = ParseOptionalAmount(op.AmountBMin); err != nil {
		return fmt.Errorf("%w: amount_b_min: %v", ErrInvalidOperation, err)
	}
	if params.Recipient, err = ParseOptionalAddress(op.Recipient); err != nil {
		return fmt.Errorf("%w: recipient: %v", ErrInvalidOperation, err)
	}
	_, err = e.pool.RemoveLiquidity(account, params)
	return err
}

func (e *Engine) applySwap(op model.Operation, account common.Address) error {
	var params amm.SwapParams
	var err error
	if params.TokenIn, err = ParseAddress(op.TokenIn); err != nil {
		return fmt.Errorf("%w: token_in: %v", ErrInvalidOperation, err)
	}
	if params.AmountIn, err = ParseAmount(op.AmountIn); err != nil {
		return fmt.Errorf("%w: amount_in: %v", ErrInvalidOperation, err)
	}
	if params.AmountOutMin, err = ParseOptionalAmount(op.AmountOutMin); err != nil {
		return fmt.Errorf("%w: amount_out_min: %v", ErrInvalidOperation, err)
	}
	if params.Recipient, err = ParseOptionalAddress(op.Recipient); err != nil {
		return fmt.Errorf("%w: recipient: %v", ErrInvalidOperation, err)
	}
	_, err = e.pool.SwapExactTokensForTokens(account, params)
	return err
}
