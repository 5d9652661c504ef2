package amm

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// AddLiquidityParams describes a deposit. Nil minimums are treated as zero.
// A zero Recipient credits the caller.
type AddLiquidityParams struct {
	AmountADesired *big.Int
	AmountBDesired *big.Int
	AmountAMin     *big.Int
	AmountBMin     *big.Int
	Recipient      common.Address
}

type AddLiquidityResult struct {
	AmountA      *big.Int
	AmountB      *big.Int
	SharesMinted *big.Int
}

// RemoveLiquidityParams describes a withdrawal of Shares owned by the caller.
type RemoveLiquidityParams struct {
	Shares     *big.Int
	AmountAMin *big.Int
	AmountBMin *big.Int
	Recipient  common.Address
}

type RemoveLiquidityResult struct {
	AmountA *big.Int
	AmountB *big.Int
}

// SwapParams describes an exact-input swap of TokenIn for the other asset.
type SwapParams struct {
	AmountIn     *big.Int
	AmountOutMin *big.Int
	TokenIn      common.Address
	Recipient    common.Address
}

// State is a consistent snapshot of the pool.
type State struct {
	ReserveA    *big.Int
	ReserveB    *big.Int
	TotalSupply *big.Int
}

// Info describes the pool identity.
type Info struct {
	Address     common.Address
	AssetA      common.Address
	AssetB      common.Address
	ShareSymbol string
}

// Option configures a Pool.
type Option func(*Pool)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithEventHandler(handler EventHandler) Option {
	return func(p *Pool) {
		if handler != nil {
			p.handlers = append(p.handlers, handler)
		}
	}
}

// WithSymbols names the share token "LP-<symbolA>-<symbolB>".
func WithSymbols(symbolA, symbolB string) Option {
	return func(p *Pool) {
		if symbolA != "" && symbolB != "" {
			p.symbol = "LP-" + symbolA + "-" + symbolB
		}
	}
}

// Pool is a constant-product liquidity pool over two assets. All methods are
// safe for concurrent use; mutations are serialized by a single lock.
type Pool struct {
	mu       sync.Mutex
	assetA   common.Address
	assetB   common.Address
	account  common.Address
	ledger   Ledger
	shares   ShareToken
	symbol   string
	logger   *zap.Logger
	handlers []EventHandler
}

// PoolAddress derives the ledger account that holds the reserves of the pair.
func PoolAddress(assetA, assetB common.Address) common.Address {
	return common.BytesToAddress(crypto.Keccak256(assetA.Bytes(), assetB.Bytes())[12:])
}

// NewPool builds an empty pool. The ledger must let the pool account pull
// funds from callers that authorized it.
func NewPool(assetA, assetB common.Address, ledger Ledger, shares ShareToken, opts ...Option) (*Pool, error) {
	if assetA == (common.Address{}) || assetB == (common.Address{}) {
		return nil, fmt.Errorf("%w: asset identifiers must be set", ErrInvalidConfiguration)
	}
	if assetA == assetB {
		return nil, fmt.Errorf("%w: assets must differ", ErrInvalidConfiguration)
	}
	if ledger == nil || shares == nil {
		return nil, fmt.Errorf("%w: ledger and share token are required", ErrInvalidConfiguration)
	}

	p := &Pool{
		assetA:  assetA,
		assetB:  assetB,
		account: PoolAddress(assetA, assetB),
		ledger:  ledger,
		shares:  shares,
		symbol:  "LP-" + assetA.Hex()[:8] + "-" + assetB.Hex()[:8],
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pool) Info() Info {
	return Info{
		Address:     p.account,
		AssetA:      p.assetA,
		AssetB:      p.assetB,
		ShareSymbol: p.symbol,
	}
}

// GetReserves returns the ledger balances held by the pool account.
func (p *Pool) GetReserves() (*big.Int, *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reserves()
}

// State returns reserves and share supply read under one lock.
func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	reserveA, reserveB := p.reserves()
	return State{
		ReserveA:    reserveA,
		ReserveB:    reserveB,
		TotalSupply: p.shares.TotalSupply(),
	}
}

func (p *Pool) ShareBalance(holder common.Address) *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shares.BalanceOf(holder)
}

// AddLiquidity deposits both assets at the current reserve ratio and mints
// pool shares to the recipient.
func (p *Pool) AddLiquidity(caller common.Address, params AddLiquidityParams) (AddLiquidityResult, error) {
	if err := requireNonNegative(params.AmountADesired, params.AmountBDesired); err != nil {
		return AddLiquidityResult{}, err
	}
	amountAMin, amountBMin := orZero(params.AmountAMin), orZero(params.AmountBMin)
	recipient := params.Recipient
	if recipient == (common.Address{}) {
		recipient = caller
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	reserveA, reserveB := p.reserves()
	amountA, amountB, err := depositAmounts(params.AmountADesired, params.AmountBDesired, amountAMin, amountBMin, reserveA, reserveB)
	if err != nil {
		return AddLiquidityResult{}, err
	}

	supply := p.shares.TotalSupply()
	var minted *big.Int
	bootstrap := supply.Sign() == 0
	if bootstrap {
		minted = BootstrapShares(new(big.Int).Add(reserveA, amountA), new(big.Int).Add(reserveB, amountB))
	} else {
		if reserveA.Sign() == 0 || reserveB.Sign() == 0 {
			return AddLiquidityResult{}, fmt.Errorf("%w: pool has shares but an empty reserve", ErrInsufficientLiquidity)
		}
		minted = ProportionalShares(amountA, amountB, reserveA, reserveB, supply)
	}
	if minted.Sign() <= 0 {
		return AddLiquidityResult{}, fmt.Errorf("%w: deposit (%s, %s) mints %s shares", ErrInsufficientLiquidityMinted, amountA, amountB, minted)
	}

	if err := p.ledger.Settle(nonZero(
		Leg{Asset: p.assetA, From: caller, To: p.account, Amount: amountA},
		Leg{Asset: p.assetB, From: caller, To: p.account, Amount: amountB},
	)...); err != nil {
		return AddLiquidityResult{}, err
	}

	if bootstrap {
		p.shares.Lock(new(big.Int).Set(minimumLiquidity))
	}
	p.shares.Mint(recipient, minted)

	p.logger.Debug("liquidity added",
		zap.String("provider", caller.Hex()),
		zap.String("recipient", recipient.Hex()),
		zap.String("amount_a", amountA.String()),
		zap.String("amount_b", amountB.String()),
		zap.String("shares", minted.String()),
		zap.Bool("bootstrap", bootstrap),
	)
	p.emit(LiquidityAdded{
		Provider:     caller,
		AmountA:      new(big.Int).Set(amountA),
		AmountB:      new(big.Int).Set(amountB),
		SharesMinted: new(big.Int).Set(minted),
	})

	return AddLiquidityResult{AmountA: amountA, AmountB: amountB, SharesMinted: minted}, nil
}

// RemoveLiquidity burns caller shares and pays out the proportional reserves.
func (p *Pool) RemoveLiquidity(caller common.Address, params RemoveLiquidityParams) (RemoveLiquidityResult, error) {
	if err := requirePositive(params.Shares); err != nil {
		return RemoveLiquidityResult{}, err
	}
	amountAMin, amountBMin := orZero(params.AmountAMin), orZero(params.AmountBMin)
	recipient := params.Recipient
	if recipient == (common.Address{}) {
		recipient = caller
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	reserveA, reserveB := p.reserves()
	supply := p.shares.TotalSupply()
	if supply.Sign() == 0 {
		return RemoveLiquidityResult{}, fmt.Errorf("%w: no shares outstanding", ErrInsufficientLiquidity)
	}

	amountA := new(big.Int).Mul(params.Shares, reserveA)
	amountA.Quo(amountA, supply)
	amountB := new(big.Int).Mul(params.Shares, reserveB)
	amountB.Quo(amountB, supply)

	if amountA.Cmp(amountAMin) < 0 {
		return RemoveLiquidityResult{}, fmt.Errorf("%w: amountA %s below minimum %s", ErrSlippageExceeded, amountA, amountAMin)
	}
	if amountB.Cmp(amountBMin) < 0 {
		return RemoveLiquidityResult{}, fmt.Errorf("%w: amountB %s below minimum %s", ErrSlippageExceeded, amountB, amountBMin)
	}

	balance := p.shares.BalanceOf(caller)
	if balance.Cmp(params.Shares) < 0 {
		return RemoveLiquidityResult{}, fmt.Errorf("%w: have %s, need %s", ErrInsufficientShares, balance, params.Shares)
	}
	if err := p.ledger.Settle(nonZero(
		Leg{Asset: p.assetA, From: p.account, To: recipient, Amount: amountA},
		Leg{Asset: p.assetB, From: p.account, To: recipient, Amount: amountB},
	)...); err != nil {
		return RemoveLiquidityResult{}, fmt.Errorf("pay out liquidity: %w", err)
	}
	// the balance check above makes Burn infallible
	if err := p.shares.Burn(caller, params.Shares); err != nil {
		return RemoveLiquidityResult{}, fmt.Errorf("%w: burn after payout: %w", ErrInvariantViolation, err)
	}

	p.logger.Debug("liquidity removed",
		zap.String("provider", caller.Hex()),
		zap.String("recipient", recipient.Hex()),
		zap.String("amount_a", amountA.String()),
		zap.String("amount_b", amountB.String()),
		zap.String("shares", params.Shares.String()),
	)
	p.emit(LiquidityRemoved{
		Provider:     caller,
		AmountA:      new(big.Int).Set(amountA),
		AmountB:      new(big.Int).Set(amountB),
		SharesBurned: new(big.Int).Set(params.Shares),
	})

	return RemoveLiquidityResult{AmountA: amountA, AmountB: amountB}, nil
}

// SwapExactTokensForTokens sells exactly AmountIn of TokenIn and sends the
// output asset to the recipient.
func (p *Pool) SwapExactTokensForTokens(caller common.Address, params SwapParams) (*big.Int, error) {
	tokenOut, err := p.counterpart(params.TokenIn)
	if err != nil {
		return nil, err
	}
	if err := requirePositive(params.AmountIn); err != nil {
		return nil, err
	}
	amountOutMin := orZero(params.AmountOutMin)
	recipient := params.Recipient
	if recipient == (common.Address{}) {
		recipient = caller
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	reserveIn, reserveOut := p.ledger.BalanceOf(params.TokenIn, p.account), p.ledger.BalanceOf(tokenOut, p.account)
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, fmt.Errorf("%w: empty reserves", ErrInsufficientLiquidity)
	}

	var t1, t2 big.Int
	amountOut := GetAmountOut(new(big.Int), &t1, &t2, params.AmountIn, reserveIn, reserveOut)
	if amountOut.Cmp(amountOutMin) < 0 {
		return nil, fmt.Errorf("%w: amountOut %s below minimum %s", ErrSlippageExceeded, amountOut, amountOutMin)
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: amountOut %s would drain reserve %s", ErrInsufficientLiquidity, amountOut, reserveOut)
	}

	if err := p.ledger.Settle(nonZero(
		Leg{Asset: params.TokenIn, From: caller, To: p.account, Amount: params.AmountIn},
		Leg{Asset: tokenOut, From: p.account, To: recipient, Amount: amountOut},
	)...); err != nil {
		return nil, err
	}

	p.logger.Debug("swap",
		zap.String("trader", caller.Hex()),
		zap.String("token_in", params.TokenIn.Hex()),
		zap.String("amount_in", params.AmountIn.String()),
		zap.String("amount_out", amountOut.String()),
	)
	p.emit(TokenSwap{
		Trader:    caller,
		AmountIn:  new(big.Int).Set(params.AmountIn),
		TokenIn:   params.TokenIn,
		AmountOut: new(big.Int).Set(amountOut),
		TokenOut:  tokenOut,
	})

	return amountOut, nil
}

// GetAmountOut prices a swap without executing it. It returns zero when the
// pool has no liquidity.
func (p *Pool) GetAmountOut(amountIn *big.Int, tokenIn common.Address) (*big.Int, error) {
	tokenOut, err := p.counterpart(tokenIn)
	if err != nil {
		return nil, err
	}
	if err := requirePositive(amountIn); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	reserveIn, reserveOut := p.ledger.BalanceOf(tokenIn, p.account), p.ledger.BalanceOf(tokenOut, p.account)
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return new(big.Int), nil
	}
	var t1, t2 big.Int
	return GetAmountOut(new(big.Int), &t1, &t2, amountIn, reserveIn, reserveOut), nil
}

// GetExchangeRate returns both spot rates scaled by 10^18, or zeros when a
// reserve is empty.
func (p *Pool) GetExchangeRate() (*big.Int, *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	reserveA, reserveB := p.reserves()
	if reserveA.Sign() == 0 || reserveB.Sign() == 0 {
		return new(big.Int), new(big.Int)
	}
	return ExchangeRate(reserveA, reserveB), ExchangeRate(reserveB, reserveA)
}

func (p *Pool) reserves() (*big.Int, *big.Int) {
	return p.ledger.BalanceOf(p.assetA, p.account), p.ledger.BalanceOf(p.assetB, p.account)
}

func (p *Pool) counterpart(tokenIn common.Address) (common.Address, error) {
	switch tokenIn {
	case p.assetA:
		return p.assetB, nil
	case p.assetB:
		return p.assetA, nil
	default:
		return common.Address{}, fmt.Errorf("%w: %s is not in pair", ErrInvalidAsset, tokenIn.Hex())
	}
}

// nonZero drops zero-amount legs.
func nonZero(legs ...Leg) []Leg {
	out := legs[:0]
	for _, leg := range legs {
		if leg.Amount.Sign() > 0 {
			out = append(out, leg)
		}
	}
	return out
}

func (p *Pool) emit(event Event) {
	for _, handler := range p.handlers {
		handler(event)
	}
}

// depositAmounts trims the desired deposit to the current reserve ratio.
func depositAmounts(desiredA, desiredB, minA, minB, reserveA, reserveB *big.Int) (*big.Int, *big.Int, error) {
	if reserveA.Sign() == 0 && reserveB.Sign() == 0 {
		return new(big.Int).Set(desiredA), new(big.Int).Set(desiredB), nil
	}

	// an empty reserveA cannot price B; trim on the A side instead
	if reserveA.Sign() > 0 {
		optimalB := Quote(desiredA, reserveA, reserveB)
		if optimalB.Cmp(desiredB) <= 0 {
			if optimalB.Cmp(minB) < 0 {
				return nil, nil, fmt.Errorf("%w: amountB %s below minimum %s", ErrSlippageExceeded, optimalB, minB)
			}
			return new(big.Int).Set(desiredA), optimalB, nil
		}
	}

	optimalA := Quote(desiredB, reserveB, reserveA)
	if optimalA.Cmp(desiredA) > 0 {
		return nil, nil, fmt.Errorf("%w: optimal amountA %s exceeds desired %s", ErrInvariantViolation, optimalA, desiredA)
	}
	if optimalA.Cmp(minA) < 0 {
		return nil, nil, fmt.Errorf("%w: amountA %s below minimum %s", ErrSlippageExceeded, optimalA, minA)
	}
	return optimalA, new(big.Int).Set(desiredB), nil
}

func requirePositive(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	return nil
}

func requireNonNegative(amounts ...*big.Int) error {
	for _, amount := range amounts {
		if amount == nil || amount.Sign() < 0 {
			return fmt.Errorf("%w: amount must be zero or greater", ErrInvalidAmount)
		}
	}
	return nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
