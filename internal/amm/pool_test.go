package amm_test

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ammScope/internal/amm"
	"ammScope/internal/ledger"
)

var (
	assetA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	assetB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	alice  = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol  = common.HexToAddress("0x00000000000000000000000000000000000ca201")

	unlimited = new(big.Int).Lsh(big.NewInt(1), 128)
)

type harness struct {
	book   *ledger.Book
	shares *ledger.Shares
	pool   *amm.Pool
	events []amm.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, func(l amm.Ledger) amm.Ledger { return l })
}

// newHarnessWith lets a test wrap the ledger the pool sees.
func newHarnessWith(t *testing.T, wrap func(amm.Ledger) amm.Ledger) *harness {
	t.Helper()
	h := &harness{book: ledger.NewBook(), shares: ledger.NewShares()}
	pool, err := amm.NewPool(assetA, assetB, wrap(h.book.Spender(amm.PoolAddress(assetA, assetB))), h.shares,
		amm.WithEventHandler(func(e amm.Event) { h.events = append(h.events, e) }),
	)
	require.NoError(t, err)
	h.pool = pool
	return h
}

// fund mints both assets to account and approves the pool for them.
func (h *harness) fund(t *testing.T, account common.Address, amountA, amountB int64) {
	t.Helper()
	poolAddr := h.pool.Info().Address
	require.NoError(t, h.book.Mint(assetA, account, big.NewInt(amountA)))
	require.NoError(t, h.book.Mint(assetB, account, big.NewInt(amountB)))
	require.NoError(t, h.book.Approve(assetA, account, poolAddr, unlimited))
	require.NoError(t, h.book.Approve(assetB, account, poolAddr, unlimited))
}

// blockedLedger rejects any settlement that moves asset out of from.
type blockedLedger struct {
	amm.Ledger
	asset common.Address
	from  common.Address
}

func (l blockedLedger) Settle(legs ...amm.Leg) error {
	for _, leg := range legs {
		if leg.Asset == l.asset && leg.From == l.from {
			return fmt.Errorf("%w: %s frozen for %s", amm.ErrInsufficientFunds, l.asset.Hex(), l.from.Hex())
		}
	}
	return l.Ledger.Settle(legs...)
}

func (h *harness) add(t *testing.T, account common.Address, amountA, amountB int64) amm.AddLiquidityResult {
	t.Helper()
	res, err := h.pool.AddLiquidity(account, amm.AddLiquidityParams{
		AmountADesired: big.NewInt(amountA),
		AmountBDesired: big.NewInt(amountB),
	})
	require.NoError(t, err)
	return res
}

func requireReserves(t *testing.T, pool *amm.Pool, wantA, wantB int64) {
	t.Helper()
	reserveA, reserveB := pool.GetReserves()
	require.Equal(t, big.NewInt(wantA).String(), reserveA.String(), "reserveA")
	require.Equal(t, big.NewInt(wantB).String(), reserveB.String(), "reserveB")
}

func TestNewPoolRejectsBadConfiguration(t *testing.T) {
	book, shares := ledger.NewBook(), ledger.NewShares()
	spender := book.Spender(common.Address{})

	cases := []struct {
		name   string
		a, b   common.Address
		ledger amm.Ledger
		shares amm.ShareToken
	}{
		{"same_asset", assetA, assetA, spender, shares},
		{"zero_asset_a", common.Address{}, assetB, spender, shares},
		{"zero_asset_b", assetA, common.Address{}, spender, shares},
		{"nil_ledger", assetA, assetB, nil, shares},
		{"nil_shares", assetA, assetB, spender, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := amm.NewPool(tc.a, tc.b, tc.ledger, tc.shares)
			require.ErrorIs(t, err, amm.ErrInvalidConfiguration)
		})
	}
}

func TestPoolInfoShareSymbol(t *testing.T) {
	book := ledger.NewBook()
	pool, err := amm.NewPool(assetA, assetB, book.Spender(amm.PoolAddress(assetA, assetB)), ledger.NewShares(), amm.WithSymbols("WETH", "USDC"))
	require.NoError(t, err)

	info := pool.Info()
	assert.Equal(t, "LP-WETH-USDC", info.ShareSymbol)
	assert.Equal(t, amm.PoolAddress(assetA, assetB), info.Address)
	assert.NotEqual(t, amm.PoolAddress(assetA, assetB), amm.PoolAddress(assetB, assetA))
}

func TestAddLiquidityBootstrap(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 2000)

	res := h.add(t, alice, 1000, 2000)

	assert.Equal(t, "1000", res.AmountA.String())
	assert.Equal(t, "2000", res.AmountB.String())
	// floor(sqrt(2_000_000)) - 1000 = 1414 - 1000
	assert.Equal(t, "414", res.SharesMinted.String())
	requireReserves(t, h.pool, 1000, 2000)
	assert.Equal(t, "414", h.shares.BalanceOf(alice).String())
	assert.Equal(t, "1000", h.shares.Locked().String())
	assert.Equal(t, "1414", h.shares.TotalSupply().String())

	require.Len(t, h.events, 1)
	added, ok := h.events[0].(amm.LiquidityAdded)
	require.True(t, ok)
	assert.Equal(t, alice, added.Provider)
	assert.Equal(t, "414", added.SharesMinted.String())
}

func TestAddLiquidityBootstrapTooSmall(t *testing.T) {
	for _, amount := range []int64{10, 1000} {
		h := newHarness(t)
		h.fund(t, alice, amount, amount)

		_, err := h.pool.AddLiquidity(alice, amm.AddLiquidityParams{
			AmountADesired: big.NewInt(amount),
			AmountBDesired: big.NewInt(amount),
		})
		require.ErrorIs(t, err, amm.ErrInsufficientLiquidityMinted)
		requireReserves(t, h.pool, 0, 0)
		assert.Equal(t, "0", h.shares.TotalSupply().String())
		assert.Empty(t, h.events)
	}

	h := newHarness(t)
	h.fund(t, alice, 1001, 1001)
	res := h.add(t, alice, 1001, 1001)
	assert.Equal(t, "1", res.SharesMinted.String())
}

func TestAddLiquidityTrimsToReserveRatio(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)
	h.fund(t, bob, 1000, 1000)

	// amountBOptimal = 100*2000/1000 = 200 <= 500
	res := h.add(t, bob, 100, 500)
	assert.Equal(t, "100", res.AmountA.String())
	assert.Equal(t, "200", res.AmountB.String())
	// min(100*1414/1000, 200*1414/2000) = 141
	assert.Equal(t, "141", res.SharesMinted.String())
	requireReserves(t, h.pool, 1100, 2200)

	// amountBOptimal = 500*2200/1100 = 1000 > 100, amountAOptimal = 100*1100/2200 = 50
	res = h.add(t, bob, 500, 100)
	assert.Equal(t, "50", res.AmountA.String())
	assert.Equal(t, "100", res.AmountB.String())
	// min(50*1555/1100, 100*1555/2200) = 70
	assert.Equal(t, "70", res.SharesMinted.String())
	requireReserves(t, h.pool, 1150, 2300)
	assert.Equal(t, "211", h.shares.BalanceOf(bob).String())
}

func TestAddLiquiditySlippage(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)
	h.fund(t, bob, 1000, 1000)

	_, err := h.pool.AddLiquidity(bob, amm.AddLiquidityParams{
		AmountADesired: big.NewInt(100),
		AmountBDesired: big.NewInt(500),
		AmountBMin:     big.NewInt(201),
	})
	require.ErrorIs(t, err, amm.ErrSlippageExceeded)

	_, err = h.pool.AddLiquidity(bob, amm.AddLiquidityParams{
		AmountADesired: big.NewInt(500),
		AmountBDesired: big.NewInt(100),
		AmountAMin:     big.NewInt(51),
	})
	require.ErrorIs(t, err, amm.ErrSlippageExceeded)

	requireReserves(t, h.pool, 1000, 2000)
	assert.Equal(t, "0", h.shares.BalanceOf(bob).String())
	assert.Equal(t, "1000", h.book.BalanceOf(assetA, bob).String())
}

func TestAddLiquidityLedgerFailureLeavesNoTrace(t *testing.T) {
	h := newHarness(t)
	poolAddr := h.pool.Info().Address

	// no approval at all
	require.NoError(t, h.book.Mint(assetA, alice, big.NewInt(5000)))
	require.NoError(t, h.book.Mint(assetB, alice, big.NewInt(5000)))
	_, err := h.pool.AddLiquidity(alice, amm.AddLiquidityParams{AmountADesired: big.NewInt(2000), AmountBDesired: big.NewInt(2000)})
	require.ErrorIs(t, err, amm.ErrUnauthorized)

	// asset A approved for exactly the deposit, asset B not
	require.NoError(t, h.book.Approve(assetA, alice, poolAddr, big.NewInt(2000)))
	_, err = h.pool.AddLiquidity(alice, amm.AddLiquidityParams{AmountADesired: big.NewInt(2000), AmountBDesired: big.NewInt(2000)})
	require.ErrorIs(t, err, amm.ErrUnauthorized)
	assert.Equal(t, "5000", h.book.BalanceOf(assetA, alice).String())
	assert.Equal(t, "2000", h.book.Allowance(assetA, alice, poolAddr).String())

	// approved but short of funds
	require.NoError(t, h.book.Approve(assetB, alice, poolAddr, unlimited))
	_, err = h.pool.AddLiquidity(alice, amm.AddLiquidityParams{AmountADesired: big.NewInt(2000), AmountBDesired: big.NewInt(9000)})
	require.ErrorIs(t, err, amm.ErrInsufficientFunds)

	requireReserves(t, h.pool, 0, 0)
	assert.Equal(t, "5000", h.book.BalanceOf(assetA, alice).String())
	assert.Equal(t, "5000", h.book.BalanceOf(assetB, alice).String())
	assert.Equal(t, "2000", h.book.Allowance(assetA, alice, poolAddr).String())
	assert.Equal(t, "0", h.shares.TotalSupply().String())
	assert.Empty(t, h.events)

	// the untouched allowance still covers the deposit
	h.add(t, alice, 2000, 2000)
	requireReserves(t, h.pool, 2000, 2000)
	assert.Equal(t, "0", h.book.Allowance(assetA, alice, poolAddr).String())
}

func TestAddLiquidityOneSidedReserve(t *testing.T) {
	cases := []struct {
		name    string
		donated common.Address
	}{
		{"only_a", assetA},
		{"only_b", assetB},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			poolAddr := h.pool.Info().Address
			require.NoError(t, h.book.Mint(tc.donated, poolAddr, big.NewInt(500)))
			h.fund(t, alice, 1000, 2000)

			_, err := h.pool.AddLiquidity(alice, amm.AddLiquidityParams{AmountADesired: big.NewInt(1000), AmountBDesired: big.NewInt(2000)})
			require.ErrorIs(t, err, amm.ErrInsufficientLiquidityMinted)

			assert.Equal(t, "1000", h.book.BalanceOf(assetA, alice).String())
			assert.Equal(t, "2000", h.book.BalanceOf(assetB, alice).String())
			assert.Equal(t, "0", h.shares.TotalSupply().String())
		})
	}
}

func TestAddLiquidityRejectsInvalidAmounts(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 1000)

	_, err := h.pool.AddLiquidity(alice, amm.AddLiquidityParams{AmountADesired: nil, AmountBDesired: big.NewInt(1)})
	require.ErrorIs(t, err, amm.ErrInvalidAmount)
	_, err = h.pool.AddLiquidity(alice, amm.AddLiquidityParams{AmountADesired: big.NewInt(-1), AmountBDesired: big.NewInt(1)})
	require.ErrorIs(t, err, amm.ErrInvalidAmount)
}

func TestAddLiquidityCreditsRecipient(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 2000)

	res, err := h.pool.AddLiquidity(alice, amm.AddLiquidityParams{
		AmountADesired: big.NewInt(1000),
		AmountBDesired: big.NewInt(2000),
		Recipient:      carol,
	})
	require.NoError(t, err)
	assert.Equal(t, res.SharesMinted.String(), h.shares.BalanceOf(carol).String())
	assert.Equal(t, "0", h.shares.BalanceOf(alice).String())
}

func TestRemoveLiquidityProportional(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)
	h.events = nil

	supply := h.shares.TotalSupply()
	shares := h.shares.BalanceOf(alice)
	res, err := h.pool.RemoveLiquidity(alice, amm.RemoveLiquidityParams{Shares: shares})
	require.NoError(t, err)

	wantA := new(big.Int).Quo(new(big.Int).Mul(shares, big.NewInt(1000)), supply)
	wantB := new(big.Int).Quo(new(big.Int).Mul(shares, big.NewInt(2000)), supply)
	assert.Equal(t, wantA.String(), res.AmountA.String())
	assert.Equal(t, wantB.String(), res.AmountB.String())
	// 414*1000/1414 and 414*2000/1414
	assert.Equal(t, "292", res.AmountA.String())
	assert.Equal(t, "585", res.AmountB.String())

	requireReserves(t, h.pool, 708, 1415)
	assert.Equal(t, "1000", h.shares.TotalSupply().String())
	assert.Equal(t, "292", h.book.BalanceOf(assetA, alice).String())

	require.Len(t, h.events, 1)
	removed, ok := h.events[0].(amm.LiquidityRemoved)
	require.True(t, ok)
	assert.Equal(t, shares.String(), removed.SharesBurned.String())
}

func TestRemoveLiquidityLockSharesStayBehind(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)
	h.fund(t, bob, 1000, 2000)
	h.add(t, bob, 1000, 2000)

	for _, lp := range []common.Address{alice, bob} {
		_, err := h.pool.RemoveLiquidity(lp, amm.RemoveLiquidityParams{Shares: h.shares.BalanceOf(lp)})
		require.NoError(t, err)
	}

	assert.Equal(t, "1000", h.shares.TotalSupply().String())
	reserveA, reserveB := h.pool.GetReserves()
	assert.Positive(t, reserveA.Sign())
	assert.Positive(t, reserveB.Sign())

	_, err := h.pool.RemoveLiquidity(alice, amm.RemoveLiquidityParams{Shares: big.NewInt(1)})
	require.ErrorIs(t, err, amm.ErrInsufficientShares)
}

func TestRemoveLiquiditySlippageLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)

	_, err := h.pool.RemoveLiquidity(alice, amm.RemoveLiquidityParams{
		Shares:     big.NewInt(414),
		AmountAMin: big.NewInt(293),
	})
	require.ErrorIs(t, err, amm.ErrSlippageExceeded)

	_, err = h.pool.RemoveLiquidity(alice, amm.RemoveLiquidityParams{
		Shares:     big.NewInt(414),
		AmountBMin: big.NewInt(586),
	})
	require.ErrorIs(t, err, amm.ErrSlippageExceeded)

	requireReserves(t, h.pool, 1000, 2000)
	assert.Equal(t, "414", h.shares.BalanceOf(alice).String())
	assert.Equal(t, "1414", h.shares.TotalSupply().String())
}

func TestRemoveLiquidityInsufficientShares(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)

	_, err := h.pool.RemoveLiquidity(bob, amm.RemoveLiquidityParams{Shares: big.NewInt(10)})
	require.ErrorIs(t, err, amm.ErrInsufficientShares)
	_, err = h.pool.RemoveLiquidity(alice, amm.RemoveLiquidityParams{Shares: big.NewInt(415)})
	require.ErrorIs(t, err, amm.ErrInsufficientShares)
	_, err = h.pool.RemoveLiquidity(alice, amm.RemoveLiquidityParams{Shares: big.NewInt(0)})
	require.ErrorIs(t, err, amm.ErrInvalidAmount)

	requireReserves(t, h.pool, 1000, 2000)
}

func TestRemoveLiquidityPayoutFailureLeavesNoTrace(t *testing.T) {
	poolAddr := amm.PoolAddress(assetA, assetB)
	h := newHarnessWith(t, func(l amm.Ledger) amm.Ledger {
		return blockedLedger{Ledger: l, asset: assetB, from: poolAddr}
	})
	h.fund(t, alice, 4000, 4000)
	h.add(t, alice, 4000, 4000)
	h.events = nil

	_, err := h.pool.RemoveLiquidity(alice, amm.RemoveLiquidityParams{Shares: big.NewInt(3000)})
	require.ErrorIs(t, err, amm.ErrInsufficientFunds)

	requireReserves(t, h.pool, 4000, 4000)
	assert.Equal(t, "3000", h.shares.BalanceOf(alice).String())
	assert.Equal(t, "4000", h.shares.TotalSupply().String())
	assert.Equal(t, "0", h.book.BalanceOf(assetA, alice).String())
	assert.Empty(t, h.events)
}

func TestRemoveLiquidityEmptyPool(t *testing.T) {
	h := newHarness(t)
	_, err := h.pool.RemoveLiquidity(alice, amm.RemoveLiquidityParams{Shares: big.NewInt(1)})
	require.ErrorIs(t, err, amm.ErrInsufficientLiquidity)
}

func TestSwapExactTokensForTokens(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)
	h.fund(t, bob, 10, 0)
	h.events = nil

	quoted, err := h.pool.GetAmountOut(big.NewInt(10), assetA)
	require.NoError(t, err)

	out, err := h.pool.SwapExactTokensForTokens(bob, amm.SwapParams{
		AmountIn:     big.NewInt(10),
		AmountOutMin: big.NewInt(19),
		TokenIn:      assetA,
	})
	require.NoError(t, err)
	// 9970*2000/(1000*1000+9970) = 19
	assert.Equal(t, "19", out.String())
	assert.Equal(t, quoted.String(), out.String())
	requireReserves(t, h.pool, 1010, 1981)
	assert.Equal(t, "19", h.book.BalanceOf(assetB, bob).String())
	assert.Equal(t, "0", h.book.BalanceOf(assetA, bob).String())

	require.Len(t, h.events, 1)
	swap, ok := h.events[0].(amm.TokenSwap)
	require.True(t, ok)
	assert.Equal(t, bob, swap.Trader)
	assert.Equal(t, assetA, swap.TokenIn)
	assert.Equal(t, assetB, swap.TokenOut)
	assert.Equal(t, "19", swap.AmountOut.String())
}

func TestSwapReverseDirectionToRecipient(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)
	h.fund(t, bob, 0, 100)

	out, err := h.pool.SwapExactTokensForTokens(bob, amm.SwapParams{
		AmountIn:  big.NewInt(100),
		TokenIn:   assetB,
		Recipient: carol,
	})
	require.NoError(t, err)
	// 99700*1000/(2000*1000+99700) = 47
	assert.Equal(t, "47", out.String())
	assert.Equal(t, "47", h.book.BalanceOf(assetA, carol).String())
	requireReserves(t, h.pool, 953, 2100)
}

func TestSwapRejections(t *testing.T) {
	h := newHarness(t)
	h.fund(t, bob, 100, 100)

	_, err := h.pool.SwapExactTokensForTokens(bob, amm.SwapParams{AmountIn: big.NewInt(10), TokenIn: assetA})
	require.ErrorIs(t, err, amm.ErrInsufficientLiquidity)

	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)

	_, err = h.pool.SwapExactTokensForTokens(bob, amm.SwapParams{AmountIn: big.NewInt(10), TokenIn: carol})
	require.ErrorIs(t, err, amm.ErrInvalidAsset)
	_, err = h.pool.SwapExactTokensForTokens(bob, amm.SwapParams{AmountIn: big.NewInt(0), TokenIn: assetA})
	require.ErrorIs(t, err, amm.ErrInvalidAmount)
	_, err = h.pool.SwapExactTokensForTokens(bob, amm.SwapParams{AmountIn: big.NewInt(-5), TokenIn: assetA})
	require.ErrorIs(t, err, amm.ErrInvalidAmount)
	_, err = h.pool.SwapExactTokensForTokens(bob, amm.SwapParams{AmountIn: big.NewInt(10), AmountOutMin: big.NewInt(20), TokenIn: assetA})
	require.ErrorIs(t, err, amm.ErrSlippageExceeded)
	_, err = h.pool.SwapExactTokensForTokens(bob, amm.SwapParams{AmountIn: big.NewInt(1), AmountOutMin: big.NewInt(1), TokenIn: assetB})
	require.ErrorIs(t, err, amm.ErrSlippageExceeded)
	_, err = h.pool.SwapExactTokensForTokens(carol, amm.SwapParams{AmountIn: big.NewInt(10), TokenIn: assetA})
	require.True(t, errors.Is(err, amm.ErrUnauthorized) || errors.Is(err, amm.ErrInsufficientFunds), "got %v", err)

	requireReserves(t, h.pool, 1000, 2000)
	assert.Equal(t, "100", h.book.BalanceOf(assetA, bob).String())
}

func TestSwapDustInputYieldsZero(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)
	h.fund(t, bob, 0, 1)

	// 1*997*1000 / (2000*1000 + 997) truncates to zero
	out, err := h.pool.SwapExactTokensForTokens(bob, amm.SwapParams{AmountIn: big.NewInt(1), TokenIn: assetB})
	require.NoError(t, err)
	assert.Equal(t, "0", out.String())
	requireReserves(t, h.pool, 1000, 2001)
	assert.Equal(t, "0", h.book.BalanceOf(assetB, bob).String())
}

func TestSwapPayoutFailureLeavesNoTrace(t *testing.T) {
	poolAddr := amm.PoolAddress(assetA, assetB)
	h := newHarnessWith(t, func(l amm.Ledger) amm.Ledger {
		return blockedLedger{Ledger: l, asset: assetB, from: poolAddr}
	})
	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)
	require.NoError(t, h.book.Mint(assetA, bob, big.NewInt(100)))
	require.NoError(t, h.book.Approve(assetA, bob, poolAddr, big.NewInt(100)))
	h.events = nil

	_, err := h.pool.SwapExactTokensForTokens(bob, amm.SwapParams{AmountIn: big.NewInt(100), TokenIn: assetA})
	require.ErrorIs(t, err, amm.ErrInsufficientFunds)

	requireReserves(t, h.pool, 1000, 2000)
	assert.Equal(t, "100", h.book.BalanceOf(assetA, bob).String())
	assert.Equal(t, "100", h.book.Allowance(assetA, bob, poolAddr).String())
	assert.Empty(t, h.events)
}

func TestGetAmountOutEmptyPool(t *testing.T) {
	h := newHarness(t)

	out, err := h.pool.GetAmountOut(big.NewInt(1000), assetA)
	require.NoError(t, err)
	assert.Equal(t, "0", out.String())

	_, err = h.pool.GetAmountOut(big.NewInt(1000), carol)
	require.ErrorIs(t, err, amm.ErrInvalidAsset)
	_, err = h.pool.GetAmountOut(big.NewInt(0), assetA)
	require.ErrorIs(t, err, amm.ErrInvalidAmount)
}

func TestGetExchangeRate(t *testing.T) {
	h := newHarness(t)

	aToB, bToA := h.pool.GetExchangeRate()
	assert.Equal(t, "0", aToB.String())
	assert.Equal(t, "0", bToA.String())

	h.fund(t, alice, 1000, 2000)
	h.add(t, alice, 1000, 2000)

	aToB, bToA = h.pool.GetExchangeRate()
	assert.Equal(t, "2000000000000000000", aToB.String())
	assert.Equal(t, "500000000000000000", bToA.String())
}

func TestConcurrentSwapsConserveFunds(t *testing.T) {
	h := newHarness(t)
	h.fund(t, alice, 1_000_000, 1_000_000)
	h.add(t, alice, 1_000_000, 1_000_000)

	traders := []common.Address{bob, carol}
	for _, trader := range traders {
		h.fund(t, trader, 10_000, 10_000)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for j, trader := range traders {
			wg.Add(1)
			tokenIn := assetA
			if (i+j)%2 == 1 {
				tokenIn = assetB
			}
			go func(trader, tokenIn common.Address) {
				defer wg.Done()
				_, _ = h.pool.SwapExactTokensForTokens(trader, amm.SwapParams{AmountIn: big.NewInt(100), TokenIn: tokenIn})
			}(trader, tokenIn)
		}
	}
	wg.Wait()

	poolAddr := h.pool.Info().Address
	for _, asset := range []common.Address{assetA, assetB} {
		total := new(big.Int).Set(h.book.BalanceOf(asset, poolAddr))
		for _, account := range []common.Address{alice, bob, carol} {
			total.Add(total, h.book.BalanceOf(asset, account))
		}
		assert.Equal(t, h.book.TotalSupply(asset).String(), total.String())
	}

	reserveA, reserveB := h.pool.GetReserves()
	k := new(big.Int).Mul(reserveA, reserveB)
	assert.GreaterOrEqual(t, k.Cmp(big.NewInt(1_000_000*1_000_000)), 0)
}
