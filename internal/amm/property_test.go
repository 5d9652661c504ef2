package amm_test

import (
	"math/big"
	"testing"
	"testing/quick"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"ammScope/internal/amm"
)

// k = reserveA*reserveB never decreases across a swap.
func TestPropertySwapNeverDecreasesK(t *testing.T) {
	property := func(seedA, seedB uint32, amountIn uint32, sellB bool) bool {
		reserveA, reserveB := int64(seedA)+1001, int64(seedB)+1001
		if amountIn == 0 {
			return true
		}

		h := newHarness(t)
		h.fund(t, alice, reserveA, reserveB)
		h.add(t, alice, reserveA, reserveB)
		h.fund(t, bob, int64(amountIn), int64(amountIn))

		before := new(big.Int).Mul(big.NewInt(reserveA), big.NewInt(reserveB))
		tokenIn := assetA
		if sellB {
			tokenIn = assetB
		}
		_, err := h.pool.SwapExactTokensForTokens(bob, amm.SwapParams{AmountIn: big.NewInt(int64(amountIn)), TokenIn: tokenIn})
		a, b := h.pool.GetReserves()
		after := new(big.Int).Mul(a, b)
		if err != nil {
			// rejected swaps leave reserves untouched
			return after.Cmp(before) == 0
		}
		return after.Cmp(before) >= 0
	}

	err := quick.Check(property, &quick.Config{MaxCount: 300})
	require.NoError(t, err)
}

// A proportional deposit followed by withdrawing the minted shares never
// returns more than was deposited.
func TestPropertyAddRemoveRoundTrip(t *testing.T) {
	property := func(seedA, seedB, depositA, depositB uint32) bool {
		reserveA, reserveB := int64(seedA)+1001, int64(seedB)+1001
		if depositA == 0 || depositB == 0 {
			return true
		}

		h := newHarness(t)
		h.fund(t, alice, reserveA, reserveB)
		h.add(t, alice, reserveA, reserveB)
		h.fund(t, bob, int64(depositA), int64(depositB))

		added, err := h.pool.AddLiquidity(bob, amm.AddLiquidityParams{
			AmountADesired: big.NewInt(int64(depositA)),
			AmountBDesired: big.NewInt(int64(depositB)),
		})
		if err != nil {
			return true
		}
		removed, err := h.pool.RemoveLiquidity(bob, amm.RemoveLiquidityParams{Shares: added.SharesMinted})
		if err != nil {
			return false
		}
		return removed.AmountA.Cmp(added.AmountA) <= 0 && removed.AmountB.Cmp(added.AmountB) <= 0
	}

	err := quick.Check(property, &quick.Config{MaxCount: 300})
	require.NoError(t, err)
}

// Deposits keep the reserve ratio to within one unit of the smaller side.
func TestPropertyDepositKeepsRatio(t *testing.T) {
	property := func(seedA, seedB, desiredA, desiredB uint32) bool {
		reserveA, reserveB := int64(seedA)+1001, int64(seedB)+1001
		if desiredA == 0 || desiredB == 0 {
			return true
		}

		h := newHarness(t)
		h.fund(t, alice, reserveA, reserveB)
		h.add(t, alice, reserveA, reserveB)
		h.fund(t, bob, int64(desiredA), int64(desiredB))

		res, err := h.pool.AddLiquidity(bob, amm.AddLiquidityParams{
			AmountADesired: big.NewInt(int64(desiredA)),
			AmountBDesired: big.NewInt(int64(desiredB)),
		})
		if err != nil {
			return true
		}
		// |amountA*reserveB - amountB*reserveA| < max(reserveA, reserveB)
		lhs := new(big.Int).Mul(res.AmountA, big.NewInt(reserveB))
		rhs := new(big.Int).Mul(res.AmountB, big.NewInt(reserveA))
		diff := new(big.Int).Sub(lhs, rhs)
		bound := big.NewInt(reserveA)
		if reserveB > reserveA {
			bound = big.NewInt(reserveB)
		}
		return diff.Abs(diff).Cmp(bound) < 0
	}

	err := quick.Check(property, &quick.Config{MaxCount: 300})
	require.NoError(t, err)
}

// Every share is either held or locked.
func TestPropertyShareConservation(t *testing.T) {
	property := func(deposits []uint16) bool {
		h := newHarness(t)
		h.fund(t, alice, 10_000, 20_000)
		h.add(t, alice, 10_000, 20_000)

		lps := []common.Address{alice, bob, carol}
		for i, d := range deposits {
			lp := lps[i%len(lps)]
			amount := int64(d) + 1
			h.fund(t, lp, amount, 2*amount)
			_, _ = h.pool.AddLiquidity(lp, amm.AddLiquidityParams{AmountADesired: big.NewInt(amount), AmountBDesired: big.NewInt(2 * amount)})
			if i%3 == 2 {
				half := new(big.Int).Rsh(h.shares.BalanceOf(lp), 1)
				if half.Sign() > 0 {
					_, _ = h.pool.RemoveLiquidity(lp, amm.RemoveLiquidityParams{Shares: half})
				}
			}
		}

		sum := new(big.Int).Set(h.shares.Locked())
		for _, holder := range h.shares.Holders() {
			sum.Add(sum, h.shares.BalanceOf(holder))
		}
		return sum.Cmp(h.shares.TotalSupply()) == 0 && h.shares.Locked().Int64() == amm.MinimumLiquidity
	}

	err := quick.Check(property, &quick.Config{MaxCount: 100})
	require.NoError(t, err)
}
