package amm

import "math/big"

// MinimumLiquidity is the share amount locked forever on the first deposit.
const MinimumLiquidity = 1000

// fee: 0.3% => multiplier 997/1000
var (
	feeMul = big.NewInt(997)
	feeDen = big.NewInt(1000)

	minimumLiquidity = big.NewInt(MinimumLiquidity)

	// Scale is the fixed-point precision of exchange rates (10^18).
	Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

// GetAmountOut writes the constant-product output for amountIn into dst and
// returns it. t1 and t2 are scratch values; none of dst, t1, t2 may alias the
// inputs. The result is truncated toward zero, which favours the pool.
func GetAmountOut(dst, t1, t2 *big.Int, amountIn, reserveIn, reserveOut *big.Int) *big.Int {
	// t1 = amountIn * 997
	t1.Mul(amountIn, feeMul)
	// t2 = reserveIn * 1000 + t1
	t2.Mul(reserveIn, feeDen)
	t2.Add(t2, t1)
	// dst = t1 * reserveOut / t2
	dst.Mul(t1, reserveOut)
	return dst.Div(dst, t2)
}

// Quote returns amountA priced in asset B at the reserve ratio, truncated.
func Quote(amountA, reserveA, reserveB *big.Int) *big.Int {
	out := new(big.Int).Mul(amountA, reserveB)
	return out.Quo(out, reserveA)
}

// BootstrapShares returns floor(sqrt(reserveA*reserveB)) - MinimumLiquidity.
// The result is negative or zero when the deposit is too small.
func BootstrapShares(reserveA, reserveB *big.Int) *big.Int {
	k := new(big.Int).Mul(reserveA, reserveB)
	root := new(big.Int).Sqrt(k)
	return root.Sub(root, minimumLiquidity)
}

// ProportionalShares returns min(amountA*supply/reserveA, amountB*supply/reserveB)
// using reserves from before the deposit.
func ProportionalShares(amountA, amountB, reserveA, reserveB, supply *big.Int) *big.Int {
	liquidityA := new(big.Int).Mul(amountA, supply)
	liquidityA.Quo(liquidityA, reserveA)
	liquidityB := new(big.Int).Mul(amountB, supply)
	liquidityB.Quo(liquidityB, reserveB)
	if liquidityB.Cmp(liquidityA) < 0 {
		return liquidityB
	}
	return liquidityA
}

// ExchangeRate returns reserveOut*Scale/reserveIn, or zero if either reserve
// is zero.
func ExchangeRate(reserveIn, reserveOut *big.Int) *big.Int {
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return new(big.Int)
	}
	rate := new(big.Int).Mul(reserveOut, Scale)
	return rate.Quo(rate, reserveIn)
}
