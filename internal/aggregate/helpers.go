package aggregate

import (
	"math/big"
	"time"
)

const ratioScale = 18

func formatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(abs, denom)
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

func computeFeeRates(feeA, feeB, tvlA, tvlB *big.Int) (*string, *string) {
	var feeRateA, feeRateB *string
	if rate := computeRateFromInt(feeA, tvlA); rate != "" {
		feeRateA = &rate
	}
	if rate := computeRateFromInt(feeB, tvlB); rate != "" {
		feeRateB = &rate
	}
	return feeRateA, feeRateB
}

func computeRateFromInt(fee, tvl *big.Int) string {
	if fee == nil || fee.Sign() == 0 || tvl == nil || tvl.Sign() == 0 {
		return ""
	}
	rat := new(big.Rat).SetFrac(fee, tvl)
	return rat.FloatString(ratioScale)
}

// computeAPR annualises the window fee yield. Fees in asset B are valued in
// asset A at the closing reserve ratio and compared against the pool value
// 2*tvlA.
func computeAPR(feeA, feeB, tvlA, tvlB *big.Int, windowSeconds uint64) *string {
	if windowSeconds == 0 || tvlA == nil || tvlB == nil || tvlA.Sign() <= 0 || tvlB.Sign() <= 0 {
		return nil
	}
	value := new(big.Rat)
	if feeA != nil {
		value.SetInt(feeA)
	}
	if feeB != nil && feeB.Sign() > 0 {
		inA := new(big.Rat).SetFrac(new(big.Int).Mul(feeB, tvlA), tvlB)
		value.Add(value, inA)
	}
	if value.Sign() == 0 {
		return nil
	}

	poolValue := new(big.Rat).SetInt(new(big.Int).Lsh(tvlA, 1))
	yearSeconds := big.NewRat(int64(365*24*time.Hour/time.Second), 1)
	window := big.NewRat(int64(windowSeconds), 1)

	apr := new(big.Rat).Quo(value, poolValue)
	apr.Mul(apr, yearSeconds)
	apr.Quo(apr, window)
	val := apr.FloatString(ratioScale)
	return &val
}
