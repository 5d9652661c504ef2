package amm

import (
	"math/big"
	"testing"
)

func TestGetAmountOut(t *testing.T) {
	cases := []struct {
		name                    string
		amountIn, resIn, resOut int64
		want                    int64
	}{
		{"small_trade", 10, 1000, 2000, 19},
		{"reverse_small_trade", 100, 2000, 1000, 47},
		{"rounds_to_zero", 1, 2000, 1000, 0},
		{"large_trade", 1_000_000, 1000, 2000, 1997},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var dst, t1, t2 big.Int
			got := GetAmountOut(&dst, &t1, &t2, big.NewInt(tc.amountIn), big.NewInt(tc.resIn), big.NewInt(tc.resOut))
			if got.Int64() != tc.want {
				t.Fatalf("GetAmountOut(%d, %d, %d) = %s, want %d", tc.amountIn, tc.resIn, tc.resOut, got, tc.want)
			}
			if got != &dst {
				t.Fatalf("result should be written into dst")
			}
		})
	}
}

func TestBootstrapShares(t *testing.T) {
	cases := []struct {
		a, b int64
		want int64
	}{
		{1000, 2000, 414},
		{1001, 1001, 1},
		{1000, 1000, 0},
		{10, 10, -990},
		{4, 1_000_000, 1000},
	}
	for _, tc := range cases {
		got := BootstrapShares(big.NewInt(tc.a), big.NewInt(tc.b))
		if got.Int64() != tc.want {
			t.Fatalf("BootstrapShares(%d, %d) = %s, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestProportionalSharesTakesMinimum(t *testing.T) {
	// 100*1414/1000 = 141, 300*1414/2000 = 212
	got := ProportionalShares(big.NewInt(100), big.NewInt(300), big.NewInt(1000), big.NewInt(2000), big.NewInt(1414))
	if got.Int64() != 141 {
		t.Fatalf("ProportionalShares = %s, want 141", got)
	}
	// 300*1414/1000 = 424, 200*1414/2000 = 141
	got = ProportionalShares(big.NewInt(300), big.NewInt(200), big.NewInt(1000), big.NewInt(2000), big.NewInt(1414))
	if got.Int64() != 141 {
		t.Fatalf("ProportionalShares = %s, want 141", got)
	}
}

func TestProportionalSharesUsesPreDepositReserves(t *testing.T) {
	// With post-deposit reserves over (reserve+1) the same deposit would mint
	// 1100*1414/1101 = 1412 rather than 141.
	got := ProportionalShares(big.NewInt(100), big.NewInt(200), big.NewInt(1000), big.NewInt(2000), big.NewInt(1414))
	if got.Int64() != 141 {
		t.Fatalf("ProportionalShares = %s, want 141", got)
	}
}

func TestQuote(t *testing.T) {
	if got := Quote(big.NewInt(100), big.NewInt(1000), big.NewInt(2000)); got.Int64() != 200 {
		t.Fatalf("Quote = %s, want 200", got)
	}
	if got := Quote(big.NewInt(7), big.NewInt(3), big.NewInt(2)); got.Int64() != 4 {
		t.Fatalf("Quote = %s, want 4", got)
	}
}

func TestExchangeRate(t *testing.T) {
	if got := ExchangeRate(big.NewInt(1000), big.NewInt(2000)); got.String() != "2000000000000000000" {
		t.Fatalf("ExchangeRate = %s", got)
	}
	if got := ExchangeRate(big.NewInt(3), big.NewInt(1)); got.String() != "333333333333333333" {
		t.Fatalf("ExchangeRate = %s", got)
	}
	if got := ExchangeRate(new(big.Int), big.NewInt(1)); got.Sign() != 0 {
		t.Fatalf("ExchangeRate with empty reserve = %s, want 0", got)
	}
}
