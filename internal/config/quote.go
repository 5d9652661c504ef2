package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// QuoteConfig holds settings for a live pair quote.
type QuoteConfig struct {
	RPCURL   string
	Pair     string
	TokenIn  string
	AmountIn string
	Block    uint64
	LogLevel string
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		RPCURL:   v.GetString("rpc"),
		Pair:     v.GetString("pair"),
		TokenIn:  v.GetString("token-in"),
		AmountIn: v.GetString("amount-in"),
		Block:    v.GetUint64("block"),
		LogLevel: v.GetString("log-level"),
	}
	switch {
	case cfg.RPCURL == "":
		return QuoteConfig{}, fmt.Errorf("rpc is required")
	case cfg.Pair == "":
		return QuoteConfig{}, fmt.Errorf("pair is required")
	case cfg.TokenIn == "":
		return QuoteConfig{}, fmt.Errorf("token-in is required")
	case cfg.AmountIn == "":
		return QuoteConfig{}, fmt.Errorf("amount-in is required")
	}
	return cfg, nil
}
