package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammScope/internal/chain"
	"ammScope/internal/config"
	"ammScope/internal/dex"
	"ammScope/internal/engine"
)

type quoteOutput struct {
	Pair       string `json:"pair"`
	Block      uint64 `json:"block"`
	TokenIn    string `json:"token_in"`
	TokenOut   string `json:"token_out"`
	SymbolIn   string `json:"symbol_in,omitempty"`
	SymbolOut  string `json:"symbol_out,omitempty"`
	ReserveIn  string `json:"reserve_in"`
	ReserveOut string `json:"reserve_out"`
	AmountIn   string `json:"amount_in"`
	AmountOut  string `json:"amount_out"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pair, err := engine.ParseAddress(cfg.Pair)
	if err != nil {
		return fmt.Errorf("pair: %w", err)
	}
	tokenIn, err := engine.ParseAddress(cfg.TokenIn)
	if err != nil {
		return fmt.Errorf("token-in: %w", err)
	}
	amountIn, err := engine.ParseAmount(cfg.AmountIn)
	if err != nil {
		return fmt.Errorf("amount-in: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	block := cfg.Block
	if block == 0 {
		if block, err = chainClient.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
	}

	state, err := dex.FetchPairState(ctx, chainClient, pair, new(big.Int).SetUint64(block))
	if err != nil {
		return err
	}
	amountOut, tokenOut, err := state.QuoteExactIn(tokenIn, amountIn)
	if err != nil {
		return err
	}
	reserveIn, reserveOut, _, _ := state.Reserves(tokenIn)

	out := quoteOutput{
		Pair:       pair.Hex(),
		Block:      block,
		TokenIn:    tokenIn.Hex(),
		TokenOut:   tokenOut.Hex(),
		ReserveIn:  reserveIn.String(),
		ReserveOut: reserveOut.String(),
		AmountIn:   amountIn.String(),
		AmountOut:  amountOut.String(),
	}

	cache := dex.NewTokenMetaCache()
	if meta, err := cache.Resolve(ctx, chainClient, tokenIn, logger); err == nil {
		out.SymbolIn = meta.Symbol
	} else {
		logger.Warn("token metadata", zap.String("token", tokenIn.Hex()), zap.Error(err))
	}
	if meta, err := cache.Resolve(ctx, chainClient, tokenOut, logger); err == nil {
		out.SymbolOut = meta.Symbol
	} else {
		logger.Warn("token metadata", zap.String("token", tokenOut.Hex()), zap.Error(err))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
