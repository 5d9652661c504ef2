package aggregate

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"ammScope/internal/dex"
)

// fetchTVL reads the latest on-chain balances of both assets held by the
// pool address.
func (a *Aggregator) fetchTVL(ctx context.Context, assetA, assetB, poolAddr string) (*big.Int, *big.Int, error) {
	if !common.IsHexAddress(assetA) || !common.IsHexAddress(assetB) || !common.IsHexAddress(poolAddr) {
		return nil, nil, fmt.Errorf("invalid address")
	}

	pool := common.HexToAddress(poolAddr)
	balA, err := dex.FetchBalance(ctx, a.chainClient, common.HexToAddress(assetA), pool, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("asset a balance: %w", err)
	}
	balB, err := dex.FetchBalance(ctx, a.chainClient, common.HexToAddress(assetB), pool, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("asset b balance: %w", err)
	}
	return balA, balB, nil
}
