package aggregate

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

func (a *Aggregator) getTokenDecimals(ctx context.Context, token string) (uint8, error) {
	if !common.IsHexAddress(token) {
		return 0, fmt.Errorf("invalid token address: %s", token)
	}
	meta, err := a.tokens.Resolve(ctx, a.chainClient, common.HexToAddress(token), a.logger)
	if err != nil {
		return 0, err
	}
	return meta.Decimals, nil
}
