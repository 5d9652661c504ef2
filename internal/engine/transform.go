package engine

import (
	"ammScope/internal/amm"
	"ammScope/internal/model"
)

func buildPoolEvent(runID string, op model.Operation, pool string, meta model.PoolMeta, event amm.Event, state amm.State) model.PoolEvent {
	return model.PoolEvent{
		RunID:     runID,
		Seq:       op.Seq,
		Address:   pool,
		EventName: event.EventName(),
		Timestamp: op.Timestamp,
		Decoded:   decodeEvent(event),
		PoolMeta:  meta,
		State: &model.PoolState{
			ReserveA:    state.ReserveA.String(),
			ReserveB:    state.ReserveB.String(),
			TotalSupply: state.TotalSupply.String(),
		},
	}
}

func decodeEvent(event amm.Event) interface{} {
	switch e := event.(type) {
	case amm.TokenSwap:
		return model.SwapEventData{
			Trader:    e.Trader.Hex(),
			TokenIn:   e.TokenIn.Hex(),
			TokenOut:  e.TokenOut.Hex(),
			AmountIn:  e.AmountIn.String(),
			AmountOut: e.AmountOut.String(),
		}
	case amm.LiquidityAdded:
		return model.LiquidityAddedData{
			Provider:     e.Provider.Hex(),
			AmountA:      e.AmountA.String(),
			AmountB:      e.AmountB.String(),
			SharesMinted: e.SharesMinted.String(),
		}
	case amm.LiquidityRemoved:
		return model.LiquidityRemovedData{
			Provider:     e.Provider.Hex(),
			AmountA:      e.AmountA.String(),
			AmountB:      e.AmountB.String(),
			SharesBurned: e.SharesBurned.String(),
		}
	default:
		return nil
	}
}

func operationError(runID string, op model.Operation, err error) model.OperationError {
	return model.OperationError{
		RunID:     runID,
		Seq:       op.Seq,
		Timestamp: op.Timestamp,
		Op:        op.Op,
		Account:   op.Account,
		Error:     err.Error(),
	}
}
