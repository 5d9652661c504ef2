package postgres

import (
	"encoding/json"
	"testing"

	"ammScope/internal/model"
)

func TestEventArgs(t *testing.T) {
	event := model.PoolEvent{
		RunID:     "run",
		Seq:       12,
		Address:   "0xpool",
		EventName: "TokenSwap",
		Timestamp: 1700000000,
		Decoded:   model.SwapEventData{AmountIn: "10", AmountOut: "19"},
		State:     &model.PoolState{ReserveA: "1010", ReserveB: "1981", TotalSupply: "1414"},
	}

	args, err := eventArgs(event)
	if err != nil {
		t.Fatalf("eventArgs: %v", err)
	}
	if len(args) != 9 {
		t.Fatalf("expected 9 args, got %d", len(args))
	}
	if args[1].(int64) != 12 {
		t.Fatalf("seq arg = %v", args[1])
	}

	var swap model.SwapEventData
	if err := json.Unmarshal(args[5].([]byte), &swap); err != nil {
		t.Fatalf("decoded arg: %v", err)
	}
	if swap.AmountOut != "19" {
		t.Fatalf("amount_out = %q", swap.AmountOut)
	}
	if got := *args[7].(*string); got != "1981" {
		t.Fatalf("reserve_b arg = %q", got)
	}
}

func TestEventArgsWithoutState(t *testing.T) {
	args, err := eventArgs(model.PoolEvent{Seq: 1, Decoded: map[string]string{}})
	if err != nil {
		t.Fatalf("eventArgs: %v", err)
	}
	if args[6].(*string) != nil {
		t.Fatalf("reserve_a should be nil without state")
	}
}
