package model

import "encoding/json"

// SwapEventData is the TokenSwap event payload.
type SwapEventData struct {
	Trader    string `json:"trader"`
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

// LiquidityAddedData is the LiquidityAdded event payload.
type LiquidityAddedData struct {
	Provider     string `json:"provider"`
	AmountA      string `json:"amount_a"`
	AmountB      string `json:"amount_b"`
	SharesMinted string `json:"shares_minted"`
}

// LiquidityRemovedData is the LiquidityRemoved event payload.
type LiquidityRemovedData struct {
	Provider     string `json:"provider"`
	AmountA      string `json:"amount_a"`
	AmountB      string `json:"amount_b"`
	SharesBurned string `json:"shares_burned"`
}

// PoolState is the pool snapshot taken right after an event.
type PoolState struct {
	ReserveA    string `json:"reserve_a"`
	ReserveB    string `json:"reserve_b"`
	TotalSupply string `json:"total_supply"`
}

// PoolEvent is an emitted pool event enriched with pool metadata.
type PoolEvent struct {
	RunID     string      `json:"run_id"`
	Seq       uint64      `json:"seq"`
	Address   string      `json:"address"`
	EventName string      `json:"event_name"`
	Timestamp uint64      `json:"timestamp"`
	Decoded   interface{} `json:"decoded"`
	PoolMeta  PoolMeta    `json:"pool_meta"`
	State     *PoolState  `json:"state,omitempty"`
}

// PoolEventRecord is the JSON form of PoolEvent read back for aggregation.
type PoolEventRecord struct {
	RunID     string          `json:"run_id"`
	Seq       uint64          `json:"seq"`
	Address   string          `json:"address"`
	EventName string          `json:"event_name"`
	Timestamp uint64          `json:"timestamp"`
	Decoded   json.RawMessage `json:"decoded"`
	PoolMeta  PoolMeta        `json:"pool_meta"`
	State     *PoolState      `json:"state,omitempty"`
}
