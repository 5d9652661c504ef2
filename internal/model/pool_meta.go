package model

// PoolMeta captures immutable pool metadata attached to every event.
type PoolMeta struct {
	AssetA      string `json:"asset_a"`
	AssetB      string `json:"asset_b"`
	SymbolA     string `json:"symbol_a,omitempty"`
	SymbolB     string `json:"symbol_b,omitempty"`
	DecimalsA   uint8  `json:"decimals_a"`
	DecimalsB   uint8  `json:"decimals_b"`
	ShareSymbol string `json:"share_symbol"`
	Fee         uint32 `json:"fee"`
}
