package model

// FeePPM is the swap fee in parts per million (0.3%).
const FeePPM = 3000

// Pool is a pool metadata record for storage.
type Pool struct {
	Address      string `json:"address"`
	AssetA       string `json:"asset_a"`
	AssetB       string `json:"asset_b"`
	ShareSymbol  string `json:"share_symbol"`
	Fee          uint32 `json:"fee"`
	FirstSeenSeq uint64 `json:"first_seen_seq"`
}
