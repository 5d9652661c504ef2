package model

const (
	OpFund            = "fund"
	OpApprove         = "approve"
	OpTransfer        = "transfer"
	OpAddLiquidity    = "add_liquidity"
	OpRemoveLiquidity = "remove_liquidity"
	OpSwap            = "swap"
)

// Operation is one line of a replay input. Amounts are base-10 integer
// strings; addresses are hex. Unused fields are omitted.
type Operation struct {
	Seq       uint64 `json:"seq"`
	Timestamp uint64 `json:"timestamp"`
	Op        string `json:"op"`
	Account   string `json:"account"`

	// fund, approve, transfer
	Asset   string `json:"asset,omitempty"`
	Spender string `json:"spender,omitempty"`
	To      string `json:"to,omitempty"`
	Amount  string `json:"amount,omitempty"`

	// add_liquidity
	AmountA    string `json:"amount_a,omitempty"`
	AmountB    string `json:"amount_b,omitempty"`
	AmountAMin string `json:"amount_a_min,omitempty"`
	AmountBMin string `json:"amount_b_min,omitempty"`

	// remove_liquidity
	Shares string `json:"shares,omitempty"`

	// swap
	TokenIn      string `json:"token_in,omitempty"`
	AmountIn     string `json:"amount_in,omitempty"`
	AmountOutMin string `json:"amount_out_min,omitempty"`

	Recipient string `json:"recipient,omitempty"`
}

// OperationError records an operation the pool or ledger rejected.
type OperationError struct {
	RunID     string `json:"run_id"`
	Seq       uint64 `json:"seq"`
	Timestamp uint64 `json:"timestamp"`
	Op        string `json:"op"`
	Account   string `json:"account"`
	Error     string `json:"error"`
}
