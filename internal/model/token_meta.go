package model

import "strings"

// TokenMeta is the ERC20 metadata of a pool asset.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
}

// Label returns the symbol, or a shortened address when the token has none.
func (m TokenMeta) Label() string {
	if sym := strings.TrimSpace(m.Symbol); sym != "" {
		return sym
	}
	if len(m.Address) > 10 {
		return m.Address[:6] + ".." + m.Address[len(m.Address)-4:]
	}
	return m.Address
}
