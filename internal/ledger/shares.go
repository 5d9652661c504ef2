package ledger

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"ammScope/internal/amm"
)

// Shares is a fungible pool-share token with a permanently locked portion.
type Shares struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
	holders  []common.Address
	locked   *big.Int
	supply   *big.Int
}

var _ amm.ShareToken = (*Shares)(nil)

func NewShares() *Shares {
	return &Shares{
		balances: make(map[common.Address]*big.Int),
		locked:   new(big.Int),
		supply:   new(big.Int),
	}
}

func (s *Shares) Mint(holder common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[holder]
	if !ok {
		balance = new(big.Int)
		s.balances[holder] = balance
		s.holders = append(s.holders, holder)
	}
	balance.Add(balance, amount)
	s.supply.Add(s.supply, amount)
}

func (s *Shares) Burn(holder common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: burn amount must be zero or greater", amm.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[holder]
	if !ok || balance.Cmp(amount) < 0 {
		have := new(big.Int)
		if ok {
			have.Set(balance)
		}
		return fmt.Errorf("%w: %s holds %s, burn %s", amm.ErrInsufficientShares, holder.Hex(), have, amount)
	}
	balance.Sub(balance, amount)
	s.supply.Sub(s.supply, amount)
	return nil
}

// Lock adds to the supply that no holder can ever burn.
func (s *Shares) Lock(amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locked.Add(s.locked, amount)
	s.supply.Add(s.supply, amount)
}

func (s *Shares) BalanceOf(holder common.Address) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.balances[holder]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

func (s *Shares) TotalSupply() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(s.supply)
}

func (s *Shares) Locked() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(s.locked)
}

// Holders lists every account ever credited, in order of first credit.
func (s *Shares) Holders() []common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]common.Address, len(s.holders))
	copy(out, s.holders)
	return out
}
