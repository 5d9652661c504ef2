// Package ledger provides in-memory implementations of the balance ledger and
// pool-share capabilities consumed by the amm package.
package ledger

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"ammScope/internal/amm"
)

type allowanceKey struct {
	asset   common.Address
	owner   common.Address
	spender common.Address
}

// Book holds balances for any number of assets plus ERC20-style allowances.
type Book struct {
	mu         sync.Mutex
	balances   map[common.Address]map[common.Address]*big.Int
	supply     map[common.Address]*big.Int
	allowances map[allowanceKey]*big.Int
}

func NewBook() *Book {
	return &Book{
		balances:   make(map[common.Address]map[common.Address]*big.Int),
		supply:     make(map[common.Address]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
	}
}

// Mint credits new units of asset to an account.
func (b *Book) Mint(asset, to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.credit(asset, to, amount)
	supply, ok := b.supply[asset]
	if !ok {
		supply = new(big.Int)
		b.supply[asset] = supply
	}
	supply.Add(supply, amount)
	return nil
}

// Approve sets the amount spender may move out of owner's balance.
func (b *Book) Approve(asset, owner, spender common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.allowances[allowanceKey{asset: asset, owner: owner, spender: spender}] = new(big.Int).Set(amount)
	return nil
}

func (b *Book) Allowance(asset, owner, spender common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if v, ok := b.allowances[allowanceKey{asset: asset, owner: owner, spender: spender}]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

func (b *Book) BalanceOf(asset, account common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(b.balance(asset, account))
}

func (b *Book) TotalSupply(asset common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if v, ok := b.supply[asset]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Transfer moves funds on behalf of their owner.
func (b *Book) Transfer(asset, from, to common.Address, amount *big.Int) error {
	return b.transfer(from, asset, from, to, amount)
}

// Spender returns a view of the book that acts as spender: it moves its own
// funds freely and other accounts' funds only up to their allowance.
func (b *Book) Spender(spender common.Address) *Account {
	return &Account{book: b, spender: spender}
}

func (b *Book) transfer(spender, asset, from, to common.Address, amount *big.Int) error {
	return b.settle(spender, amm.Leg{Asset: asset, From: from, To: to, Amount: amount})
}

// settle applies legs under one lock. A failing leg undoes the legs before
// it, allowances included.
func (b *Book) settle(spender common.Address, legs ...amm.Leg) error {
	for _, leg := range legs {
		if err := checkAmount(leg.Amount); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	applied := make([]func(), 0, len(legs))
	for _, leg := range legs {
		undo, err := b.move(spender, leg)
		if err != nil {
			for i := len(applied) - 1; i >= 0; i-- {
				applied[i]()
			}
			return err
		}
		applied = append(applied, undo)
	}
	return nil
}

func (b *Book) move(spender common.Address, leg amm.Leg) (func(), error) {
	var allowance *big.Int
	if spender != leg.From {
		key := allowanceKey{asset: leg.Asset, owner: leg.From, spender: spender}
		allowance = b.allowances[key]
		if allowance == nil || allowance.Cmp(leg.Amount) < 0 {
			return nil, fmt.Errorf("%w: %s may not move %s of %s from %s", amm.ErrUnauthorized, spender.Hex(), leg.Amount, leg.Asset.Hex(), leg.From.Hex())
		}
	}

	balance := b.balance(leg.Asset, leg.From)
	if balance.Cmp(leg.Amount) < 0 {
		return nil, fmt.Errorf("%w: %s holds %s of %s, needs %s", amm.ErrInsufficientFunds, leg.From.Hex(), balance, leg.Asset.Hex(), leg.Amount)
	}

	if allowance != nil {
		allowance.Sub(allowance, leg.Amount)
	}
	b.debit(leg.Asset, leg.From, leg.Amount)
	b.credit(leg.Asset, leg.To, leg.Amount)

	return func() {
		b.debit(leg.Asset, leg.To, leg.Amount)
		b.credit(leg.Asset, leg.From, leg.Amount)
		if allowance != nil {
			allowance.Add(allowance, leg.Amount)
		}
	}, nil
}

func (b *Book) balance(asset, account common.Address) *big.Int {
	if accounts, ok := b.balances[asset]; ok {
		if v, ok := accounts[account]; ok {
			return v
		}
	}
	return new(big.Int)
}

func (b *Book) credit(asset, account common.Address, amount *big.Int) {
	accounts, ok := b.balances[asset]
	if !ok {
		accounts = make(map[common.Address]*big.Int)
		b.balances[asset] = accounts
	}
	v, ok := accounts[account]
	if !ok {
		v = new(big.Int)
		accounts[account] = v
	}
	v.Add(v, amount)
}

func (b *Book) debit(asset, account common.Address, amount *big.Int) {
	v := b.balances[asset][account]
	v.Sub(v, amount)
}

// Account is a Book bound to one spender. It satisfies amm.Ledger.
type Account struct {
	book    *Book
	spender common.Address
}

var _ amm.Ledger = (*Account)(nil)

func (a *Account) Transfer(asset, from, to common.Address, amount *big.Int) error {
	return a.book.transfer(a.spender, asset, from, to, amount)
}

// Settle moves every leg or none of them.
func (a *Account) Settle(legs ...amm.Leg) error {
	return a.book.settle(a.spender, legs...)
}

func (a *Account) BalanceOf(asset, account common.Address) *big.Int {
	return a.book.BalanceOf(asset, account)
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: amount must be zero or greater", amm.ErrInvalidAmount)
	}
	return nil
}
