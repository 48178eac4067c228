package ledger

import (
	"fmt"
	"sync"

	"shop_go/internal/domain"
	"shop_go/pkg/safe"
)

// NativeBook is the in-memory native-currency account book. The shop's
// treasury is just its account here, so treasury reads are live holdings.
type NativeBook struct {
	mu       sync.RWMutex
	balances map[domain.Account]int64
}

// NewNativeBook creates an empty currency book.
func NewNativeBook() *NativeBook {
	return &NativeBook{balances: make(map[domain.Account]int64)}
}

// BalanceOf returns the holder's current native balance.
func (b *NativeBook) BalanceOf(holder domain.Account) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[holder]
}

// Deposit credits externally sourced funds to the holder.
func (b *NativeBook) Deposit(holder domain.Account, amount int64) {
	if amount <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[holder] = safe.SafeAdd(b.balances[holder], amount)
}

// Transfer moves amount from one account to another. A short balance rejects
// the whole transfer.
func (b *NativeBook) Transfer(from, to domain.Account, amount int64) error {
	if amount < 0 {
		return ErrBadAmount
	}
	if amount == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.balances[from] < amount {
		return ErrInsufficientBalance
	}
	b.balances[from] = safe.SafeSub(b.balances[from], amount)
	b.balances[to] = safe.SafeAdd(b.balances[to], amount)
	if b.balances[from] < 0 {
		panic(fmt.Sprintf("NATIVE_INVARIANT_NEGATIVE_BALANCE: holder=%s balance=%d",
			from, b.balances[from]))
	}
	return nil
}

// Snapshot returns a copy of all native balances (for state dump).
func (b *NativeBook) Snapshot() map[domain.Account]int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[domain.Account]int64, len(b.balances))
	for holder, bal := range b.balances {
		out[holder] = bal
	}
	return out
}
