package ledger

import (
	"errors"
	"fmt"
	"sync"

	"shop_go/internal/domain"
	"shop_go/pkg/safe"
)

var (
	// ErrUnknownAsset is returned for an id outside the book's fixed range.
	ErrUnknownAsset = errors.New("ledger: unknown asset id")

	// ErrBadAmount is returned for a non-positive amount.
	ErrBadAmount = errors.New("ledger: amount must be positive")

	// ErrLengthMismatch is returned when batch slices differ in length.
	ErrLengthMismatch = errors.New("ledger: ids and amounts length mismatch")

	// ErrInsufficientBalance is returned when a transfer or burn exceeds the
	// holder's balance.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrNotAuthorized is returned when the operator is neither the holder
	// nor approved for the holder.
	ErrNotAuthorized = errors.New("ledger: operator not authorized")
)

// AssetBook is the in-memory multi-asset balance book. It holds per-holder
// balances for a fixed number of asset classes plus the operator approval
// table, and implements domain.AssetLedger.
//
// The book is its own authority: it re-checks balances and authorization on
// every mutation even though the engine validates first.
type AssetBook struct {
	mu        sync.RWMutex
	n         int
	uris      []string
	balances  map[domain.Account][]int64
	approvals map[domain.Account]map[domain.Account]bool
}

// NewAssetBook creates a book for n asset classes. uris may be nil or must
// have length n.
func NewAssetBook(n int, uris []string) (*AssetBook, error) {
	if n <= 0 {
		return nil, fmt.Errorf("ledger: asset count must be positive, got %d", n)
	}
	if uris != nil && len(uris) != n {
		return nil, fmt.Errorf("ledger: got %d uris for %d assets", len(uris), n)
	}
	if uris == nil {
		uris = make([]string, n)
	}
	return &AssetBook{
		n:         n,
		uris:      append([]string(nil), uris...),
		balances:  make(map[domain.Account][]int64),
		approvals: make(map[domain.Account]map[domain.Account]bool),
	}, nil
}

// AssetCount returns the fixed number of asset classes.
func (b *AssetBook) AssetCount() int { return b.n }

// row returns the holder's balance row, creating it on first touch.
// Caller must hold the write lock.
func (b *AssetBook) row(holder domain.Account) []int64 {
	row, ok := b.balances[holder]
	if !ok {
		row = make([]int64, b.n)
		b.balances[holder] = row
	}
	return row
}

// BalanceOf returns the holder's balance for one asset. Unknown holders and
// ids out of range read as zero.
func (b *AssetBook) BalanceOf(holder domain.Account, id domain.AssetID) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !id.InRange(b.n) {
		return 0
	}
	row, ok := b.balances[holder]
	if !ok {
		return 0
	}
	return row[id]
}

// BalanceOfBatch returns pairwise balances for holders[i], ids[i].
func (b *AssetBook) BalanceOfBatch(holders []domain.Account, ids []domain.AssetID) []int64 {
	out := make([]int64, 0, len(ids))
	for i := range ids {
		var holder domain.Account
		if i < len(holders) {
			holder = holders[i]
		}
		out = append(out, b.BalanceOf(holder, ids[i]))
	}
	return out
}

// SetApprovalForAll grants or revokes operator rights over every asset class
// of the owner's account.
func (b *AssetBook) SetApprovalForAll(owner, operator domain.Account, approved bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ops, ok := b.approvals[owner]
	if !ok {
		ops = make(map[domain.Account]bool)
		b.approvals[owner] = ops
	}
	ops[operator] = approved
}

// IsApprovedForAll reports whether operator may move owner's balances.
func (b *AssetBook) IsApprovedForAll(owner, operator domain.Account) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.approvals[owner][operator]
}

func (b *AssetBook) checkItem(id domain.AssetID, amount int64) error {
	if !id.InRange(b.n) {
		return ErrUnknownAsset
	}
	if amount <= 0 {
		return ErrBadAmount
	}
	return nil
}

// Transfer moves amount of id from `from` to `to`. The operator must be the
// holder itself or approved for it.
func (b *AssetBook) Transfer(operator, from, to domain.Account, id domain.AssetID, amount int64) error {
	return b.TransferBatch(operator, from, to, []domain.AssetID{id}, []int64{amount})
}

// TransferBatch applies pairwise transfers as a unit: every line item is
// checked before any balance moves.
func (b *AssetBook) TransferBatch(operator, from, to domain.Account, ids []domain.AssetID, amounts []int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(ids) != len(amounts) {
		return ErrLengthMismatch
	}
	if operator != from && !b.approvals[from][operator] {
		return ErrNotAuthorized
	}

	fromRow := b.row(from)
	staged := make([]int64, b.n)
	for i, id := range ids {
		if err := b.checkItem(id, amounts[i]); err != nil {
			return err
		}
		staged[id] = safe.SafeAdd(staged[id], amounts[i])
		if staged[id] > fromRow[id] {
			return ErrInsufficientBalance
		}
	}

	toRow := b.row(to)
	for i, id := range ids {
		fromRow[id] = safe.SafeSub(fromRow[id], amounts[i])
		toRow[id] = safe.SafeAdd(toRow[id], amounts[i])
	}
	b.verifyRow(from, fromRow)
	return nil
}

// Mint credits freshly created units to the holder.
func (b *AssetBook) Mint(to domain.Account, id domain.AssetID, amount int64) error {
	return b.MintBatch(to, []domain.AssetID{id}, []int64{amount})
}

// MintBatch credits every line item, or nothing.
func (b *AssetBook) MintBatch(to domain.Account, ids []domain.AssetID, amounts []int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(ids) != len(amounts) {
		return ErrLengthMismatch
	}
	for i, id := range ids {
		if err := b.checkItem(id, amounts[i]); err != nil {
			return err
		}
	}
	row := b.row(to)
	for i, id := range ids {
		row[id] = safe.SafeAdd(row[id], amounts[i])
	}
	return nil
}

// Burn destroys units held by the holder. Rejects if the balance is short.
func (b *AssetBook) Burn(from domain.Account, id domain.AssetID, amount int64) error {
	return b.BurnBatch(from, []domain.AssetID{id}, []int64{amount})
}

// BurnBatch destroys every line item, or nothing.
func (b *AssetBook) BurnBatch(from domain.Account, ids []domain.AssetID, amounts []int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(ids) != len(amounts) {
		return ErrLengthMismatch
	}
	row := b.row(from)
	staged := make([]int64, b.n)
	for i, id := range ids {
		if err := b.checkItem(id, amounts[i]); err != nil {
			return err
		}
		staged[id] = safe.SafeAdd(staged[id], amounts[i])
		if staged[id] > row[id] {
			return ErrInsufficientBalance
		}
	}
	for i, id := range ids {
		row[id] = safe.SafeSub(row[id], amounts[i])
	}
	b.verifyRow(from, row)
	return nil
}

// URI returns the metadata pointer for the asset, empty if unset.
func (b *AssetBook) URI(id domain.AssetID) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !id.InRange(b.n) {
		return ""
	}
	return b.uris[id]
}

// Snapshot returns a copy of all balance rows (for state dump).
func (b *AssetBook) Snapshot() map[domain.Account][]int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[domain.Account][]int64, len(b.balances))
	for holder, row := range b.balances {
		out[holder] = append([]int64(nil), row...)
	}
	return out
}

// verifyRow halts on a negative balance. Checks run after every mutation;
// a violation means the process state is already corrupt.
func (b *AssetBook) verifyRow(holder domain.Account, row []int64) {
	for id, bal := range row {
		if bal < 0 {
			panic(fmt.Sprintf("LEDGER_INVARIANT_NEGATIVE_BALANCE: holder=%s id=%d balance=%d",
				holder, id, bal))
		}
	}
}
