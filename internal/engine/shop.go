package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"shop_go/internal/domain"
	"shop_go/internal/event"
	"shop_go/internal/ledger"
	"shop_go/pkg/safe"
)

// Shop is the transaction engine: price book, inventory admin, treasury and
// the owner gate, settling against the injected asset and currency books.
//
// Every public operation runs under one mutex spanning validate, commit and
// emit, so operations observe a single total order. Validation happens
// strictly before any mutation; a rejected call has zero observable effect.
type Shop struct {
	mu sync.Mutex

	owner   domain.Account
	account domain.Account // the shop's own holder identity in both books

	n          int
	pricesBuy  []int64
	pricesSell []int64

	assets domain.AssetLedger
	bank   domain.NativeLedger

	inbox   chan<- event.Event
	nextSeq uint64
	nowFn   func() int64
}

// Config carries the construction-time shop parameters.
type Config struct {
	Owner      domain.Account
	Account    domain.Account
	PricesBuy  []int64
	PricesSell []int64
	// StartSeq is the first sequence number to assign. Bootstrapping sets it
	// past the last persisted journal entry so the stream stays append-only
	// across restarts. Zero means 1.
	StartSeq uint64
}

// NewShop builds an engine over the given books. The price tables fix the
// asset count N; both must have the same length.
func NewShop(cfg Config, assets domain.AssetLedger, bank domain.NativeLedger, inbox chan<- event.Event) (*Shop, error) {
	if cfg.Owner == "" {
		return nil, fmt.Errorf("engine: owner account required")
	}
	if cfg.Account == "" {
		return nil, fmt.Errorf("engine: shop account required")
	}
	if len(cfg.PricesBuy) == 0 || len(cfg.PricesBuy) != len(cfg.PricesSell) {
		return nil, fmt.Errorf("engine: price tables must be non-empty and equal length, got %d/%d",
			len(cfg.PricesBuy), len(cfg.PricesSell))
	}
	if assets == nil || bank == nil {
		return nil, fmt.Errorf("engine: asset and native ledgers required")
	}
	startSeq := cfg.StartSeq
	if startSeq == 0 {
		startSeq = 1
	}
	return &Shop{
		owner:      cfg.Owner,
		account:    cfg.Account,
		n:          len(cfg.PricesBuy),
		pricesBuy:  append([]int64(nil), cfg.PricesBuy...),
		pricesSell: append([]int64(nil), cfg.PricesSell...),
		assets:     assets,
		bank:       bank,
		inbox:      inbox,
		nextSeq:    startSeq,
		nowFn:      func() int64 { return time.Now().Unix() },
	}, nil
}

// SetNowFunc overrides the time source, primarily used in tests.
func (s *Shop) SetNowFunc(now func() int64) {
	if now == nil {
		s.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	s.nowFn = now
}

// Owner returns the owner principal.
func (s *Shop) Owner() domain.Account { return s.owner }

// Account returns the shop's own holder identity.
func (s *Shop) Account() domain.Account { return s.account }

// AssetCount returns N, the fixed number of asset classes.
func (s *Shop) AssetCount() int { return s.n }

// requireOwner is the access-control gate used by every privileged operation.
func (s *Shop) requireOwner(op string, caller domain.Account) error {
	if caller != s.owner {
		return domain.Reject(op, domain.ErrAccessDenied)
	}
	return nil
}

// emit hands one committed event to the journal. Called with s.mu held, so
// sequence numbers leave in commit order.
func (s *Shop) emit(ev event.Event) {
	if s.inbox != nil {
		s.inbox <- ev
	}
}

func (s *Shop) stamp() event.BaseEvent {
	base := event.BaseEvent{Seq: s.nextSeq, Ts: s.nowFn()}
	s.nextSeq++
	return base
}

func (s *Shop) checkItem(op string, id domain.AssetID, amount int64) error {
	if !id.InRange(s.n) {
		return domain.Reject(op, domain.ErrAssetOutOfRange)
	}
	if amount <= 0 {
		return domain.Reject(op, domain.ErrZeroAmount)
	}
	return nil
}

// Buy sells `amount` of asset `id` from the shop's inventory to the caller
// for `payment` of native currency.
//
// The full offered payment is retained by the treasury; any excess above
// amount*price is not refunded.
func (s *Shop) Buy(caller domain.Account, id domain.AssetID, amount, payment int64) error {
	const op = "buy"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkItem(op, id, amount); err != nil {
		return err
	}
	// An amount so large the price overflows is an amount no payment covers.
	required, ok := safe.MulChecked(amount, s.pricesBuy[id])
	if !ok || payment < required {
		return domain.Reject(op, domain.ErrInsufficientPayment)
	}
	if s.assets.BalanceOf(s.account, id) < amount {
		return domain.Reject(op, domain.ErrInsufficientInventory)
	}
	if s.bank.BalanceOf(caller) < payment {
		return domain.Reject(op, domain.ErrTransferFailed)
	}

	s.commitBuy(op, caller, payment, []domain.AssetID{id}, []int64{amount})
	s.emit(&event.BuyEvent{
		BaseEvent: s.stamp(),
		Buyer:     caller,
		ID:        id,
		Amount:    amount,
		Price:     s.pricesBuy[id],
	})
	return nil
}

// BuyBatch is the all-or-nothing multi-line form of Buy. Every line item is
// validated (range, non-zero amount, inventory including repeats of the same
// id) before the aggregate payment check; nothing moves unless all pass.
func (s *Shop) BuyBatch(caller domain.Account, ids []domain.AssetID, amounts []int64, payment int64) error {
	const op = "buyBatch"
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) != len(amounts) {
		return domain.Reject(op, domain.ErrLengthMismatch)
	}
	staged := make(map[domain.AssetID]int64, len(ids))
	var required int64
	requiredOK := true
	for i, id := range ids {
		if err := s.checkItem(op, id, amounts[i]); err != nil {
			return err
		}
		sum, ok := safe.AddChecked(staged[id], amounts[i])
		if !ok || s.assets.BalanceOf(s.account, id) < sum {
			return domain.Reject(op, domain.ErrInsufficientInventory)
		}
		staged[id] = sum
		// An overflowing aggregate price is an aggregate no payment covers.
		// The rejection waits until after the per-item checks to keep their
		// precedence.
		if requiredOK {
			var line int64
			line, ok = safe.MulChecked(amounts[i], s.pricesBuy[id])
			if ok {
				required, ok = safe.AddChecked(required, line)
			}
			requiredOK = ok
		}
	}
	if !requiredOK || payment < required {
		return domain.Reject(op, domain.ErrInsufficientPayment)
	}
	if s.bank.BalanceOf(caller) < payment {
		return domain.Reject(op, domain.ErrTransferFailed)
	}

	idsCopy := append([]domain.AssetID(nil), ids...)
	amountsCopy := append([]int64(nil), amounts...)
	s.commitBuy(op, caller, payment, idsCopy, amountsCopy)

	prices := make([]int64, len(idsCopy))
	for i, id := range idsCopy {
		prices[i] = s.pricesBuy[id]
	}
	s.emit(&event.BuyBatchEvent{
		BaseEvent: s.stamp(),
		Buyer:     caller,
		IDs:       idsCopy,
		Amounts:   amountsCopy,
		Prices:    prices,
	})
	return nil
}

// commitBuy applies the two settlement legs of a validated purchase. The legs
// cannot fail after validation: the buyer's funds and the shop's inventory
// are only reduced under s.mu. A failure here means partial state, so halt.
func (s *Shop) commitBuy(op string, caller domain.Account, payment int64, ids []domain.AssetID, amounts []int64) {
	if err := s.bank.Transfer(caller, s.account, payment); err != nil {
		panic(fmt.Sprintf("PARTIAL_COMMIT_HALT: %s payment leg: %v", op, err))
	}
	if err := s.assets.TransferBatch(s.account, s.account, caller, ids, amounts); err != nil {
		panic(fmt.Sprintf("PARTIAL_COMMIT_HALT: %s asset leg: %v", op, err))
	}
}

// Sell buys `amount` of asset `id` back from the caller at the current sell
// price, paying out of the treasury. Requires the caller to have approved
// the shop as an operator beforehand.
func (s *Shop) Sell(caller domain.Account, id domain.AssetID, amount int64) error {
	const op = "sell"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkItem(op, id, amount); err != nil {
		return err
	}
	if s.assets.BalanceOf(caller, id) < amount {
		return domain.Reject(op, domain.ErrInsufficientSellerBalance)
	}
	if !s.assets.IsApprovedForAll(caller, s.account) {
		return domain.Reject(op, domain.ErrApprovalRequired)
	}
	// An overflowing payout is a payout no treasury covers.
	payout, ok := safe.MulChecked(amount, s.pricesSell[id])
	if !ok || s.bank.BalanceOf(s.account) < payout {
		return domain.Reject(op, domain.ErrInsufficientShopFunds)
	}

	if err := s.commitSell(op, caller, payout, []domain.AssetID{id}, []int64{amount}); err != nil {
		return err
	}
	s.emit(&event.SellEvent{
		BaseEvent: s.stamp(),
		Seller:    caller,
		ID:        id,
		Amount:    amount,
		Price:     s.pricesSell[id],
	})
	return nil
}

// SellBatch is the all-or-nothing multi-line form of Sell.
func (s *Shop) SellBatch(caller domain.Account, ids []domain.AssetID, amounts []int64) error {
	const op = "sellBatch"
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) != len(amounts) {
		return domain.Reject(op, domain.ErrLengthMismatch)
	}
	staged := make(map[domain.AssetID]int64, len(ids))
	var payout int64
	payoutOK := true
	for i, id := range ids {
		if err := s.checkItem(op, id, amounts[i]); err != nil {
			return err
		}
		sum, ok := safe.AddChecked(staged[id], amounts[i])
		if !ok || s.assets.BalanceOf(caller, id) < sum {
			return domain.Reject(op, domain.ErrInsufficientSellerBalance)
		}
		staged[id] = sum
		// Overflow rejection waits for the treasury check to keep precedence.
		if payoutOK {
			var line int64
			line, ok = safe.MulChecked(amounts[i], s.pricesSell[id])
			if ok {
				payout, ok = safe.AddChecked(payout, line)
			}
			payoutOK = ok
		}
	}
	if !s.assets.IsApprovedForAll(caller, s.account) {
		return domain.Reject(op, domain.ErrApprovalRequired)
	}
	if !payoutOK || s.bank.BalanceOf(s.account) < payout {
		return domain.Reject(op, domain.ErrInsufficientShopFunds)
	}

	idsCopy := append([]domain.AssetID(nil), ids...)
	amountsCopy := append([]int64(nil), amounts...)
	if err := s.commitSell(op, caller, payout, idsCopy, amountsCopy); err != nil {
		return err
	}

	prices := make([]int64, len(idsCopy))
	for i, id := range idsCopy {
		prices[i] = s.pricesSell[id]
	}
	s.emit(&event.SellBatchEvent{
		BaseEvent: s.stamp(),
		Seller:    caller,
		IDs:       idsCopy,
		Amounts:   amountsCopy,
		Prices:    prices,
	})
	return nil
}

// commitSell applies the two settlement legs of a validated buy-back. The
// asset leg runs first: the seller may revoke the shop's operator approval
// from outside the engine's critical section, and the ledger re-checks it, so
// a refusal here still leaves zero mutations. The payout leg cannot fail
// after that (the treasury is only debited under s.mu).
func (s *Shop) commitSell(op string, caller domain.Account, payout int64, ids []domain.AssetID, amounts []int64) error {
	if err := s.assets.TransferBatch(s.account, caller, s.account, ids, amounts); err != nil {
		return domain.Reject(op, mapLedgerRefusal(err))
	}
	if err := s.bank.Transfer(s.account, caller, payout); err != nil {
		panic(fmt.Sprintf("PARTIAL_COMMIT_HALT: %s payout leg: %v", op, err))
	}
	return nil
}

// mapLedgerRefusal translates an asset-book refusal into the shop taxonomy.
func mapLedgerRefusal(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotAuthorized):
		return domain.ErrApprovalRequired
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return domain.ErrInsufficientSellerBalance
	default:
		return domain.ErrTransferFailed
	}
}
