package engine

import (
	"errors"

	"shop_go/internal/domain"
	"shop_go/internal/event"
	"shop_go/internal/ledger"
)

// Mint creates `amount` units of asset `id` in the shop's own inventory.
// Owner only.
func (s *Shop) Mint(caller domain.Account, id domain.AssetID, amount int64) error {
	const op = "mint"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwner(op, caller); err != nil {
		return err
	}
	if err := s.checkItem(op, id, amount); err != nil {
		return err
	}
	if err := s.assets.Mint(s.account, id, amount); err != nil {
		return domain.Reject(op, err)
	}
	s.emit(&event.MintEvent{BaseEvent: s.stamp(), ID: id, Amount: amount})
	return nil
}

// MintBatch creates every line item in the shop's inventory, or nothing.
func (s *Shop) MintBatch(caller domain.Account, ids []domain.AssetID, amounts []int64) error {
	const op = "mintBatch"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwner(op, caller); err != nil {
		return err
	}
	if len(ids) != len(amounts) {
		return domain.Reject(op, domain.ErrLengthMismatch)
	}
	for i, id := range ids {
		if err := s.checkItem(op, id, amounts[i]); err != nil {
			return err
		}
	}

	idsCopy := append([]domain.AssetID(nil), ids...)
	amountsCopy := append([]int64(nil), amounts...)
	if err := s.assets.MintBatch(s.account, idsCopy, amountsCopy); err != nil {
		return domain.Reject(op, err)
	}
	s.emit(&event.MintBatchEvent{BaseEvent: s.stamp(), IDs: idsCopy, Amounts: amountsCopy})
	return nil
}

// Burn destroys `amount` units of asset `id` from the shop's own inventory.
// Owner only. The asset book itself rejects destruction beyond the held
// balance; that refusal surfaces unchanged.
func (s *Shop) Burn(caller domain.Account, id domain.AssetID, amount int64) error {
	const op = "burn"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwner(op, caller); err != nil {
		return err
	}
	if err := s.checkItem(op, id, amount); err != nil {
		return err
	}
	if err := s.assets.Burn(s.account, id, amount); err != nil {
		return domain.Reject(op, err)
	}
	s.emit(&event.BurnEvent{BaseEvent: s.stamp(), ID: id, Amount: amount})
	return nil
}

// BurnBatch destroys every line item from the shop's inventory, or nothing.
func (s *Shop) BurnBatch(caller domain.Account, ids []domain.AssetID, amounts []int64) error {
	const op = "burnBatch"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwner(op, caller); err != nil {
		return err
	}
	if len(ids) != len(amounts) {
		return domain.Reject(op, domain.ErrLengthMismatch)
	}
	for i, id := range ids {
		if err := s.checkItem(op, id, amounts[i]); err != nil {
			return err
		}
	}

	idsCopy := append([]domain.AssetID(nil), ids...)
	amountsCopy := append([]int64(nil), amounts...)
	if err := s.assets.BurnBatch(s.account, idsCopy, amountsCopy); err != nil {
		return domain.Reject(op, err)
	}
	s.emit(&event.BurnBatchEvent{BaseEvent: s.stamp(), IDs: idsCopy, Amounts: amountsCopy})
	return nil
}

// IsLedgerShortfall reports whether an inventory-admin rejection came from
// the asset book refusing an over-burn.
func IsLedgerShortfall(err error) bool {
	return errors.Is(err, ledger.ErrInsufficientBalance)
}
