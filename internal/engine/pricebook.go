package engine

import (
	"shop_go/internal/domain"
	"shop_go/internal/event"
)

// GetPricesBuy returns a copy of the current buy-price table, callable by
// anyone.
func (s *Shop) GetPricesBuy() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.pricesBuy...)
}

// GetPricesSell returns a copy of the current sell-price table.
func (s *Shop) GetPricesSell() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.pricesSell...)
}

// SetPriceBuy replaces the buy price for one asset. Owner only. A zero price
// is permitted.
func (s *Shop) SetPriceBuy(caller domain.Account, id domain.AssetID, price int64) error {
	const op = "setPriceBuy"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwner(op, caller); err != nil {
		return err
	}
	if !id.InRange(s.n) {
		return domain.Reject(op, domain.ErrAssetOutOfRange)
	}

	old := s.pricesBuy[id]
	s.pricesBuy[id] = price
	s.emit(&event.PriceBuyEvent{
		BaseEvent: s.stamp(),
		ID:        id,
		OldPrice:  old,
		NewPrice:  price,
	})
	return nil
}

// SetPriceSell replaces the sell price for one asset. Owner only.
func (s *Shop) SetPriceSell(caller domain.Account, id domain.AssetID, price int64) error {
	const op = "setPriceSell"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOwner(op, caller); err != nil {
		return err
	}
	if !id.InRange(s.n) {
		return domain.Reject(op, domain.ErrAssetOutOfRange)
	}

	old := s.pricesSell[id]
	s.pricesSell[id] = price
	s.emit(&event.PriceSellEvent{
		BaseEvent: s.stamp(),
		ID:        id,
		OldPrice:  old,
		NewPrice:  price,
	})
	return nil
}
