package service

import (
	"sync"

	"shop_go/internal/domain"
	"shop_go/internal/engine"

	"github.com/shopspring/decimal"
)

// Quote is the read-side view of one asset's pricing. All decimal values are
// in display units (raw integer price divided by the configured unit
// divisor). Fiat fields are nil until a reference rate is known.
type Quote struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	URI       string           `json:"uri"`
	Buy       decimal.Decimal  `json:"buy"`
	Sell      decimal.Decimal  `json:"sell"`
	Spread    decimal.Decimal  `json:"spread"`
	SpreadPct *decimal.Decimal `json:"spread_pct,omitempty"`
	FiatBuy   *decimal.Decimal `json:"fiat_buy,omitempty"`
	FiatSell  *decimal.Decimal `json:"fiat_sell,omitempty"`
}

// QuoteService builds display quotes over the engine's price tables.
// It never mutates shop state.
type QuoteService struct {
	mu           sync.RWMutex
	shop         *engine.Shop
	unitDivisor  decimal.Decimal
	fiatCurrency string
	rate         decimal.Decimal
	names        []string
	uris         []string
}

// NewQuoteService creates a quote service over the engine.
func NewQuoteService(shop *engine.Shop, unitDivisor decimal.Decimal, fiatCurrency string) *QuoteService {
	if unitDivisor.IsZero() {
		unitDivisor = decimal.NewFromInt(1)
	}
	return &QuoteService{
		shop:         shop,
		unitDivisor:  unitDivisor,
		fiatCurrency: fiatCurrency,
		rate:         decimal.Zero,
		names:        make([]string, shop.AssetCount()),
		uris:         make([]string, shop.AssetCount()),
	}
}

// SetAssets installs display metadata for the quotes.
func (s *QuoteService) SetAssets(assets []domain.AssetInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range assets {
		if a.ID >= 0 && a.ID < len(s.names) {
			s.names[a.ID] = a.Name
			s.uris[a.ID] = a.URI
		}
	}
}

// UpdateRate updates the fiat reference rate.
func (s *QuoteService) UpdateRate(rate decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = rate
}

// GetRate returns the current reference rate, zero when unknown.
func (s *QuoteService) GetRate() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// FiatCurrency returns the configured display currency code.
func (s *QuoteService) FiatCurrency() string {
	return s.fiatCurrency
}

// GetQuotes returns one quote per asset, in id order, computed from the
// engine's live tables.
func (s *QuoteService) GetQuotes() []Quote {
	pricesBuy := s.shop.GetPricesBuy()
	pricesSell := s.shop.GetPricesSell()

	s.mu.RLock()
	defer s.mu.RUnlock()

	quotes := make([]Quote, len(pricesBuy))
	for i := range pricesBuy {
		buy := decimal.NewFromInt(pricesBuy[i]).Div(s.unitDivisor)
		sell := decimal.NewFromInt(pricesSell[i]).Div(s.unitDivisor)

		q := Quote{
			ID:     i,
			Name:   s.names[i],
			URI:    s.uris[i],
			Buy:    buy,
			Sell:   sell,
			Spread: buy.Sub(sell),
		}
		if !sell.IsZero() {
			pct := buy.Sub(sell).Div(sell).Mul(decimal.NewFromInt(100))
			q.SpreadPct = &pct
		}
		if s.rate.IsPositive() {
			fiatBuy := buy.Mul(s.rate)
			fiatSell := sell.Mul(s.rate)
			q.FiatBuy = &fiatBuy
			q.FiatSell = &fiatSell
		}
		quotes[i] = q
	}
	return quotes
}
