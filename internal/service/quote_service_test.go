package service

import (
	"testing"

	"shop_go/internal/domain"
	"shop_go/internal/engine"
	"shop_go/internal/ledger"

	"github.com/shopspring/decimal"
)

func newTestShop(t *testing.T) *engine.Shop {
	t.Helper()
	assets, err := ledger.NewAssetBook(2, nil)
	if err != nil {
		t.Fatalf("NewAssetBook: %v", err)
	}
	shop, err := engine.NewShop(engine.Config{
		Owner:      "owner",
		Account:    "shop",
		PricesBuy:  []int64{100, 0},
		PricesSell: []int64{90, 0},
	}, assets, ledger.NewNativeBook(), nil)
	if err != nil {
		t.Fatalf("NewShop: %v", err)
	}
	return shop
}

func TestGetQuotes(t *testing.T) {
	shop := newTestShop(t)
	svc := NewQuoteService(shop, decimal.NewFromInt(10), "KRW")
	svc.SetAssets([]domain.AssetInfo{
		{ID: 0, Name: "Copper", URI: "https://cdn.example/0.json"},
	})

	quotes := svc.GetQuotes()
	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes))
	}

	q := quotes[0]
	if q.Name != "Copper" || q.URI != "https://cdn.example/0.json" {
		t.Errorf("metadata = %q %q", q.Name, q.URI)
	}
	if !q.Buy.Equal(decimal.NewFromInt(10)) {
		t.Errorf("buy = %s, want 10", q.Buy)
	}
	if !q.Sell.Equal(decimal.NewFromInt(9)) {
		t.Errorf("sell = %s, want 9", q.Sell)
	}
	if !q.Spread.Equal(decimal.NewFromInt(1)) {
		t.Errorf("spread = %s, want 1", q.Spread)
	}
	if q.SpreadPct == nil {
		t.Fatal("spread pct missing")
	}
	// (10-9)/9 * 100
	want := decimal.NewFromInt(100).Div(decimal.NewFromInt(9))
	if !q.SpreadPct.Equal(want) {
		t.Errorf("spread pct = %s, want %s", q.SpreadPct, want)
	}
	if q.FiatBuy != nil {
		t.Error("fiat quote present without a reference rate")
	}

	// Zero sell price: no percentage.
	if quotes[1].SpreadPct != nil {
		t.Error("spread pct present for zero sell price")
	}
}

func TestGetQuotesWithRate(t *testing.T) {
	shop := newTestShop(t)
	svc := NewQuoteService(shop, decimal.NewFromInt(1), "KRW")
	svc.UpdateRate(decimal.NewFromInt(1300))

	q := svc.GetQuotes()[0]
	if q.FiatBuy == nil || q.FiatSell == nil {
		t.Fatal("fiat quotes missing with a known rate")
	}
	if !q.FiatBuy.Equal(decimal.NewFromInt(130000)) {
		t.Errorf("fiat buy = %s, want 130000", q.FiatBuy)
	}
	if !q.FiatSell.Equal(decimal.NewFromInt(117000)) {
		t.Errorf("fiat sell = %s, want 117000", q.FiatSell)
	}
	if svc.FiatCurrency() != "KRW" {
		t.Errorf("currency = %q", svc.FiatCurrency())
	}
}

func TestQuotesTrackPriceChanges(t *testing.T) {
	shop := newTestShop(t)
	svc := NewQuoteService(shop, decimal.NewFromInt(1), "")

	if err := shop.SetPriceBuy("owner", 0, 250); err != nil {
		t.Fatalf("SetPriceBuy: %v", err)
	}
	q := svc.GetQuotes()[0]
	if !q.Buy.Equal(decimal.NewFromInt(250)) {
		t.Errorf("buy = %s, want live 250", q.Buy)
	}
}
