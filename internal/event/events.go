package event

import "shop_go/internal/domain"

// Event type tags used for journaling and feed dispatch.
const (
	TypePriceBuy  = "PRICE_BUY"
	TypePriceSell = "PRICE_SELL"
	TypeBuy       = "BUY"
	TypeBuyBatch  = "BUY_BATCH"
	TypeSell      = "SELL"
	TypeSellBatch = "SELL_BATCH"
	TypeMint      = "MINT"
	TypeMintBatch = "MINT_BATCH"
	TypeBurn      = "BURN"
	TypeBurnBatch = "BURN_BATCH"
)

// Event is one entry of the shop's ordered, append-only domain stream.
// Seq is assigned by the engine inside the commit critical section, so inbox
// order equals commit order.
type Event interface {
	GetSeq() uint64
	GetTs() int64
	GetType() string
}

// BaseEvent carries the fields shared by every event.
type BaseEvent struct {
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"` // operation timestamp, unix seconds
}

func (b BaseEvent) GetSeq() uint64 { return b.Seq }
func (b BaseEvent) GetTs() int64   { return b.Ts }

// PriceBuyEvent records a buy-price change: old value immediately before the
// update, new value after.
type PriceBuyEvent struct {
	BaseEvent
	ID       domain.AssetID `json:"id"`
	OldPrice int64          `json:"old_price"`
	NewPrice int64          `json:"new_price"`
}

func (e *PriceBuyEvent) GetType() string { return TypePriceBuy }

// PriceSellEvent records a sell-price change.
type PriceSellEvent struct {
	BaseEvent
	ID       domain.AssetID `json:"id"`
	OldPrice int64          `json:"old_price"`
	NewPrice int64          `json:"new_price"`
}

func (e *PriceSellEvent) GetType() string { return TypePriceSell }

// BuyEvent records a settled purchase from the shop's inventory.
type BuyEvent struct {
	BaseEvent
	Buyer  domain.Account `json:"buyer"`
	ID     domain.AssetID `json:"id"`
	Amount int64          `json:"amount"`
	Price  int64          `json:"price"` // buy price at execution time
}

func (e *BuyEvent) GetType() string { return TypeBuy }

// BuyBatchEvent records an all-or-nothing multi-line purchase.
// Prices[i] is the buy price of IDs[i] at execution time.
type BuyBatchEvent struct {
	BaseEvent
	Buyer   domain.Account   `json:"buyer"`
	IDs     []domain.AssetID `json:"ids"`
	Amounts []int64          `json:"amounts"`
	Prices  []int64          `json:"prices"`
}

func (e *BuyBatchEvent) GetType() string { return TypeBuyBatch }

// SellEvent records a settled buy-back into the shop's inventory.
type SellEvent struct {
	BaseEvent
	Seller domain.Account `json:"seller"`
	ID     domain.AssetID `json:"id"`
	Amount int64          `json:"amount"`
	Price  int64          `json:"price"` // sell price at execution time
}

func (e *SellEvent) GetType() string { return TypeSell }

// SellBatchEvent records an all-or-nothing multi-line buy-back.
type SellBatchEvent struct {
	BaseEvent
	Seller  domain.Account   `json:"seller"`
	IDs     []domain.AssetID `json:"ids"`
	Amounts []int64          `json:"amounts"`
	Prices  []int64          `json:"prices"`
}

func (e *SellBatchEvent) GetType() string { return TypeSellBatch }

// MintEvent records inventory creation into the shop's own account.
type MintEvent struct {
	BaseEvent
	ID     domain.AssetID `json:"id"`
	Amount int64          `json:"amount"`
}

func (e *MintEvent) GetType() string { return TypeMint }

// MintBatchEvent records batched inventory creation.
type MintBatchEvent struct {
	BaseEvent
	IDs     []domain.AssetID `json:"ids"`
	Amounts []int64          `json:"amounts"`
}

func (e *MintBatchEvent) GetType() string { return TypeMintBatch }

// BurnEvent records inventory destruction from the shop's own account.
type BurnEvent struct {
	BaseEvent
	ID     domain.AssetID `json:"id"`
	Amount int64          `json:"amount"`
}

func (e *BurnEvent) GetType() string { return TypeBurn }

// BurnBatchEvent records batched inventory destruction.
type BurnBatchEvent struct {
	BaseEvent
	IDs     []domain.AssetID `json:"ids"`
	Amounts []int64          `json:"amounts"`
}

func (e *BurnBatchEvent) GetType() string { return TypeBurnBatch }
