package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shop_go/internal/domain"
	"shop_go/internal/engine"
	"shop_go/internal/infra"
	"shop_go/internal/infra/storage"
	"shop_go/internal/service"
)

// accountHeader identifies the calling principal. There is no signature
// scheme here; deployments front this service with their own authentication.
const accountHeader = "X-Account"

// Server is the HTTP/WS surface over the shop engine.
type Server struct {
	shop   *engine.Shop
	quotes *service.QuoteService
	store  *storage.Storage
	assets domain.AssetLedger
	bank   domain.NativeLedger
	hub    *Hub
}

// NewServer wires the handlers. store may be nil (no replay endpoint data).
func NewServer(shop *engine.Shop, quotes *service.QuoteService, store *storage.Storage, assets domain.AssetLedger, bank domain.NativeLedger, hub *Hub) *Server {
	return &Server{
		shop:   shop,
		quotes: quotes,
		store:  store,
		assets: assets,
		bank:   bank,
		hub:    hub,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/prices/buy", s.handlePricesBuy)
		r.Get("/prices/sell", s.handlePricesSell)
		r.Get("/quotes", s.handleQuotes)
		r.Get("/assets", s.handleAssets)
		r.Get("/assets/{id}", s.handleAsset)
		r.Get("/accounts/{account}/balances", s.handleBalances)
		r.Get("/events", s.handleEvents)
		r.Get("/stats", s.handleStats)
		if s.hub != nil {
			r.Get("/events/ws", s.hub.ServeHTTP)
		}

		r.Post("/buy", s.handleBuy)
		r.Post("/buy-batch", s.handleBuyBatch)
		r.Post("/sell", s.handleSell)
		r.Post("/sell-batch", s.handleSellBatch)
		r.Post("/approvals", s.handleApproval)
		r.Post("/deposits", s.handleDeposit)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/treasury", s.handleTreasury)
			r.Post("/withdraw", s.handleWithdraw)
			r.Post("/prices/buy/{id}", s.handleSetPriceBuy)
			r.Post("/prices/sell/{id}", s.handleSetPriceSell)
			r.Post("/mint", s.handleMint)
			r.Post("/mint-batch", s.handleMintBatch)
			r.Post("/burn", s.handleBurn)
			r.Post("/burn-batch", s.handleBurnBatch)
		})
	})

	return r
}

// ======================================================================================
// Helpers
// ======================================================================================

func caller(r *http.Request) domain.Account {
	return domain.Account(r.Header.Get(accountHeader))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the rejection taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrAssetOutOfRange),
		errors.Is(err, domain.ErrZeroAmount),
		errors.Is(err, domain.ErrLengthMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientPayment):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInsufficientInventory),
		errors.Is(err, domain.ErrInsufficientSellerBalance),
		errors.Is(err, domain.ErrApprovalRequired),
		errors.Is(err, domain.ErrInsufficientShopFunds),
		errors.Is(err, domain.ErrTransferFailed):
		status = http.StatusConflict
	case engine.IsLedgerShortfall(err):
		status = http.StatusConflict
	}
	infra.GlobalMetrics.RecordRejection()
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

func assetIDParam(w http.ResponseWriter, r *http.Request) (domain.AssetID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed asset id"})
		return 0, false
	}
	return domain.AssetID(id), true
}

// ======================================================================================
// Read handlers
// ======================================================================================

func (s *Server) handlePricesBuy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"prices": s.shop.GetPricesBuy()})
}

func (s *Server) handlePricesSell(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"prices": s.shop.GetPricesSell()})
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"quotes": s.quotes.GetQuotes()}
	if cur := s.quotes.FiatCurrency(); cur != "" && s.quotes.GetRate().IsPositive() {
		resp["fiat_currency"] = cur
		resp["rate"] = s.quotes.GetRate()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"assets": []any{}})
		return
	}
	assets, err := s.store.GetAllAssets()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load assets"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := assetIDParam(w, r)
	if !ok {
		return
	}
	if !id.InRange(s.shop.AssetCount()) {
		writeError(w, domain.Reject("getAsset", domain.ErrAssetOutOfRange))
		return
	}
	resp := map[string]any{
		"id":  id,
		"uri": s.assets.URI(id),
	}
	if s.store != nil {
		if info, err := s.store.GetAsset(int(id)); err == nil && info != nil {
			resp["name"] = info.Name
			resp["artwork_path"] = info.ArtworkPath
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	account := domain.Account(chi.URLParam(r, "account"))
	n := s.shop.AssetCount()
	holders := make([]domain.Account, n)
	ids := make([]domain.AssetID, n)
	for i := 0; i < n; i++ {
		holders[i] = account
		ids[i] = domain.AssetID(i)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account": account,
		"assets":  s.assets.BalanceOfBatch(holders, ids),
		"native":  s.bank.BalanceOf(account),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"events": []any{}})
		return
	}
	var after uint64
	if raw := r.URL.Query().Get("after"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed after cursor"})
			return
		}
		after = parsed
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 1000 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed limit"})
			return
		}
		limit = parsed
	}
	events, err := s.store.ListEvents(after, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load events"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infra.GlobalMetrics.Snapshot())
}

// ======================================================================================
// Trade handlers
// ======================================================================================

type buyRequest struct {
	ID      domain.AssetID `json:"id"`
	Amount  int64          `json:"amount"`
	Payment int64          `json:"payment"`
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.shop.Buy(caller(r), req.ID, req.Amount, req.Payment); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordCommit()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type buyBatchRequest struct {
	IDs     []domain.AssetID `json:"ids"`
	Amounts []int64          `json:"amounts"`
	Payment int64            `json:"payment"`
}

func (s *Server) handleBuyBatch(w http.ResponseWriter, r *http.Request) {
	var req buyBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.shop.BuyBatch(caller(r), req.IDs, req.Amounts, req.Payment); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordCommit()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type sellRequest struct {
	ID     domain.AssetID `json:"id"`
	Amount int64          `json:"amount"`
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.shop.Sell(caller(r), req.ID, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordCommit()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type sellBatchRequest struct {
	IDs     []domain.AssetID `json:"ids"`
	Amounts []int64          `json:"amounts"`
}

func (s *Server) handleSellBatch(w http.ResponseWriter, r *http.Request) {
	var req sellBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.shop.SellBatch(caller(r), req.IDs, req.Amounts); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordCommit()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type approvalRequest struct {
	Operator domain.Account `json:"operator"`
	Approved bool           `json:"approved"`
}

func (s *Server) handleApproval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	from := caller(r)
	if from == "" || req.Operator == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "account and operator required"})
		return
	}
	s.assets.SetApprovalForAll(from, req.Operator, req.Approved)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account := caller(r)
	if account == "" || req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "account and positive amount required"})
		return
	}
	s.bank.Deposit(account, req.Amount)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"balance": s.bank.BalanceOf(account),
	})
}

// ======================================================================================
// Admin handlers
// ======================================================================================

func (s *Server) handleTreasury(w http.ResponseWriter, r *http.Request) {
	balance, err := s.shop.TreasuryBalance(caller(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balance": balance})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	withdrawn, err := s.shop.WithdrawAll(caller(r))
	if err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordCommit()
	writeJSON(w, http.StatusOK, map[string]any{"withdrawn": withdrawn})
}

type setPriceRequest struct {
	Price int64 `json:"price"`
}

func (s *Server) handleSetPriceBuy(w http.ResponseWriter, r *http.Request) {
	id, ok := assetIDParam(w, r)
	if !ok {
		return
	}
	var req setPriceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.shop.SetPriceBuy(caller(r), id, req.Price); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordCommit()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleSetPriceSell(w http.ResponseWriter, r *http.Request) {
	id, ok := assetIDParam(w, r)
	if !ok {
		return
	}
	var req setPriceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.shop.SetPriceSell(caller(r), id, req.Price); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordCommit()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type mintRequest struct {
	ID     domain.AssetID `json:"id"`
	Amount int64          `json:"amount"`
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.shop.Mint(caller(r), req.ID, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordCommit()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type mintBatchRequest struct {
	IDs     []domain.AssetID `json:"ids"`
	Amounts []int64          `json:"amounts"`
}

func (s *Server) handleMintBatch(w http.ResponseWriter, r *http.Request) {
	var req mintBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.shop.MintBatch(caller(r), req.IDs, req.Amounts); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordCommit()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.shop.Burn(caller(r), req.ID, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordCommit()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleBurnBatch(w http.ResponseWriter, r *http.Request) {
	var req mintBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.shop.BurnBatch(caller(r), req.IDs, req.Amounts); err != nil {
		writeError(w, err)
		return
	}
	infra.GlobalMetrics.RecordCommit()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
