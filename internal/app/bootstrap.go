package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shop_go/internal/api"
	"shop_go/internal/domain"
	"shop_go/internal/engine"
	"shop_go/internal/infra"
	"shop_go/internal/infra/hook"
	"shop_go/internal/infra/storage"
	"shop_go/internal/ledger"
	"shop_go/internal/service"
)

const genesisFingerprintKey = "genesis_fingerprint"

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config   *infra.Config
	Storage  *storage.Storage
	Assets   *ledger.AssetBook
	Bank     *ledger.NativeBook
	Shop     *engine.Shop
	Journal  *engine.Journal
	Quotes   *service.QuoteService
	Hub      *api.Hub
	Notifier *hook.Notifier
	Artwork  *infra.ArtworkCache
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, DB, books, engine).
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping Shop Go...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.DB.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Balance books
	assets, err := ledger.NewAssetBook(cfg.AssetCount(), cfg.URIs())
	if err != nil {
		return err
	}
	b.Assets = assets
	b.Bank = ledger.NewNativeBook()

	if err := b.seedGenesis(); err != nil {
		return err
	}

	// 5. Journal: resume the sequence past anything already persisted.
	lastSeq, err := store.LastSeq()
	if err != nil {
		return err
	}
	sinks := []engine.Sink{}
	b.Hub = api.NewHub()
	sinks = append(sinks, b.Hub.Sink())
	if cfg.Webhook.URL != "" {
		b.Notifier = hook.NewNotifier(cfg.Webhook.URL, time.Duration(cfg.Webhook.TimeoutSec)*time.Second)
		sinks = append(sinks, b.Notifier.Sink())
	}
	b.Journal = engine.NewJournal(1024, lastSeq+1, store, sinks...)

	// 6. Engine
	shop, err := engine.NewShop(engine.Config{
		Owner:      domain.Account(cfg.Shop.Owner),
		Account:    domain.Account(cfg.Shop.Account),
		PricesBuy:  cfg.PricesBuy(),
		PricesSell: cfg.PricesSell(),
		StartSeq:   lastSeq + 1,
	}, assets, b.Bank, b.Journal.Inbox())
	if err != nil {
		return err
	}
	b.Shop = shop
	slog.Info("✅ Engine initialized",
		slog.Int("assets", cfg.AssetCount()),
		slog.Uint64("start_seq", lastSeq+1),
	)

	// 7. Read-side quote service
	b.Quotes = service.NewQuoteService(shop, cfg.Quotes.UnitDivisor, cfg.ReferenceRate.Currency)

	// 8. Artwork cache
	artwork, err := infra.NewArtworkCache()
	if err != nil {
		return err
	}
	b.Artwork = artwork
	slog.Info("✅ Artwork cache ready")

	return nil
}

// seedGenesis mints the configured initial inventory into the shop's account
// and records the construction fingerprint. The books are in-memory, so the
// seed runs on every start; the fingerprint makes a changed genesis visible.
func (b *Bootstrap) seedGenesis() error {
	cfg := b.Config

	var ids []domain.AssetID
	var amounts []int64
	for _, a := range cfg.Assets.Items {
		if a.InitialInventory > 0 {
			ids = append(ids, domain.AssetID(a.ID))
			amounts = append(amounts, a.InitialInventory)
		}
	}
	if len(ids) > 0 {
		if err := b.Assets.MintBatch(domain.Account(cfg.Shop.Account), ids, amounts); err != nil {
			return fmt.Errorf("genesis seed failed: %w", err)
		}
	}

	fingerprint := cfg.Fingerprint()
	stored, err := b.Storage.GetConfig(genesisFingerprintKey)
	if err != nil {
		return err
	}
	if stored == "" {
		if err := b.Storage.SaveConfig(genesisFingerprintKey, fingerprint); err != nil {
			return err
		}
	} else if stored != fingerprint {
		slog.Warn("Genesis configuration changed since the journal was created",
			slog.String("stored", stored),
			slog.String("current", fingerprint),
		)
	}
	slog.Info("✅ Genesis inventory seeded", slog.Int("assets", len(ids)))
	return nil
}

// SyncAssets synchronizes asset metadata rows and artwork in the background.
func (b *Bootstrap) SyncAssets(ctx context.Context) {
	slog.Info("🔄 Starting asset metadata synchronization...")

	uris := b.Config.URIs()

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, item := range b.Config.Assets.Items {
		wg.Add(1)
		go func(item infra.AssetConfig) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			uri := uris[item.ID]
			info := &domain.AssetInfo{
				ID:        item.ID,
				Name:      item.Name,
				URI:       uri,
				IsActive:  true,
				UpdatedAt: time.Now(),
			}

			// Preserve the artwork path of an existing row
			if existing, _ := b.Storage.GetAsset(item.ID); existing != nil {
				info.ArtworkPath = existing.ArtworkPath
				info.LastSyncedAt = existing.LastSyncedAt
			}

			if err := b.Storage.UpsertAsset(info); err != nil {
				slog.Error("Failed to upsert asset", slog.Int("id", item.ID), slog.Any("error", err))
			}

			// Fetch artwork (if missing)
			path, err := b.Artwork.Fetch(item.ID, uri)
			if err != nil {
				slog.Warn("Failed to fetch artwork", slog.Int("id", item.ID), slog.Any("error", err))
			} else if path != "" {
				info.ArtworkPath = path
				info.LastSyncedAt = time.Now()
				b.Storage.UpsertAsset(info)
			}
		}(item)
	}

	wg.Wait()

	// Refresh the quote view with whatever metadata landed.
	if assets, err := b.Storage.GetAllAssets(); err == nil {
		b.Quotes.SetAssets(assets)
	}
	slog.Info("✨ Asset metadata synchronization completed")
}
