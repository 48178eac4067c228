package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"shop_go/internal/domain"
	"shop_go/internal/event"
)

func setupTestDB(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return store
}

func TestEventJournal(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	t.Run("empty journal", func(t *testing.T) {
		last, err := store.LastSeq()
		if err != nil {
			t.Fatalf("LastSeq: %v", err)
		}
		if last != 0 {
			t.Fatalf("LastSeq = %d, want 0", last)
		}
	})

	t.Run("append and list", func(t *testing.T) {
		events := []event.Event{
			&event.BuyEvent{BaseEvent: event.BaseEvent{Seq: 1, Ts: 100}, Buyer: "alice", ID: 0, Amount: 5, Price: 100},
			&event.PriceBuyEvent{BaseEvent: event.BaseEvent{Seq: 2, Ts: 101}, ID: 0, OldPrice: 100, NewPrice: 120},
			&event.MintEvent{BaseEvent: event.BaseEvent{Seq: 3, Ts: 102}, ID: 1, Amount: 50},
		}
		for _, ev := range events {
			if err := store.SaveEvent(ctx, ev); err != nil {
				t.Fatalf("SaveEvent seq=%d: %v", ev.GetSeq(), err)
			}
		}

		recs, err := store.ListEvents(0, 0)
		if err != nil {
			t.Fatalf("ListEvents: %v", err)
		}
		if len(recs) != 3 {
			t.Fatalf("got %d records, want 3", len(recs))
		}
		if recs[0].Type != event.TypeBuy || recs[1].Type != event.TypePriceBuy || recs[2].Type != event.TypeMint {
			t.Fatalf("types = %s,%s,%s", recs[0].Type, recs[1].Type, recs[2].Type)
		}
		if recs[0].EntryID == "" {
			t.Fatal("entry id not assigned")
		}

		last, err := store.LastSeq()
		if err != nil {
			t.Fatalf("LastSeq: %v", err)
		}
		if last != 3 {
			t.Fatalf("LastSeq = %d, want 3", last)
		}
	})

	t.Run("cursor pagination", func(t *testing.T) {
		recs, err := store.ListEvents(1, 1)
		if err != nil {
			t.Fatalf("ListEvents: %v", err)
		}
		if len(recs) != 1 || recs[0].Seq != 2 {
			t.Fatalf("recs = %+v", recs)
		}
	})

	t.Run("duplicate sequence rejected", func(t *testing.T) {
		ev := &event.MintEvent{BaseEvent: event.BaseEvent{Seq: 3, Ts: 103}, ID: 0, Amount: 1}
		if err := store.SaveEvent(ctx, ev); err == nil {
			t.Fatal("expected duplicate seq to fail")
		}
	})
}

func TestAssetMetadata(t *testing.T) {
	store := setupTestDB(t)

	t.Run("missing asset", func(t *testing.T) {
		asset, err := store.GetAsset(0)
		if err != nil {
			t.Fatalf("GetAsset: %v", err)
		}
		if asset != nil {
			t.Fatal("expected nil for missing asset")
		}
	})

	t.Run("upsert and read back", func(t *testing.T) {
		info := &domain.AssetInfo{
			ID:        0,
			Name:      "Copper",
			URI:       "https://cdn.example/0.json",
			IsActive:  true,
			UpdatedAt: time.Now(),
		}
		if err := store.UpsertAsset(info); err != nil {
			t.Fatalf("UpsertAsset: %v", err)
		}

		info.Name = "Copper Token"
		if err := store.UpsertAsset(info); err != nil {
			t.Fatalf("UpsertAsset update: %v", err)
		}

		got, err := store.GetAsset(0)
		if err != nil {
			t.Fatalf("GetAsset: %v", err)
		}
		if got == nil || got.Name != "Copper Token" {
			t.Fatalf("got = %+v", got)
		}
	})

	t.Run("list all", func(t *testing.T) {
		store.UpsertAsset(&domain.AssetInfo{ID: 1, Name: "Bronze"})
		assets, err := store.GetAllAssets()
		if err != nil {
			t.Fatalf("GetAllAssets: %v", err)
		}
		if len(assets) != 2 || assets[0].ID != 0 || assets[1].ID != 1 {
			t.Fatalf("assets = %+v", assets)
		}
	})
}

func TestConfigKV(t *testing.T) {
	store := setupTestDB(t)

	if v, err := store.GetConfig("missing"); err != nil || v != "" {
		t.Fatalf("GetConfig(missing) = %q, %v", v, err)
	}

	if err := store.SaveConfig("genesis_fingerprint", "abc"); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if err := store.SaveConfig("genesis_fingerprint", "def"); err != nil {
		t.Fatalf("SaveConfig overwrite: %v", err)
	}

	v, err := store.GetConfig("genesis_fingerprint")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if v != "def" {
		t.Fatalf("value = %q, want def", v)
	}

	m, err := store.LoadConfigMap()
	if err != nil {
		t.Fatalf("LoadConfigMap: %v", err)
	}
	if m["genesis_fingerprint"] != "def" {
		t.Fatalf("map = %v", m)
	}
}
