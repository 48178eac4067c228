package domain

import (
	"time"
)

// AssetInfo represents persisted metadata for one asset class
type AssetInfo struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	Name         string    `json:"name"`
	URI          string    `json:"uri"` // metadata pointer, e.g. <base>/<id>.json
	ArtworkPath  string    `json:"artwork_path"`
	IsActive     bool      `json:"is_active" gorm:"index"`
	LastSyncedAt time.Time `json:"last_synced_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EventRecord is one journaled domain event. Seq is the total order; Payload
// holds the event body as JSON.
type EventRecord struct {
	Seq       uint64    `gorm:"primaryKey" json:"seq"`
	EntryID   string    `gorm:"index" json:"entry_id"` // uuid assigned at journaling time
	Type      string    `gorm:"index" json:"type"`
	Ts        int64     `json:"ts"` // operation timestamp, unix seconds
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// AppConfig represents service-level persisted state (Key-Value),
// e.g. the genesis seed marker.
type AppConfig struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
