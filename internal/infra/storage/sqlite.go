package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"shop_go/internal/domain"
	"shop_go/internal/event"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists the event journal, asset metadata and service KV state.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance. An empty path resolves
// to the default location under the user config dir.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		resolved, err := getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
		dbPath = resolved
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.AssetInfo{}, &domain.EventRecord{}, &domain.AppConfig{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "ShopGo", "data", "shop.db"), nil
}

// ======================================================================================
// Event Journal
// ======================================================================================

// SaveEvent appends one domain event to the journal. Seq is the primary key,
// so replaying the same sequence number fails instead of silently forking
// the stream.
func (s *Storage) SaveEvent(ctx context.Context, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}
	rec := domain.EventRecord{
		Seq:     ev.GetSeq(),
		EntryID: uuid.NewString(),
		Type:    ev.GetType(),
		Ts:      ev.GetTs(),
		Payload: string(payload),
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

// ListEvents returns up to limit journal entries with Seq > afterSeq, in
// sequence order. limit <= 0 means no limit.
func (s *Storage) ListEvents(afterSeq uint64, limit int) ([]domain.EventRecord, error) {
	q := s.db.Where("seq > ?", afterSeq).Order("seq asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []domain.EventRecord
	err := q.Find(&recs).Error
	return recs, err
}

// LastSeq returns the highest journaled sequence number, zero when empty.
func (s *Storage) LastSeq() (uint64, error) {
	var rec domain.EventRecord
	err := s.db.Order("seq desc").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Seq, nil
}

// ======================================================================================
// Asset Metadata
// ======================================================================================

// UpsertAsset creates or updates asset metadata
func (s *Storage) UpsertAsset(asset *domain.AssetInfo) error {
	return s.db.Save(asset).Error
}

// GetAsset retrieves asset metadata by id
func (s *Storage) GetAsset(id int) (*domain.AssetInfo, error) {
	var asset domain.AssetInfo
	err := s.db.First(&asset, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &asset, err
}

// GetAllAssets retrieves all asset metadata rows
func (s *Storage) GetAllAssets() ([]domain.AssetInfo, error) {
	var assets []domain.AssetInfo
	err := s.db.Order("id asc").Find(&assets).Error
	return assets, err
}

// ======================================================================================
// Config Operations
// ======================================================================================

// SaveConfig saves a service configuration value
func (s *Storage) SaveConfig(key, value string) error {
	config := domain.AppConfig{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&config).Error
}

// GetConfig loads one configuration value, empty when absent.
func (s *Storage) GetConfig(key string) (string, error) {
	var config domain.AppConfig
	err := s.db.First(&config, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return config.Value, err
}

// LoadConfigMap loads all service configuration values as a map
func (s *Storage) LoadConfigMap() (map[string]string, error) {
	var configs []domain.AppConfig
	if err := s.db.Find(&configs).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, cfg := range configs {
		result[cfg.Key] = cfg.Value
	}
	return result, nil
}
