package infra

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// AssetConfig describes one asset class seeded at construction.
type AssetConfig struct {
	ID               int    `yaml:"id"`
	Name             string `yaml:"name"`
	URI              string `yaml:"uri"` // optional; default <base_uri><id>.json
	InitialInventory int64  `yaml:"initial_inventory"`
	PriceBuy         int64  `yaml:"price_buy"`
	PriceSell        int64  `yaml:"price_sell"`
}

// Config holds the whole service configuration. Loaded from yaml, then
// sensitive or deployment-specific values are overridden from environment
// variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Shop struct {
		Owner   string `yaml:"owner"`
		Account string `yaml:"account"`
	} `yaml:"shop"`

	Assets struct {
		BaseURI string        `yaml:"base_uri"`
		Items   []AssetConfig `yaml:"items"`
	} `yaml:"assets"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	DB struct {
		Path string `yaml:"path"` // empty: default under the user config dir
	} `yaml:"db"`

	Webhook struct {
		URL        string `yaml:"url"` // empty: notifier disabled
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"webhook"`

	ReferenceRate struct {
		URL             string `yaml:"url"` // empty: fiat quoting disabled
		PollIntervalSec int    `yaml:"poll_interval_sec"`
		Currency        string `yaml:"currency"`
	} `yaml:"reference_rate"`

	Quotes struct {
		// UnitDivisor converts integer native amounts into display units,
		// e.g. 1000000000 for a gwei-like base unit.
		UnitDivisor decimal.Decimal `yaml:"unit_divisor"`
	} `yaml:"quotes"`

	Logging struct {
		Level      string `yaml:"level"`
		Dir        string `yaml:"dir"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Shop.Owner == "" {
		return fmt.Errorf("shop owner account is required")
	}
	if c.Shop.Account == "" {
		c.Shop.Account = "shop"
	}
	if c.Shop.Account == c.Shop.Owner {
		return fmt.Errorf("shop account must differ from the owner account")
	}
	if len(c.Assets.Items) == 0 {
		return fmt.Errorf("at least one asset is required")
	}
	for i, a := range c.Assets.Items {
		if a.ID != i {
			return fmt.Errorf("asset ids must be contiguous from 0, got %d at position %d", a.ID, i)
		}
		if a.InitialInventory < 0 {
			return fmt.Errorf("asset %d: initial inventory must be non-negative", a.ID)
		}
		if a.PriceBuy < 0 || a.PriceSell < 0 {
			return fmt.Errorf("asset %d: prices must be non-negative", a.ID)
		}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Webhook.TimeoutSec <= 0 {
		c.Webhook.TimeoutSec = 5
	}
	if c.ReferenceRate.PollIntervalSec <= 0 {
		c.ReferenceRate.PollIntervalSec = 60
	}
	if c.Quotes.UnitDivisor.IsZero() {
		c.Quotes.UnitDivisor = decimal.NewFromInt(1)
	}
	if c.App.Name == "" {
		c.App.Name = "shop_go"
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "logs"
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays <= 0 {
		c.Logging.MaxAgeDays = 28
	}
	return nil
}

// AssetCount returns N, the number of configured asset classes.
func (c *Config) AssetCount() int { return len(c.Assets.Items) }

// PricesBuy returns the initial buy-price table.
func (c *Config) PricesBuy() []int64 {
	out := make([]int64, len(c.Assets.Items))
	for i, a := range c.Assets.Items {
		out[i] = a.PriceBuy
	}
	return out
}

// PricesSell returns the initial sell-price table.
func (c *Config) PricesSell() []int64 {
	out := make([]int64, len(c.Assets.Items))
	for i, a := range c.Assets.Items {
		out[i] = a.PriceSell
	}
	return out
}

// URIs returns the per-asset metadata pointers, defaulting to
// <base_uri><id>.json when an item has no explicit uri.
func (c *Config) URIs() []string {
	out := make([]string, len(c.Assets.Items))
	for i, a := range c.Assets.Items {
		if a.URI != "" {
			out[i] = a.URI
			continue
		}
		if c.Assets.BaseURI != "" {
			out[i] = fmt.Sprintf("%s%d.json", c.Assets.BaseURI, a.ID)
		}
	}
	return out
}

// Fingerprint summarizes the construction-time parameters. Persisted at
// first seed so a changed genesis is visible on restart.
func (c *Config) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "owner=%s;account=%s", c.Shop.Owner, c.Shop.Account)
	for _, a := range c.Assets.Items {
		fmt.Fprintf(&b, ";%d:%d:%d:%d", a.ID, a.InitialInventory, a.PriceBuy, a.PriceSell)
	}
	return b.String()
}

// overrideWithEnv applies environment variables over file values.
func overrideWithEnv(cfg *Config) {
	if owner := os.Getenv("SHOP_OWNER"); owner != "" {
		cfg.Shop.Owner = owner
	}
	if addr := os.Getenv("SHOP_LISTEN_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if path := os.Getenv("SHOP_DB_PATH"); path != "" {
		cfg.DB.Path = path
	}
	if url := os.Getenv("SHOP_WEBHOOK_URL"); url != "" {
		cfg.Webhook.URL = url
	}
}
