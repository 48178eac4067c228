package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// rateResponse is the expected reference-rate API payload: the value of one
// native display unit in the configured fiat currency.
type rateResponse struct {
	Currency  string  `json:"currency"`
	BasePrice float64 `json:"base_price"`
	Date      string  `json:"date"`
}

// ReferenceRateClient polls a fiat reference rate for the quote view. The
// shop never prices in fiat; the rate is display-only.
type ReferenceRateClient struct {
	onUpdate     func(decimal.Decimal)
	rate         decimal.Decimal
	mu           sync.RWMutex
	pollInterval time.Duration
	apiURL       string
	httpClient   *http.Client
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewReferenceRateClient creates a client for the given API URL.
func NewReferenceRateClient(onUpdate func(decimal.Decimal), apiURL string, pollIntervalSec int) *ReferenceRateClient {
	interval := 60 * time.Second
	if pollIntervalSec > 0 {
		interval = time.Duration(pollIntervalSec) * time.Second
	}
	return &ReferenceRateClient{
		onUpdate:     onUpdate,
		rate:         decimal.Zero,
		pollInterval: interval,
		apiURL:       apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start begins polling for rate updates.
func (c *ReferenceRateClient) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	// Fetch immediately on start
	if err := c.fetchRate(ctx); err != nil {
		slog.Warn("Initial reference rate fetch failed", slog.Any("error", err))
		// Continue anyway - will retry on next tick
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Reference rate polling panic recovered", slog.Any("panic", r))
			}
		}()

		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Reference rate polling stopped")
				return
			case <-ticker.C:
				if err := c.fetchRate(ctx); err != nil {
					slog.Warn("Reference rate fetch failed", slog.Any("error", err))
				}
			}
		}
	}()

	return nil
}

// fetchRate fetches the current rate with retry and exponential backoff.
func (c *ReferenceRateClient) fetchRate(ctx context.Context) error {
	var lastErr error
	for i := 0; i < 3; i++ {
		if i > 0 {
			delay := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.doFetch(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		slog.Warn("Reference rate fetch attempt failed", slog.Int("attempt", i+1), slog.Any("error", err))
	}
	return lastErr
}

func (c *ReferenceRateClient) doFetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var data rateResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return err
	}
	if data.BasePrice <= 0 {
		return fmt.Errorf("non-positive rate in response")
	}

	newRate := decimal.NewFromFloat(data.BasePrice)

	c.mu.Lock()
	oldRate := c.rate
	c.rate = newRate
	c.mu.Unlock()

	if !oldRate.Equal(newRate) && c.onUpdate != nil {
		slog.Info("Reference rate updated",
			slog.String("rate", newRate.String()),
			slog.String("old_rate", oldRate.String()),
		)
		c.onUpdate(newRate)
	}

	return nil
}

// Stop stops the polling
func (c *ReferenceRateClient) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.wg.Wait()
	}
}

// GetRate returns the current reference rate, zero when unknown.
func (c *ReferenceRateClient) GetRate() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate
}
