package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"shop_go/internal/event"
	"shop_go/internal/infra"
)

// Notifier pushes journaled events to an external webhook so off-process
// indexers can follow the stream without holding a feed connection open.
// Delivery is best effort: the journal never blocks on a slow receiver.
type Notifier struct {
	url    string
	client *http.Client
	queue  chan event.Event
	cancel context.CancelFunc
}

// envelope is the webhook payload shape.
type envelope struct {
	Type  string      `json:"type"`
	Seq   uint64      `json:"seq"`
	Ts    int64       `json:"ts"`
	Event event.Event `json:"event"`
}

// NewNotifier creates a notifier for the given webhook URL.
func NewNotifier(url string, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		queue:  make(chan event.Event, 256),
	}
}

// Sink returns the journal sink feeding this notifier. Events are dropped
// (and counted) when the queue is full rather than stalling the journal.
func (n *Notifier) Sink() func(event.Event) {
	return func(ev event.Event) {
		select {
		case n.queue <- ev:
		default:
			infra.GlobalMetrics.RecordWebhookFailure()
			slog.Warn("Webhook queue full, dropping event", slog.Uint64("seq", ev.GetSeq()))
		}
	}
}

// Start launches the delivery goroutine.
func (n *Notifier) Start(ctx context.Context) {
	ctx, n.cancel = context.WithCancel(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				slog.Info("Webhook notifier stopped")
				return
			case ev := <-n.queue:
				if err := n.deliver(ctx, ev); err != nil {
					infra.GlobalMetrics.RecordWebhookFailure()
					slog.Warn("Webhook delivery failed",
						slog.Uint64("seq", ev.GetSeq()),
						slog.Any("error", err),
					)
				}
			}
		}
	}()
}

// deliver posts one event, retrying twice with backoff.
func (n *Notifier) deliver(ctx context.Context, ev event.Event) error {
	body, err := json.Marshal(envelope{
		Type:  ev.GetType(),
		Seq:   ev.GetSeq(),
		Ts:    ev.GetTs(),
		Event: ev,
	})
	if err != nil {
		return err
	}

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
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return lastErr
}

// Stop stops the delivery goroutine.
func (n *Notifier) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
}
