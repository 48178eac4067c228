package infra

import (
	"sync/atomic"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	opsCommitted    atomic.Uint64
	opsRejected     atomic.Uint64
	eventsJournaled atomic.Uint64
	webhookFailures atomic.Uint64

	// Latency tracking (journal persist + fan-out)
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	feedClients atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordCommit records a committed shop operation.
func (m *Metrics) RecordCommit() {
	m.opsCommitted.Add(1)
}

// RecordRejection records a rejected shop operation.
func (m *Metrics) RecordRejection() {
	m.opsRejected.Add(1)
}

// RecordEvent records one journaled event with its processing latency.
func (m *Metrics) RecordEvent(latencyNs int64) {
	m.eventsJournaled.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordWebhookFailure records a failed outbound event push.
func (m *Metrics) RecordWebhookFailure() {
	m.webhookFailures.Add(1)
}

// IncrementFeedClients increments connected feed clients by 1.
func (m *Metrics) IncrementFeedClients() {
	m.feedClients.Add(1)
}

// DecrementFeedClients decrements connected feed clients by 1.
func (m *Metrics) DecrementFeedClients() {
	m.feedClients.Add(-1)
}

// FeedClients returns the current connected feed client count.
func (m *Metrics) FeedClients() int32 {
	return m.feedClients.Load()
}

// Snapshot returns current counter values for the stats endpoint.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		OpsCommitted:    m.opsCommitted.Load(),
		OpsRejected:     m.opsRejected.Load(),
		EventsJournaled: m.eventsJournaled.Load(),
		WebhookFailures: m.webhookFailures.Load(),
		FeedClients:     m.feedClients.Load(),
	}
	if count := m.latencyCount.Load(); count > 0 {
		snap.AvgLatencyNs = m.latencySumNs.Load() / int64(count)
	}
	return snap
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OpsCommitted    uint64 `json:"ops_committed"`
	OpsRejected     uint64 `json:"ops_rejected"`
	EventsJournaled uint64 `json:"events_journaled"`
	WebhookFailures uint64 `json:"webhook_failures"`
	AvgLatencyNs    int64  `json:"avg_latency_ns"`
	FeedClients     int32  `json:"feed_clients"`
}
