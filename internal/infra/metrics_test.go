package infra

import (
	"sync"
	"testing"
)

func TestMetricsSnapshot(t *testing.T) {
	m := &Metrics{}

	m.RecordCommit()
	m.RecordCommit()
	m.RecordRejection()
	m.RecordEvent(100)
	m.RecordEvent(300)
	m.RecordWebhookFailure()
	m.IncrementFeedClients()
	m.IncrementFeedClients()
	m.DecrementFeedClients()

	snap := m.Snapshot()
	if snap.OpsCommitted != 2 {
		t.Errorf("OpsCommitted = %d, want 2", snap.OpsCommitted)
	}
	if snap.OpsRejected != 1 {
		t.Errorf("OpsRejected = %d, want 1", snap.OpsRejected)
	}
	if snap.EventsJournaled != 2 {
		t.Errorf("EventsJournaled = %d, want 2", snap.EventsJournaled)
	}
	if snap.WebhookFailures != 1 {
		t.Errorf("WebhookFailures = %d, want 1", snap.WebhookFailures)
	}
	if snap.AvgLatencyNs != 200 {
		t.Errorf("AvgLatencyNs = %d, want 200", snap.AvgLatencyNs)
	}
	if snap.FeedClients != 1 {
		t.Errorf("FeedClients = %d, want 1", snap.FeedClients)
	}
}

func TestMetricsConcurrent(t *testing.T) {
	m := &Metrics{}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordCommit()
				m.RecordEvent(10)
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.OpsCommitted != 1000 {
		t.Errorf("OpsCommitted = %d, want 1000", snap.OpsCommitted)
	}
	if snap.EventsJournaled != 1000 {
		t.Errorf("EventsJournaled = %d, want 1000", snap.EventsJournaled)
	}
}

func TestMetricsEmptySnapshot(t *testing.T) {
	m := &Metrics{}
	snap := m.Snapshot()
	if snap.AvgLatencyNs != 0 {
		t.Errorf("AvgLatencyNs = %d, want 0 with no samples", snap.AvgLatencyNs)
	}
}
