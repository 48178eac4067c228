package engine

import (
	"context"
	"sync"
	"testing"

	"shop_go/internal/event"
)

type memStore struct {
	mu    sync.Mutex
	saved []event.Event
	fail  error
}

func (m *memStore) SaveEvent(_ context.Context, ev event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.saved = append(m.saved, ev)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func mintAt(seq uint64) event.Event {
	return &event.MintEvent{BaseEvent: event.BaseEvent{Seq: seq, Ts: 1}, ID: 0, Amount: 1}
}

func TestJournal_PersistsThenFansOut(t *testing.T) {
	store := &memStore{}
	var got []event.Event
	var persistedBeforeSink []int
	j := NewJournal(8, 1, store, func(ev event.Event) {
		persistedBeforeSink = append(persistedBeforeSink, store.count())
		got = append(got, ev)
	})

	ctx := context.Background()
	for seq := uint64(1); seq <= 3; seq++ {
		j.processEvent(ctx, mintAt(seq))
	}

	if store.count() != 3 {
		t.Fatalf("persisted %d events, want 3", store.count())
	}
	if len(got) != 3 {
		t.Fatalf("fanned out %d events, want 3", len(got))
	}
	for i, ev := range got {
		if ev.GetSeq() != uint64(i+1) {
			t.Fatalf("sink event %d seq = %d", i, ev.GetSeq())
		}
		// WAL-first: the store already held the event when the sink ran.
		if persistedBeforeSink[i] != i+1 {
			t.Fatalf("sink %d ran before persistence (%d saved)", i, persistedBeforeSink[i])
		}
	}
}

func TestJournal_SequenceGapHalts(t *testing.T) {
	j := NewJournal(8, 1, nil)
	ctx := context.Background()

	j.processEvent(ctx, mintAt(1))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on sequence gap")
		}
	}()
	j.processEvent(ctx, mintAt(3))
}

func TestJournal_StartSeqOffset(t *testing.T) {
	// Restart case: the stream resumes past already-persisted entries.
	store := &memStore{}
	j := NewJournal(8, 42, store)
	ctx := context.Background()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic: seq 1 arrives into a stream expecting 42")
		}
	}()
	j.processEvent(ctx, mintAt(1))
}

func TestJournal_PersistenceFailureHalts(t *testing.T) {
	store := &memStore{fail: context.DeadlineExceeded}
	j := NewJournal(8, 1, store)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on persistence failure")
		}
	}()
	j.processEvent(context.Background(), mintAt(1))
}

func TestJournal_RunDrainsInbox(t *testing.T) {
	store := &memStore{}
	delivered := make(chan event.Event, 8)
	j := NewJournal(8, 1, store, func(ev event.Event) {
		delivered <- ev
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		j.Run(ctx)
	}()

	j.Inbox() <- mintAt(1)
	j.Inbox() <- mintAt(2)

	for want := uint64(1); want <= 2; want++ {
		ev := <-delivered
		if ev.GetSeq() != want {
			t.Fatalf("delivered seq = %d, want %d", ev.GetSeq(), want)
		}
	}

	cancel()
	<-done
}
