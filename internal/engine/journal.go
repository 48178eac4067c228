package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"shop_go/internal/event"
	"shop_go/internal/infra"
)

// EventStore persists journal entries. Implemented by infra/storage.
type EventStore interface {
	SaveEvent(ctx context.Context, ev event.Event) error
}

// Sink receives every journaled event after it has been persisted.
type Sink func(event.Event)

// Journal is the single-threaded consumer of the shop's event stream: it
// enforces the total order, persists WAL-first, then fans out to sinks
// (feed clients, webhook notifier). Run it in exactly one goroutine.
type Journal struct {
	inbox   chan event.Event
	store   EventStore
	sinks   []Sink
	nextSeq uint64
}

// NewJournal creates a journal expecting the stream to start at startSeq.
// store may be nil (no persistence); sinks may be empty.
func NewJournal(inboxSize int, startSeq uint64, store EventStore, sinks ...Sink) *Journal {
	if startSeq == 0 {
		startSeq = 1
	}
	return &Journal{
		inbox:   make(chan event.Event, inboxSize),
		store:   store,
		sinks:   sinks,
		nextSeq: startSeq,
	}
}

// Inbox returns the event channel the engine emits into.
func (j *Journal) Inbox() chan<- event.Event {
	return j.inbox
}

// Run starts the main journal loop. This MUST be run in a single goroutine.
func (j *Journal) Run(ctx context.Context) {
	slog.Info("Journal started")

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			j.DumpState("journal_panic_dump.json")
			// Halt after dump: a broken journal means a broken audit trail.
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Journal stopping...")
			return
		case ev := <-j.inbox:
			j.processEvent(ctx, ev)
		}
	}
}

func (j *Journal) processEvent(ctx context.Context, ev event.Event) {
	start := time.Now()

	// 1. Sequence Gap Check (Halt Policy)
	if ev.GetSeq() != j.nextSeq {
		panic(fmt.Sprintf("SEQUENCE_GAP_DETECTED: expected %d, got %d", j.nextSeq, ev.GetSeq()))
	}

	// 2. WAL-first: Persistence
	if j.store != nil {
		if err := j.store.SaveEvent(ctx, ev); err != nil {
			panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
		}
	}

	// 3. Fan-out
	for _, sink := range j.sinks {
		sink(ev)
	}

	// 4. Increment Sequence
	j.nextSeq++

	infra.GlobalMetrics.RecordEvent(time.Since(start).Nanoseconds())
}

// DumpState writes the journal position to a file (for post-mortem).
func (j *Journal) DumpState(filename string) {
	slog.Info("Dumping journal state...", slog.String("file", filename))

	data := struct {
		NextSeq uint64 `json:"next_seq"`
		Pending int    `json:"pending"`
	}{
		NextSeq: j.nextSeq,
		Pending: len(j.inbox),
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal journal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write journal dump", slog.Any("error", err))
	}
}
