// Package worker applies the ledger change feed to a spreadsheet mirror.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

const seenEventsSize = 4096

// EventSource delivers change events to a handler until ctx is done.
// *amqp.Client implements it.
type EventSource interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error
}

// MirrorWorker applies change events to a LedgerMirror. Redelivered events
// are applied once, and an event whose ledger sequence number is not newer
// than the last one applied for the same transaction is ignored, so neither
// a requeued update nor two updates published out of order can leave the
// mirror behind the ledger.
type MirrorWorker struct {
	mirror sheets.LedgerMirror
	seen   cache.Cache[string, struct{}]

	mu          sync.Mutex
	lastApplied map[int64]int64
}

func NewMirrorWorker(mirror sheets.LedgerMirror) *MirrorWorker {
	return &MirrorWorker{
		mirror:      mirror,
		seen:        cache.NewLRUCache[string, struct{}](seenEventsSize, 24*time.Hour),
		lastApplied: make(map[int64]int64),
	}
}

// Run consumes events from src until ctx is done.
func (w *MirrorWorker) Run(ctx context.Context, src EventSource) error {
	slog.InfoContext(ctx, "Mirror worker started",
		log.NewFields().WithComponent(log.ComponentWorker).WithOperation(log.OpStartup).ToSlice()...)
	return src.ConsumeTransactionEvents(ctx, w.HandleEvent)
}

// HandleEvent applies one event. A returned error asks for redelivery.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	fields := log.NewFields().
		WithComponent(log.ComponentWorker).
		WithOperation(log.OpSync).
		WithEvent(ev.EventID, string(ev.Type), ev.Seq)

	if _, dup := w.seen.Get(ev.EventID); dup {
		slog.DebugContext(ctx, "Skipping duplicate event", fields.ToSlice()...)
		return nil
	}

	id := ev.Transaction.ID
	fields[log.FieldID] = id
	if w.isStale(id, ev.Seq) {
		slog.InfoContext(ctx, "Skipping stale event", fields.ToSlice()...)
		w.seen.Set(ev.EventID, struct{}{})
		return nil
	}

	switch ev.Type {
	case amqp.EventCreated, amqp.EventUpdated:
		t, err := ev.Transaction.Transaction()
		if err != nil {
			// undeliverable: retrying will not fix the payload
			slog.ErrorContext(ctx, "Dropping event with invalid transaction", fields.WithError(err).ToSlice()...)
			w.seen.Set(ev.EventID, struct{}{})
			return nil
		}
		if err := w.mirror.Upsert(ctx, t); err != nil {
			return fmt.Errorf("mirror upsert %d: %w", id, err)
		}
	case amqp.EventDeleted:
		if err := w.mirror.Remove(ctx, id); err != nil {
			return fmt.Errorf("mirror remove %d: %w", id, err)
		}
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}

	w.markApplied(id, ev.Seq)
	w.seen.Set(ev.EventID, struct{}{})
	slog.InfoContext(ctx, "Mirror updated", fields.ToSlice()...)
	return nil
}

func (w *MirrorWorker) isStale(id, seq int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	last, ok := w.lastApplied[id]
	return ok && seq <= last
}

func (w *MirrorWorker) markApplied(id, seq int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if seq > w.lastApplied[id] {
		w.lastApplied[id] = seq
	}
}
