package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// EventType names the ledger change carried by a TransactionEvent.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	default:
		return false
	}
}

// TransactionEvent is published for every ledger change. It carries the full
// transaction so consumers never need to read back from the API process.
// Seq is the ledger sequence number of the change and orders events for the
// same transaction; Timestamp is informational only.
type TransactionEvent struct {
	EventID     string        `json:"event_id"`
	Type        EventType     `json:"type"`
	Seq         int64         `json:"seq"`
	Transaction core.FullView `json:"transaction"`
	Timestamp   time.Time     `json:"timestamp"`
}

// NewTransactionEvent stamps a new event with a random id and the current time.
func NewTransactionEvent(eventType EventType, t core.Transaction, seq int64) *TransactionEvent {
	return &TransactionEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		Seq:         seq,
		Transaction: t.FullView(),
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and checks an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if !ev.Type.IsValid() {
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.Transaction.ID <= 0 {
		return nil, fmt.Errorf("event %s has no transaction id", ev.EventID)
	}
	if ev.Seq <= 0 {
		return nil, fmt.Errorf("event %s has no sequence number", ev.EventID)
	}
	return &ev, nil
}
