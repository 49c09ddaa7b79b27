package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "digipraman/pkg/platform/audit"
)

type entry struct {
	outbox    audit.OutboxEntry
	event     audit.Event
	published bool
}

// InMemoryStore keeps the outbox in memory for tests and local development.
// It does not participate in SQL transactions.
type InMemoryStore struct {
	mu      sync.Mutex
	entries []*entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	eventID := uuid.NewString()
	payload, err := json.Marshal(audit.NewPayload(eventID, event))
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	aggregateType, aggregateID := audit.AggregateOf(eventID, event)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &entry{
		event: event,
		outbox: audit.OutboxEntry{
			ID:            eventID,
			AggregateType: aggregateType,
			AggregateID:   aggregateID,
			EventType:     event.Action,
			Payload:       payload,
			CreatedAt:     event.Timestamp,
		},
	})
	return nil
}

// Events returns every appended event in append order.
func (s *InMemoryStore) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Event, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.event)
	}
	return out
}

// Pending counts entries not yet relayed.
func (s *InMemoryStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if !e.published {
			n++
		}
	}
	return n
}

func (s *InMemoryStore) Relay(ctx context.Context, limit int, publish func(context.Context, []audit.OutboxEntry) error) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var batch []*entry
	for _, e := range s.entries {
		if len(batch) == limit {
			break
		}
		if !e.published {
			batch = append(batch, e)
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}
	out := make([]audit.OutboxEntry, len(batch))
	for i, e := range batch {
		out[i] = e.outbox
	}
	if err := publish(ctx, out); err != nil {
		return 0, err
	}
	for _, e := range batch {
		e.published = true
	}
	return len(batch), nil
}
