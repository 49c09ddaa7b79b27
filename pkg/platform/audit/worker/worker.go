package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"digipraman/internal/platform/kafka"
	audit "digipraman/pkg/platform/audit"
)

// Outbox is the relay side of an audit store.
type Outbox interface {
	Relay(ctx context.Context, limit int, publish func(context.Context, []audit.OutboxEntry) error) (int, error)
}

// Publisher produces messages to the broker.
type Publisher interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

const (
	defaultInterval = 2 * time.Second
	defaultBatch    = 100
)

// Worker polls the outbox and relays unpublished events to Kafka. Delivery
// is at-least-once: a crash between produce and commit republishes the batch.
type Worker struct {
	outbox    Outbox
	publisher Publisher
	topic     string
	interval  time.Duration
	batch     int
	logger    *slog.Logger
}

func NewWorker(outbox Outbox, publisher Publisher, topic string, interval time.Duration, batch int, logger *slog.Logger) *Worker {
	if interval <= 0 {
		interval = defaultInterval
	}
	if batch <= 0 {
		batch = defaultBatch
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		outbox:    outbox,
		publisher: publisher,
		topic:     topic,
		interval:  interval,
		batch:     batch,
		logger:    logger,
	}
}

// Run relays until ctx is cancelled. Relay errors are logged and retried on
// the next tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Drain(ctx); err != nil {
				w.logger.WarnContext(ctx, "audit outbox relay failed", "error", err)
			}
		}
	}
}

// Drain relays full batches until the outbox is empty.
func (w *Worker) Drain(ctx context.Context) error {
	for {
		n, err := w.RelayOnce(ctx)
		if err != nil {
			return err
		}
		if n < w.batch {
			return nil
		}
	}
}

// RelayOnce publishes at most one batch and returns how many entries it sent.
func (w *Worker) RelayOnce(ctx context.Context) (int, error) {
	return w.outbox.Relay(ctx, w.batch, func(ctx context.Context, entries []audit.OutboxEntry) error {
		msgs := make([]kafka.Message, len(entries))
		for i, e := range entries {
			msgs[i] = kafka.Message{
				Topic: w.topic,
				Key:   []byte(e.AggregateID),
				Value: e.Payload,
				Headers: map[string]string{
					"event_type":     e.EventType,
					"aggregate_type": e.AggregateType,
					"outbox_id":      e.ID,
				},
			}
		}
		if err := w.publisher.Publish(ctx, msgs...); err != nil {
			return fmt.Errorf("publish audit batch: %w", err)
		}
		return nil
	})
}
