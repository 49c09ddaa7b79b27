// Package notifier delivers freshly issued OTP codes to the out-of-band
// channel. Codes never appear in HTTP responses.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"digipraman/internal/platform/kafka"
	"digipraman/pkg/requestcontext"
)

// LogNotifier writes the code to the application log. Development only.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) DeliverCode(ctx context.Context, mobile, code string, expiresAt time.Time) error {
	n.logger.InfoContext(ctx, "otp issued",
		"mobile", mobile,
		"code", code,
		"expires_at", expiresAt,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Publisher is the subset of the Kafka producer the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier hands the code to an SMS gateway consumer via a topic keyed by
// mobile number, which keeps per-recipient ordering.
type KafkaNotifier struct {
	publisher Publisher
	topic     string
}

func NewKafkaNotifier(publisher Publisher, topic string) *KafkaNotifier {
	return &KafkaNotifier{publisher: publisher, topic: topic}
}

type deliveryMessage struct {
	Mobile    string    `json:"mobile"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (n *KafkaNotifier) DeliverCode(ctx context.Context, mobile, code string, expiresAt time.Time) error {
	payload, err := json.Marshal(deliveryMessage{Mobile: mobile, Code: code, ExpiresAt: expiresAt})
	if err != nil {
		return fmt.Errorf("marshal otp delivery: %w", err)
	}
	msg := kafka.Message{
		Topic: n.topic,
		Key:   []byte(mobile),
		Value: payload,
	}
	if reqID := requestcontext.RequestID(ctx); reqID != "" {
		msg.Headers = map[string]string{"request_id": reqID}
	}
	return n.publisher.Publish(ctx, msg)
}
