package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digipraman/internal/platform/kafka"
	"digipraman/pkg/requestcontext"
)

type capturePublisher struct {
	msgs []kafka.Message
	err  error
}

func (p *capturePublisher) Publish(_ context.Context, msgs ...kafka.Message) error {
	p.msgs = append(p.msgs, msgs...)
	return p.err
}

func TestKafkaNotifier(t *testing.T) {
	expiresAt := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)

	t.Run("publishes keyed delivery message", func(t *testing.T) {
		pub := &capturePublisher{}
		n := NewKafkaNotifier(pub, "otp.delivery")
		ctx := requestcontext.WithRequestID(context.Background(), "req-1")

		require.NoError(t, n.DeliverCode(ctx, "+919800000001", "123456", expiresAt))
		require.Len(t, pub.msgs, 1)

		msg := pub.msgs[0]
		assert.Equal(t, "otp.delivery", msg.Topic)
		assert.Equal(t, []byte("+919800000001"), msg.Key)
		assert.Equal(t, "req-1", msg.Headers["request_id"])

		var body deliveryMessage
		require.NoError(t, json.Unmarshal(msg.Value, &body))
		assert.Equal(t, "123456", body.Code)
		assert.True(t, body.ExpiresAt.Equal(expiresAt))
	})

	t.Run("propagates publish failure", func(t *testing.T) {
		pub := &capturePublisher{err: errors.New("broker down")}
		n := NewKafkaNotifier(pub, "otp.delivery")
		assert.Error(t, n.DeliverCode(context.Background(), "+919800000001", "123456", expiresAt))
	})
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.DeliverCode(context.Background(), "+919800000001", "654321", time.Now()))
	assert.Contains(t, buf.String(), `"code":"654321"`)
}
