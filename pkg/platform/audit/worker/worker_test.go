package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"digipraman/internal/platform/kafka"
	id "digipraman/pkg/domain"
	audit "digipraman/pkg/platform/audit"
	"digipraman/pkg/platform/audit/store/memory"
)

type fakePublisher struct {
	published []kafka.Message
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, msgs ...kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msgs...)
	return nil
}

type WorkerSuite struct {
	suite.Suite
	store     *memory.InMemoryStore
	publisher *fakePublisher
	worker    *Worker
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.store = memory.NewInMemoryStore()
	s.publisher = &fakePublisher{}
	s.worker = NewWorker(s.store, s.publisher, "audit.events", time.Millisecond, 2, nil)
}

func (s *WorkerSuite) appendEvents(n int) string {
	subject := uuid.NewString()
	for range n {
		s.Require().NoError(s.store.Append(context.Background(), audit.Event{
			Subject:   subject,
			Action:    string(audit.EventVerificationCreated),
			UserID:    id.UserID(uuid.New()),
			RequestID: "req-1",
		}))
	}
	return subject
}

func (s *WorkerSuite) TestDrainPublishesEverythingInBatches() {
	subject := s.appendEvents(5)

	s.Require().NoError(s.worker.Drain(context.Background()))

	s.Len(s.publisher.published, 5)
	s.Equal(0, s.store.Pending())
	msg := s.publisher.published[0]
	s.Equal("audit.events", msg.Topic)
	s.Equal([]byte(subject), msg.Key)
	s.Equal("verification_created", msg.Headers["event_type"])

	var payload audit.Payload
	s.Require().NoError(json.Unmarshal(msg.Value, &payload))
	s.Equal("compliance", payload.Category)
	s.Equal("req-1", payload.RequestID)
}

func (s *WorkerSuite) TestPublishFailureLeavesEntriesPending() {
	s.appendEvents(1)
	s.publisher.err = errors.New("broker unavailable")

	_, err := s.worker.RelayOnce(context.Background())
	s.Require().Error(err)
	s.Equal(1, s.store.Pending())

	s.publisher.err = nil
	n, err := s.worker.RelayOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(0, s.store.Pending())
}

func (s *WorkerSuite) TestRunStopsOnCancel() {
	s.appendEvents(1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.worker.Run(ctx) }()

	s.Eventually(func() bool { return s.store.Pending() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	s.ErrorIs(<-done, context.Canceled)
}
