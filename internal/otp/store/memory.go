package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"digipraman/internal/otp/models"
	"digipraman/pkg/platform/sentinel"
)

// Error Contract:
// Redeem is the only consuming operation and is atomic with respect to every
// other call on the same store:
// - unknown or already consumed transaction: ErrNotFound
// - expired transaction: deleted, then ErrExpired
// - wrong code: ErrInvalidCode, transaction kept for retry
// - match: deleted, mobile returned

// ExpiredGrace is how long an expired transaction is retained by either
// backend, so a late redeem still reports Expired rather than an unknown
// transaction.
const ExpiredGrace = time.Hour

// InMemory keeps OTP transactions in a mutex-guarded map. State is lost on
// restart.
type InMemory struct {
	mu   sync.Mutex
	txns map[string]*models.Transaction
}

// NewInMemory constructs an empty store.
func NewInMemory() *InMemory {
	return &InMemory{txns: make(map[string]*models.Transaction)}
}

func (s *InMemory) Save(_ context.Context, txn *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *txn
	s.txns[txn.TxnID] = &copied
	return nil
}

func (s *InMemory) Redeem(_ context.Context, txnID, code string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.txns[txnID]
	if !ok {
		return "", fmt.Errorf("otp transaction not found: %w", sentinel.ErrNotFound)
	}
	if txn.IsExpired(now) {
		delete(s.txns, txnID)
		return "", fmt.Errorf("otp transaction expired: %w", sentinel.ErrExpired)
	}
	if !txn.Matches(code) {
		return "", fmt.Errorf("otp code mismatch: %w", sentinel.ErrInvalidCode)
	}
	delete(s.txns, txnID)
	return txn.Mobile, nil
}

// Delete drops a transaction regardless of state. Unknown ids are a no-op.
func (s *InMemory) Delete(_ context.Context, txnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.txns, txnID)
	return nil
}

// DeleteExpired removes transactions that expired more than ExpiredGrace
// before now and returns how many were dropped. Anything younger is left for
// Redeem to report as Expired.
func (s *InMemory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, txn := range s.txns {
		if txn.IsExpired(now.Add(-ExpiredGrace)) {
			delete(s.txns, id)
			deleted++
		}
	}
	return deleted, nil
}

// RunSweeper drops transactions past their grace window every interval until ctx is done.
// Redis needs no sweeper; its keys carry their own TTL.
func (s *InMemory) RunSweeper(ctx context.Context, interval time.Duration, now func() time.Time, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n, _ := s.DeleteExpired(ctx, now()); n > 0 {
				logger.DebugContext(ctx, "swept expired otp transactions", "count", n)
			}
		}
	}
}

// Len reports the number of outstanding transactions.
func (s *InMemory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txns)
}
