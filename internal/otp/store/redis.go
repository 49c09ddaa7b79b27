package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"digipraman/internal/otp/models"
	"digipraman/pkg/platform/sentinel"
)

const redisKeyPrefix = "otp:txn:"

// redeemScript performs the whole check-and-delete server side so concurrent
// redeemers of one transaction cannot both succeed.
//
// Returns {0} unknown, {1} expired (deleted), {2} mismatch, {3, mobile} match (deleted).
var redeemScript = redis.NewScript(`
local h = redis.call('HMGET', KEYS[1], 'code', 'mobile', 'expires_at')
if not h[1] then
  return {0}
end
if tonumber(ARGV[2]) > tonumber(h[3]) then
  redis.call('DEL', KEYS[1])
  return {1}
end
if h[1] ~= ARGV[1] then
  return {2}
end
redis.call('DEL', KEYS[1])
return {3, h[2]}
`)

// Redis stores OTP transactions in Redis hashes so several API instances can
// share them. Same contract as InMemory.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func redisKey(txnID string) string {
	return redisKeyPrefix + txnID
}

func (s *Redis) Save(ctx context.Context, txn *models.Transaction) error {
	key := redisKey(txn.TxnID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"code", txn.Code,
			"mobile", txn.Mobile,
			"expires_at", txn.ExpiresAt.UnixMilli(),
		)
		pipe.PExpireAt(ctx, key, txn.ExpiresAt.Add(ExpiredGrace))
		return nil
	})
	if err != nil {
		return fmt.Errorf("save otp transaction: %w", err)
	}
	return nil
}

func (s *Redis) Delete(ctx context.Context, txnID string) error {
	if err := s.client.Del(ctx, redisKey(txnID)).Err(); err != nil {
		return fmt.Errorf("delete otp transaction: %w", err)
	}
	return nil
}

func (s *Redis) Redeem(ctx context.Context, txnID, code string, now time.Time) (string, error) {
	res, err := redeemScript.Run(ctx, s.client, []string{redisKey(txnID)}, code, now.UnixMilli()).Slice()
	if err != nil {
		return "", fmt.Errorf("redeem otp transaction: %w", err)
	}
	if len(res) == 0 {
		return "", fmt.Errorf("redeem otp transaction: empty script result")
	}
	status, _ := res[0].(int64)
	switch status {
	case 0:
		return "", fmt.Errorf("otp transaction not found: %w", sentinel.ErrNotFound)
	case 1:
		return "", fmt.Errorf("otp transaction expired: %w", sentinel.ErrExpired)
	case 2:
		return "", fmt.Errorf("otp code mismatch: %w", sentinel.ErrInvalidCode)
	case 3:
		if len(res) < 2 {
			return "", fmt.Errorf("redeem otp transaction: missing mobile")
		}
		mobile, _ := res[1].(string)
		return mobile, nil
	default:
		return "", fmt.Errorf("redeem otp transaction: unexpected status %v", res[0])
	}
}
