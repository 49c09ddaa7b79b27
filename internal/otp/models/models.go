package models

import (
	"crypto/subtle"
	"time"
)

// Transaction is one outstanding one-time-passcode exchange. It lives only in
// the credential store's volatile state and is deleted on first successful
// redemption or when redemption finds it expired.
type Transaction struct {
	TxnID     string
	Code      string
	Mobile    string
	ExpiresAt time.Time
}

// IsExpired reports whether now is past the recorded expiry.
func (t *Transaction) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Matches compares the presented code in constant time.
func (t *Transaction) Matches(code string) bool {
	return subtle.ConstantTimeCompare([]byte(t.Code), []byte(code)) == 1
}

// Issued is what the requester learns about a new transaction. The code itself
// only travels over the out-of-band delivery channel.
type Issued struct {
	TxnID     string    `json:"txnId"`
	ExpiresAt time.Time `json:"expiresAt"`
}
