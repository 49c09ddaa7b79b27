// Package sentinel names the storage-level facts services translate into
// domain errors. Stores return these, possibly wrapped; input validation
// lives in pkg/domain-errors instead.
package sentinel

import "errors"

var (
	// ErrNotFound covers rows that never existed and OTP transactions
	// already redeemed.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned for an OTP transaction past its expiry.
	ErrExpired = errors.New("expired")

	// ErrInvalidCode means the presented OTP does not match. The
	// transaction stays redeemable.
	ErrInvalidCode = errors.New("invalid code")

	// ErrUnavailable marks a dependency the caller should degrade around,
	// such as object storage behind an open circuit.
	ErrUnavailable = errors.New("unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
