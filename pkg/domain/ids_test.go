package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "digipraman/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseVerificationID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseVerificationID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseVerificationID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseVerificationID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, VerificationID(validUUID), id)
	})
}

// TestParseID_TrustBoundary checks hostile input at API entry points.
func TestParseID_TrustBoundary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE verification_requests;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Braced form", "{550e8400-e29b-41d4-a716-446655440000}", true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLoanID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errVerification := ParseVerificationID(validUUID)
		_, errLoan := ParseLoanID(validUUID)
		_, errUser := ParseUserID(validUUID)
		_, errOrg := ParseOrgID(validUUID)

		require.NoError(t, errVerification)
		require.NoError(t, errLoan)
		require.NoError(t, errUser)
		require.NoError(t, errOrg)
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errVerification := ParseVerificationID(input)
			_, errLoan := ParseLoanID(input)
			_, errUser := ParseUserID(input)
			_, errOrg := ParseOrgID(input)

			require.Error(t, errVerification)
			require.Error(t, errLoan)
			require.Error(t, errUser)
			require.Error(t, errOrg)
		})
	}
}

func TestIDsMarshalAsCanonicalStrings(t *testing.T) {
	u := uuid.MustParse("7f7c4d8e-2b7a-4c56-9f3e-1a2b3c4d5e6f")
	b, err := json.Marshal(struct {
		ID VerificationID `json:"id"`
	}{ID: VerificationID(u)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7f7c4d8e-2b7a-4c56-9f3e-1a2b3c4d5e6f"}`, string(b))

	var back struct {
		ID LoanID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, LoanID(u), back.ID)
}
