// Package domain holds typed identifiers shared across modules. Each ID is a
// distinct UUID newtype so a loan ID can never be passed where a verification
// ID is expected.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "digipraman/pkg/domain-errors"
)

type (
	VerificationID uuid.UUID
	RequirementID  uuid.UUID
	LoanID         uuid.UUID
	UserID         uuid.UUID
	OrgID          uuid.UUID
	EvidenceID     uuid.UUID
	DecisionID     uuid.UUID
)

func (v VerificationID) String() string { return uuid.UUID(v).String() }
func (v VerificationID) IsNil() bool    { return uuid.UUID(v) == uuid.Nil }
func (r RequirementID) String() string  { return uuid.UUID(r).String() }
func (l LoanID) String() string         { return uuid.UUID(l).String() }
func (l LoanID) IsNil() bool            { return uuid.UUID(l) == uuid.Nil }
func (u UserID) String() string         { return uuid.UUID(u).String() }
func (u UserID) IsNil() bool            { return uuid.UUID(u) == uuid.Nil }
func (o OrgID) String() string          { return uuid.UUID(o).String() }
func (e EvidenceID) String() string     { return uuid.UUID(e).String() }
func (d DecisionID) String() string     { return uuid.UUID(d).String() }

// Text marshalling keeps the canonical string form in JSON payloads.
func (v VerificationID) MarshalText() ([]byte, error)  { return uuid.UUID(v).MarshalText() }
func (v *VerificationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(v).UnmarshalText(b) }
func (r RequirementID) MarshalText() ([]byte, error)   { return uuid.UUID(r).MarshalText() }
func (r *RequirementID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(r).UnmarshalText(b) }
func (l LoanID) MarshalText() ([]byte, error)          { return uuid.UUID(l).MarshalText() }
func (l *LoanID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(l).UnmarshalText(b) }
func (u UserID) MarshalText() ([]byte, error)          { return uuid.UUID(u).MarshalText() }
func (u *UserID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(u).UnmarshalText(b) }
func (o OrgID) MarshalText() ([]byte, error)           { return uuid.UUID(o).MarshalText() }
func (o *OrgID) UnmarshalText(b []byte) error          { return (*uuid.UUID)(o).UnmarshalText(b) }
func (e EvidenceID) MarshalText() ([]byte, error)      { return uuid.UUID(e).MarshalText() }
func (e *EvidenceID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(e).UnmarshalText(b) }
func (d DecisionID) MarshalText() ([]byte, error)      { return uuid.UUID(d).MarshalText() }
func (d *DecisionID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(d).UnmarshalText(b) }

func NewVerificationID() VerificationID { return VerificationID(uuid.New()) }
func NewRequirementID() RequirementID   { return RequirementID(uuid.New()) }
func NewUserID() UserID                 { return UserID(uuid.New()) }

// ParseVerificationID parses a verification ID at a trust boundary.
func ParseVerificationID(s string) (VerificationID, error) {
	u, err := parseUUID(s, "verification")
	return VerificationID(u), err
}

// ParseLoanID parses a loan application ID at a trust boundary.
func ParseLoanID(s string) (LoanID, error) {
	u, err := parseUUID(s, "loan")
	return LoanID(u), err
}

// ParseUserID parses a user ID at a trust boundary.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

// ParseOrgID parses an organisation ID at a trust boundary.
func ParseOrgID(s string) (OrgID, error) {
	u, err := parseUUID(s, "org")
	return OrgID(u), err
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	// uuid.Parse also accepts urn and braced forms; only the canonical 36-char form is allowed here.
	if len(s) != 36 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be nil")
	}
	return u, nil
}
