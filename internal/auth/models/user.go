package models

import (
	"fmt"
	"time"

	id "digipraman/pkg/domain"
)

// Role values stored on users.
const (
	RoleBeneficiary = "beneficiary"
	RoleOfficer     = "officer"
	RoleAdmin       = "admin"
)

const (
	defaultLocale = "en"
	statusActive  = "active"
)

// User is a directory entry. Beneficiaries are created on their first
// successful OTP login.
type User struct {
	ID        id.UserID `json:"id"`
	OrgID     *id.OrgID `json:"orgId"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Email     string    `json:"email,omitempty"`
	Locale    string    `json:"locale"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewBeneficiary builds a beneficiary for a verified mobile. The display name
// falls back to the last four digits of the mobile.
func NewBeneficiary(userID id.UserID, orgID *id.OrgID, mobile, name string, now time.Time) *User {
	if name == "" {
		name = fmt.Sprintf("Beneficiary %s", lastN(mobile, 4))
	}
	return &User{
		ID:        userID,
		OrgID:     orgID,
		Role:      RoleBeneficiary,
		Name:      name,
		Mobile:    mobile,
		Locale:    defaultLocale,
		Status:    statusActive,
		CreatedAt: now,
	}
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// LoginResult is returned after a successful OTP verification.
type LoginResult struct {
	Token   string `json:"jwt"`
	User    *User  `json:"user"`
	Created bool   `json:"-"`
}
