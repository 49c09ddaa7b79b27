package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	id "digipraman/pkg/domain"
)

// Request is a verification request row.
type Request struct {
	ID            id.VerificationID `json:"id"`
	LoanID        id.LoanID         `json:"loanId"`
	InitiatedBy   *id.UserID        `json:"initiatedBy,omitempty"`
	Status        Status            `json:"status"`
	CurrentTier   *string           `json:"currentTier,omitempty"`
	ThresholdsRef json.RawMessage   `json:"thresholdsRef,omitempty"`
	DueDate       *time.Time        `json:"dueDate,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Requirement is one checklist item.
type Requirement struct {
	ID             id.RequirementID  `json:"id"`
	VerificationID id.VerificationID `json:"-"`
	Label          string            `json:"label"`
	Type           RequirementType   `json:"type"`
	Required       bool              `json:"required"`
	Instructions   *string           `json:"instructions,omitempty"`
	Status         RequirementStatus `json:"status"`
	SortOrder      int               `json:"sortOrder"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// EvidenceItem is an uploaded artifact. Ingestion happens elsewhere; this
// service only reads them.
type EvidenceItem struct {
	ID            id.EvidenceID     `json:"id"`
	RequirementID *id.RequirementID `json:"requirementId,omitempty"`
	Type          RequirementType   `json:"type"`
	StorageURL    string            `json:"storageUrl"`
	FileKey       string            `json:"fileKey"`
	Latitude      *float64          `json:"latitude,omitempty"`
	Longitude     *float64          `json:"longitude,omitempty"`
	CapturedAt    *time.Time        `json:"capturedAt,omitempty"`
	UploadedAt    *time.Time        `json:"uploadedAt,omitempty"`
	Metadata      json.RawMessage   `json:"metadata,omitempty"`
	// DownloadURL is a short-lived signed link, set only when object storage
	// is configured.
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// RiskSummary is the thin risk projection used in list views.
type RiskSummary struct {
	Score decimal.Decimal `json:"score"`
	Tier  string          `json:"tier"`
}

// RiskSnapshot is the full externally computed risk analysis.
type RiskSnapshot struct {
	Score             decimal.Decimal `json:"score"`
	Tier              string          `json:"tier"`
	Flags             []string        `json:"flags"`
	Explanation       json.RawMessage `json:"explanation"`
	RecommendedAction *string         `json:"recommendedAction,omitempty"`
}

type Decision struct {
	ID          id.DecisionID   `json:"id"`
	OfficerID   *id.UserID      `json:"officerId,omitempty"`
	Decision    DecisionKind    `json:"decision"`
	Notes       *string         `json:"notes,omitempty"`
	Attachments json.RawMessage `json:"attachments"`
	DecidedAt   time.Time       `json:"decidedAt"`
}

// Header is the request joined with its loan, shared by list and detail views.
type Header struct {
	ID               id.VerificationID `json:"id"`
	LoanID           id.LoanID         `json:"loanId"`
	LoanRefNo        string            `json:"loanRefNo"`
	SchemeID         *string           `json:"schemeId"`
	Status           Status            `json:"status"`
	CurrentTier      *string           `json:"currentTier,omitempty"`
	DueDate          *time.Time        `json:"dueDate,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	SanctionedAmount decimal.Decimal   `json:"sanctionedAmount"`
	Purpose          *string           `json:"purpose,omitempty"`
}

// Summary is one entry of a beneficiary's verification list. Risk is absent
// until a snapshot exists.
type Summary struct {
	Header
	Risk *RiskSummary `json:"risk,omitempty"`
}

// Detail is the fully assembled verification view.
type Detail struct {
	Header
	OrgID         *id.OrgID       `json:"orgId"`
	BeneficiaryID id.UserID       `json:"beneficiaryId"`
	InitiatedBy   *id.UserID      `json:"initiatedBy,omitempty"`
	ThresholdsRef json.RawMessage `json:"thresholdsRef,omitempty"`
	Risk          *RiskSnapshot   `json:"risk,omitempty"`
	Requirements  []Requirement   `json:"requirements"`
	Evidence      []EvidenceItem  `json:"evidence"`
	Decisions     []Decision      `json:"decisions"`
}

// RequirementInput is one checklist entry supplied at creation. Nil optional
// fields take their defaults.
type RequirementInput struct {
	Label        string
	Type         RequirementType
	Required     *bool
	Instructions *string
	SortOrder    *int
}

type CreateRequest struct {
	LoanID       id.LoanID
	InitiatedBy  *id.UserID
	DueDate      *time.Time
	Requirements []RequirementInput
}

// Created is returned from a successful create.
type Created struct {
	Request
	Requirements []Requirement `json:"requirements"`
}
