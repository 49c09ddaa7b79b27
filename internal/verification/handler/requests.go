package handler

import (
	"strings"
	"time"

	"digipraman/internal/verification/models"
	id "digipraman/pkg/domain"
	dErrors "digipraman/pkg/domain-errors"
)

// RequirementRequest is one checklist entry in POST /verifications.
type RequirementRequest struct {
	Label        string  `json:"label" validate:"required,max=200"`
	Type         string  `json:"type" validate:"required,max=16"`
	Required     *bool   `json:"required"`
	Instructions *string `json:"instructions" validate:"omitempty,max=2000"`
	SortOrder    *int    `json:"sortOrder" validate:"omitempty,min=0"`
}

// CreateVerificationRequest is the body of POST /verifications.
type CreateVerificationRequest struct {
	LoanID       string               `json:"loanId" validate:"required"`
	InitiatedBy  *string              `json:"initiatedBy"`
	DueDate      *string              `json:"dueDate"`
	Requirements []RequirementRequest `json:"requirements" validate:"omitempty,max=100,dive"`
}

func (r *CreateVerificationRequest) Validate() error {
	r.LoanID = strings.TrimSpace(r.LoanID)
	if r.LoanID == "" {
		return dErrors.New(dErrors.CodeValidation, "loanId is required")
	}
	// Any case is accepted; uuid tags in the validator only match lowercase.
	if _, err := id.ParseLoanID(r.LoanID); err != nil {
		return err
	}
	if r.InitiatedBy != nil {
		if _, err := id.ParseUserID(strings.TrimSpace(*r.InitiatedBy)); err != nil {
			return err
		}
	}
	if r.DueDate != nil {
		if _, err := parseDueDate(*r.DueDate); err != nil {
			return err
		}
	}
	return nil
}

// ToModel converts the validated body. Parsing repeats Validate's checks so
// it is safe to call on its own.
func (r *CreateVerificationRequest) ToModel() (models.CreateRequest, error) {
	loanID, err := id.ParseLoanID(r.LoanID)
	if err != nil {
		return models.CreateRequest{}, err
	}
	out := models.CreateRequest{LoanID: loanID}
	if r.InitiatedBy != nil {
		initiator, err := id.ParseUserID(strings.TrimSpace(*r.InitiatedBy))
		if err != nil {
			return models.CreateRequest{}, err
		}
		out.InitiatedBy = &initiator
	}
	if r.DueDate != nil {
		due, err := parseDueDate(*r.DueDate)
		if err != nil {
			return models.CreateRequest{}, err
		}
		out.DueDate = &due
	}
	for _, req := range r.Requirements {
		out.Requirements = append(out.Requirements, models.RequirementInput{
			Label:        req.Label,
			Type:         models.RequirementType(req.Type),
			Required:     req.Required,
			Instructions: req.Instructions,
			SortOrder:    req.SortOrder,
		})
	}
	return out, nil
}

// parseDueDate accepts a full timestamp or a calendar date.
func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, dErrors.New(dErrors.CodeValidation, "dueDate must be RFC3339 or YYYY-MM-DD")
}

// UpdateStatusRequest is the body of PATCH /verifications/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,max=32"`
}

func (r *UpdateStatusRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	return nil
}
