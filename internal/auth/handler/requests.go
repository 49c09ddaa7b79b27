package handler

import (
	"strings"

	dErrors "digipraman/pkg/domain-errors"
)

// RequestOTPRequest is the body of POST /auth/otp/request.
type RequestOTPRequest struct {
	Mobile string `json:"mobile" validate:"required,max=32"`
}

func (r *RequestOTPRequest) Validate() error {
	r.Mobile = strings.TrimSpace(r.Mobile)
	if r.Mobile == "" {
		return dErrors.New(dErrors.CodeValidation, "mobile is required")
	}
	return nil
}

// VerifyOTPRequest is the body of POST /auth/otp/verify.
type VerifyOTPRequest struct {
	TxnID string `json:"txnId" validate:"required,max=64"`
	OTP   string `json:"otp" validate:"required,max=16"`
}

func (r *VerifyOTPRequest) Validate() error {
	r.TxnID = strings.TrimSpace(r.TxnID)
	r.OTP = strings.TrimSpace(r.OTP)
	if r.TxnID == "" || r.OTP == "" {
		return dErrors.New(dErrors.CodeValidation, "txnId and otp are required")
	}
	return nil
}
