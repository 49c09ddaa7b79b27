package models

import (
	"strings"

	dErrors "digipraman/pkg/domain-errors"
)

// RequirementType is the kind of artifact a checklist item asks for.
type RequirementType string

const (
	RequirementPhoto    RequirementType = "photo"
	RequirementVideo    RequirementType = "video"
	RequirementDocument RequirementType = "doc"
)

// ParseRequirementType accepts the stored values plus "document" as an alias
// for "doc".
func ParseRequirementType(s string) (RequirementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "photo":
		return RequirementPhoto, nil
	case "video":
		return RequirementVideo, nil
	case "doc", "document":
		return RequirementDocument, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "requirement type is required")
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unknown requirement type: "+s)
	}
}

type RequirementStatus string

const (
	RequirementNotStarted RequirementStatus = "not_started"
	RequirementInProgress RequirementStatus = "in_progress"
	RequirementCompleted  RequirementStatus = "completed"
)

// DecisionKind is an officer's ruling.
type DecisionKind string

const (
	DecisionApprove       DecisionKind = "approve"
	DecisionReject        DecisionKind = "reject"
	DecisionRequestMore   DecisionKind = "request_more"
	DecisionVideoRequired DecisionKind = "video_required"
)
