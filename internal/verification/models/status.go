package models

import (
	dErrors "digipraman/pkg/domain-errors"
)

// Status is the lifecycle state of a verification request.
type Status string

const (
	StatusPending      Status = "pending"
	StatusSubmitted    Status = "submitted"
	StatusScored       Status = "scored"
	StatusRouted       Status = "routed"
	StatusNeedsMore    Status = "needs_more"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
	StatusVideoPending Status = "video_pending"
	StatusVideoDone    Status = "video_done"
)

// transitions is the lifecycle graph. Terminal states have no entry.
var transitions = map[Status][]Status{
	StatusPending:      {StatusSubmitted},
	StatusSubmitted:    {StatusScored},
	StatusScored:       {StatusRouted},
	StatusRouted:       {StatusNeedsMore, StatusApproved, StatusRejected, StatusVideoPending},
	StatusVideoPending: {StatusVideoDone},
}

var knownStatuses = map[Status]struct{}{
	StatusPending: {}, StatusSubmitted: {}, StatusScored: {}, StatusRouted: {},
	StatusNeedsMore: {}, StatusApproved: {}, StatusRejected: {},
	StatusVideoPending: {}, StatusVideoDone: {},
}

func (s Status) IsValid() bool {
	_, ok := knownStatuses[s]
	return ok
}

func (s Status) String() string { return string(s) }

// ParseStatus rejects any value outside the lifecycle enum with InvalidState.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidState, "unknown verification status: "+s)
	}
	return status, nil
}

// CanTransitionTo reports whether next is a direct successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}
