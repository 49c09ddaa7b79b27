package audit

import (
	"context"
	"time"

	id "digipraman/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so
// downstream consumers can apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance for the
	// lending institution: verification lifecycle changes, beneficiary creation.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authentication failures worth alerting on.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	// Subject is the aggregate the event is about, e.g. a verification id.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
	ClientIP  string
	Device    string
	// ActorID tracks who performed the action when different from UserID.
	ActorID string
}

type AuditEvent string

const (
	// Auth events
	EventUserCreated  AuditEvent = "user_created"
	EventOTPRequested AuditEvent = "otp_requested"
	EventOTPVerified  AuditEvent = "otp_verified"
	EventOTPFailed    AuditEvent = "otp_failed"

	// Verification events
	EventVerificationCreated       AuditEvent = "verification_created"
	EventVerificationStatusChanged AuditEvent = "verification_status_changed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:               CategoryCompliance,
	EventVerificationCreated:       CategoryCompliance,
	EventVerificationStatusChanged: CategoryCompliance,

	EventOTPFailed: CategorySecurity,

	EventOTPRequested: CategoryOperations,
	EventOTPVerified:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store appends audit events. Implementations backed by a database join the
// caller's transaction when one is carried in ctx.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// OutboxEntry is one serialized event waiting to be relayed to the broker.
type OutboxEntry struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// Payload is the JSON document stored in the outbox and published downstream.
type Payload struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"userId,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Action    string `json:"action"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	ClientIP  string `json:"clientIp,omitempty"`
	Device    string `json:"device,omitempty"`
	ActorID   string `json:"actorId,omitempty"`
}

// NewPayload derives the category from the action; the category map is the
// source of truth regardless of what the caller set.
func NewPayload(eventID string, event Event) Payload {
	p := Payload{
		ID:        eventID,
		Category:  string(AuditEvent(event.Action).Category()),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    event.Action,
		Decision:  event.Decision,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		ClientIP:  event.ClientIP,
		Device:    event.Device,
		ActorID:   event.ActorID,
	}
	if !event.UserID.IsNil() {
		p.UserID = event.UserID.String()
	}
	return p
}

// AggregateOf picks the outbox partition key: the subject when present, then
// the user, falling back to the event id.
func AggregateOf(eventID string, event Event) (aggregateType, aggregateID string) {
	switch {
	case event.Subject != "":
		return "verification", event.Subject
	case !event.UserID.IsNil():
		return "user", event.UserID.String()
	default:
		return "audit", eventID
	}
}
