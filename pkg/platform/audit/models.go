package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	// Subject is a pseudonymised citizen ID (see privacy.SubjectHash), never the raw value.
	Subject   string `json:"subject"`
	Action    string `json:"action"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason,omitempty"`
	Actor     string `json:"actor,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventRegistrationCreated  AuditEvent = "registration_created"
	EventRegistrationRejected AuditEvent = "registration_rejected"
	EventRegistrationRemoved  AuditEvent = "registration_removed"
	EventRegistrationsListed  AuditEvent = "registrations_listed"
)

// Decisions recorded on events.
const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
	DecisionGranted  = "granted"
)

// Store is an append-only event sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
