package model

import "time"

// AuditEventType identifies the lifecycle moment an audit event records.
type AuditEventType string

const (
	// EventJobEnqueued is written when a job and its payload are first persisted.
	EventJobEnqueued AuditEventType = "job_enqueued"
	// EventInvoiceSubmitted is written when the backend accepts a submission.
	EventInvoiceSubmitted AuditEventType = "invoice_submitted"
	// EventDeliveryStatusUpdated is written after a successful status poll.
	EventDeliveryStatusUpdated AuditEventType = "delivery_status_updated"
	// EventDeliveryStatusError is written when a status poll itself fails.
	EventDeliveryStatusError AuditEventType = "delivery_status_error"
	// EventSubmissionFailed is written when submit fails.
	EventSubmissionFailed AuditEventType = "submission_failed"
)

// AuditEvent is an immutable append-only fact about a job transition.
// Events are never mutated or deleted; together they form a replayable
// history independent of the mutable JobRecord.
type AuditEvent struct {
	Timestamp      time.Time      `json:"timestamp"`
	EventType      AuditEventType `json:"event_type"`
	JobID          string         `json:"job_id"`
	InvoiceHash    *string        `json:"invoice_hash,omitempty"`
	TransmissionID *string        `json:"transmission_id,omitempty"`
	State          JobState       `json:"state"`
	Error          *string        `json:"error,omitempty"`
	Sender         *string        `json:"sender,omitempty"`
	Receiver       *string        `json:"receiver,omitempty"`
}

// NewAuditEvent creates an event stamped with the current UTC time.
func NewAuditEvent(eventType AuditEventType, jobID string, state JobState) *AuditEvent {
	return &AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		JobID:     jobID,
		State:     state,
	}
}

// WithHash attaches the invoice content digest.
func (e *AuditEvent) WithHash(hash string) *AuditEvent {
	e.InvoiceHash = &hash
	return e
}

// WithTransmissionID attaches the backend-assigned transmission id.
func (e *AuditEvent) WithTransmissionID(id string) *AuditEvent {
	e.TransmissionID = &id
	return e
}

// WithError attaches failure detail.
func (e *AuditEvent) WithError(msg string) *AuditEvent {
	e.Error = &msg
	return e
}

// WithParties attaches the sender and receiver identifiers.
func (e *AuditEvent) WithParties(sender, receiver string) *AuditEvent {
	e.Sender = &sender
	e.Receiver = &receiver
	return e
}
