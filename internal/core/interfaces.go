// Package core defines the ports between the transmission queue and its
// collaborators. Service implementations depend on these interfaces, not on
// concrete data or provider implementations.
package core

import (
	"context"

	"github.com/sergejparity/e-invoice/internal/domain/model"
)

// SubmitRequest groups the submission inputs handed to a delivery provider.
type SubmitRequest struct {
	XML      string
	Sender   string
	Receiver string
	Profile  string
}

// Provider is the uniform contract every delivery backend satisfies.
//
// Submit sends the invoice and returns the backend-assigned transmission id.
// A non-success backend response must surface as a descriptive error carrying
// the backend status and response body, not as a generic transport error.
//
// Status is an idempotent read of the delivery state for a previous
// submission. Absence of a definitive answer is reported as InFlight, never
// as Delivered. A Status error means "unknown", not "rejected".
type Provider interface {
	Submit(ctx context.Context, req SubmitRequest) (string, error)
	Status(ctx context.Context, transmissionID string) (*model.DeliveryStatus, error)
}

// JobRepository is the durable store for job records and payloads.
//
// CreateJob persists the record and payload atomically: either both are
// stored or the caller sees an error. UpdateJob performs a single-key
// read-modify-write; the mutate callback runs inside the transaction and may
// reject the update by returning an error. Both UpdateJob and GetJob return
// model.ErrJobNotFound for unknown ids.
type JobRepository interface {
	CreateJob(ctx context.Context, rec *model.JobRecord, payload *model.JobPayload) error
	GetJob(ctx context.Context, jobID string) (*model.JobRecord, error)
	GetPayload(ctx context.Context, jobID string) (*model.JobPayload, error)
	UpdateJob(ctx context.Context, jobID string, mutate func(*model.JobRecord) error) (*model.JobRecord, error)
	ListJobs(ctx context.Context) ([]*model.JobRecord, error)
}

// AuditRecorder appends immutable audit events to a durable sink.
// Callers treat failures as advisory: a failed write is logged, never
// propagated into the originating operation.
type AuditRecorder interface {
	Record(ctx context.Context, event *model.AuditEvent) error
}
