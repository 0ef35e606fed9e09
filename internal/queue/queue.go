// Package queue implements the durable transmission queue: persist first,
// dispatch asynchronously, record every transition in the audit trail.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sergejparity/e-invoice/internal/core"
	"github.com/sergejparity/e-invoice/internal/data"
	"github.com/sergejparity/e-invoice/internal/domain/model"
	"github.com/sergejparity/e-invoice/internal/invoice"
)

const defaultPollDelay = 100 * time.Millisecond

// Queue accepts invoice submissions, persists them, and drives each job
// through the dispatch cycle on its own goroutine. All state lives in the
// JobRepository; the Queue itself carries no job state and is safe for
// concurrent use.
type Queue struct {
	repo      core.JobRepository
	provider  core.Provider
	audit     core.AuditRecorder
	logger    *slog.Logger
	pollDelay time.Duration
	clock     data.TimeProvider
	wg        sync.WaitGroup
}

// Options configures a Queue.
type Options struct {
	Repo     core.JobRepository
	Provider core.Provider
	Audit    core.AuditRecorder
	Logger   *slog.Logger

	// PollDelay is the pause between a successful submit and the first
	// delivery status poll. Defaults to 100ms.
	PollDelay time.Duration

	// TimeProvider defaults to real system time.
	TimeProvider data.TimeProvider
}

// NewQueue creates a transmission queue. Repo, Provider and Audit are
// required.
func NewQueue(opts Options) (*Queue, error) {
	if opts.Repo == nil {
		return nil, errors.New("queue: job repository is required")
	}
	if opts.Provider == nil {
		return nil, errors.New("queue: delivery provider is required")
	}
	if opts.Audit == nil {
		return nil, errors.New("queue: audit recorder is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pollDelay := opts.PollDelay
	if pollDelay <= 0 {
		pollDelay = defaultPollDelay
	}
	clock := opts.TimeProvider
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}
	return &Queue{
		repo:      opts.Repo,
		provider:  opts.Provider,
		audit:     opts.Audit,
		logger:    logger,
		pollDelay: pollDelay,
		clock:     clock,
	}, nil
}

// Enqueue validates and persists a new job, records the enqueue event, and
// starts dispatch in the background. It returns the job id as soon as the
// job is durable; the caller does not wait for delivery.
func (q *Queue) Enqueue(ctx context.Context, payload *model.JobPayload) (string, error) {
	if err := payload.Validate(); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	now := q.clock.Now().UTC()
	rec := &model.JobRecord{
		JobID:       uuid.NewString(),
		State:       model.JobStateQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
		InvoiceHash: invoice.DigestHex([]byte(payload.XML)),
	}
	if err := q.repo.CreateJob(ctx, rec, payload); err != nil {
		return "", fmt.Errorf("persist job: %w", err)
	}

	q.recordAudit(ctx, model.NewAuditEvent(model.EventJobEnqueued, rec.JobID, rec.State).
		WithHash(rec.InvoiceHash).
		WithParties(payload.Sender, payload.Receiver))

	q.logger.InfoContext(ctx, "job enqueued",
		"job_id", rec.JobID, "invoice_hash", rec.InvoiceHash)

	q.wg.Add(1)
	go q.dispatch(rec.JobID)

	return rec.JobID, nil
}

// Get returns the current record for a job id.
func (q *Queue) Get(ctx context.Context, jobID string) (*model.JobRecord, error) {
	return q.repo.GetJob(ctx, jobID)
}

// List returns all job records, newest first.
func (q *Queue) List(ctx context.Context) ([]*model.JobRecord, error) {
	return q.repo.ListJobs(ctx)
}

// Wait blocks until every dispatched job has finished processing.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// dispatch runs the full processing cycle for one job. A panic in processing
// is contained to the job: it is logged and the worker exits without taking
// down sibling jobs.
func (q *Queue) dispatch(jobID string) {
	defer q.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("job processing panicked", "job_id", jobID, "panic", r)
		}
	}()

	ctx := context.Background()
	if err := q.processJob(ctx, jobID); err != nil {
		q.logger.ErrorContext(ctx, "job processing failed", "job_id", jobID, "error", err)
	}
}

// processJob drives one job: claim it, submit the payload, then poll the
// delivery status once. Terminal outcomes land the job in delivered or
// failed; a non-terminal poll answer leaves it sent for later inspection.
func (q *Queue) processJob(ctx context.Context, jobID string) error {
	if _, err := q.transition(ctx, jobID, model.JobStateInFlight, nil); err != nil {
		return fmt.Errorf("claim job: %w", err)
	}

	payload, err := q.repo.GetPayload(ctx, jobID)
	if err != nil {
		q.fail(ctx, jobID, fmt.Sprintf("load payload: %v", err))
		return fmt.Errorf("load payload: %w", err)
	}

	transmissionID, err := q.provider.Submit(ctx, core.SubmitRequest{
		XML:      payload.XML,
		Sender:   payload.Sender,
		Receiver: payload.Receiver,
		Profile:  payload.Profile,
	})
	if err != nil {
		rec := q.fail(ctx, jobID, err.Error())
		ev := model.NewAuditEvent(model.EventSubmissionFailed, jobID, model.JobStateFailed).
			WithError(err.Error())
		if rec != nil {
			ev = ev.WithHash(rec.InvoiceHash)
		}
		q.recordAudit(ctx, ev)
		return fmt.Errorf("submit: %w", err)
	}

	rec, err := q.transition(ctx, jobID, model.JobStateSent, func(r *model.JobRecord) {
		r.TransmissionID = &transmissionID
	})
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}

	q.recordAudit(ctx, model.NewAuditEvent(model.EventInvoiceSubmitted, jobID, model.JobStateSent).
		WithHash(rec.InvoiceHash).
		WithTransmissionID(transmissionID))

	q.logger.InfoContext(ctx, "invoice submitted",
		"job_id", jobID, "transmission_id", transmissionID)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(q.pollDelay):
	}

	return q.pollStatus(ctx, jobID, transmissionID)
}

// pollStatus queries the provider once and folds the answer into the job
// record. Delivered and Failed are terminal; anything else keeps the job in
// sent. A failed poll fails the job.
func (q *Queue) pollStatus(ctx context.Context, jobID, transmissionID string) error {
	status, err := q.provider.Status(ctx, transmissionID)
	if err != nil {
		q.fail(ctx, jobID, "status error: "+err.Error())
		q.recordAudit(ctx, model.NewAuditEvent(model.EventDeliveryStatusError, jobID, model.JobStateFailed).
			WithTransmissionID(transmissionID).
			WithError(err.Error()))
		return fmt.Errorf("delivery status: %w", err)
	}

	next := model.JobStateSent
	var mutate func(*model.JobRecord)
	switch status.State {
	case model.DeliveryDelivered:
		next = model.JobStateDelivered
	case model.DeliveryFailed:
		next = model.JobStateFailed
		if status.Message != "" {
			msg := status.Message
			mutate = func(r *model.JobRecord) { r.LastError = &msg }
		}
	}

	if _, err := q.transition(ctx, jobID, next, mutate); err != nil {
		return fmt.Errorf("record delivery state: %w", err)
	}

	q.recordAudit(ctx, model.NewAuditEvent(model.EventDeliveryStatusUpdated, jobID, next).
		WithTransmissionID(transmissionID))

	q.logger.InfoContext(ctx, "delivery status updated",
		"job_id", jobID, "transmission_id", transmissionID, "state", next)
	return nil
}

// transition moves a job to next, enforcing the forward-only state graph.
// extra, when non-nil, applies additional record changes inside the same
// repository transaction.
func (q *Queue) transition(ctx context.Context, jobID string, next model.JobState, extra func(*model.JobRecord)) (*model.JobRecord, error) {
	return q.repo.UpdateJob(ctx, jobID, func(rec *model.JobRecord) error {
		if !rec.State.CanTransition(next) {
			return fmt.Errorf("illegal transition %s -> %s for job %s", rec.State, next, jobID)
		}
		rec.State = next
		if extra != nil {
			extra(rec)
		}
		return nil
	})
}

// fail moves the job to failed with the given message. Best-effort: if the
// transition itself fails it is logged, since the caller is already on an
// error path.
func (q *Queue) fail(ctx context.Context, jobID, msg string) *model.JobRecord {
	rec, err := q.transition(ctx, jobID, model.JobStateFailed, func(r *model.JobRecord) {
		r.LastError = &msg
	})
	if err != nil {
		q.logger.ErrorContext(ctx, "failed to mark job failed", "job_id", jobID, "error", err)
		return nil
	}
	return rec
}

// recordAudit writes an audit event, logging instead of propagating on
// failure so a broken audit sink never stalls dispatch.
func (q *Queue) recordAudit(ctx context.Context, event *model.AuditEvent) {
	if err := q.audit.Record(ctx, event); err != nil {
		q.logger.ErrorContext(ctx, "audit write failed",
			"job_id", event.JobID, "event_type", event.EventType, "error", err)
	}
}
