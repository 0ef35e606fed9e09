// Package model defines the core data types shared across the e-invoice
// transmission system.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobState represents the local dispatch phase of a transmission job.
// It is a superset of DeliveryState: queued and in_flight cover phases that
// exist before any backend vocabulary applies.
type JobState string

const (
	// JobStateQueued indicates the job is persisted and waiting for dispatch.
	JobStateQueued JobState = "queued"
	// JobStateInFlight indicates dispatch has started but submit has not completed.
	JobStateInFlight JobState = "in_flight"
	// JobStateSent indicates the backend accepted the submission and assigned a transmission id.
	JobStateSent JobState = "sent"
	// JobStateDelivered indicates the backend confirmed delivery. Terminal.
	JobStateDelivered JobState = "delivered"
	// JobStateFailed indicates submission or delivery failed. Terminal.
	JobStateFailed JobState = "failed"
)

// ErrJobNotFound is returned when a job id is unknown to the store.
var ErrJobNotFound = errors.New("job not found")

// UnmarshalText implements encoding.TextUnmarshaler for JobState.
func (s *JobState) UnmarshalText(text []byte) error {
	v := JobState(strings.ToLower(strings.TrimSpace(string(text))))
	if v.Valid() {
		*s = v
		return nil
	}
	return fmt.Errorf("invalid JobState: %q", v)
}

// Valid returns true if the JobState is one of the known values.
func (s JobState) Valid() bool {
	return s == JobStateQueued || s == JobStateInFlight || s == JobStateSent ||
		s == JobStateDelivered || s == JobStateFailed
}

// Terminal returns true for states that end the job's lifecycle.
func (s JobState) Terminal() bool {
	return s == JobStateDelivered || s == JobStateFailed
}

// CanTransition reports whether a job may move from s to next. The graph is
// strictly forward: queued -> in_flight -> (sent -> (delivered | failed)) | failed.
// A sent -> sent transition is permitted so a non-terminal poll result can
// refresh the record without moving it backwards.
func (s JobState) CanTransition(next JobState) bool {
	switch s {
	case JobStateQueued:
		return next == JobStateInFlight
	case JobStateInFlight:
		return next == JobStateSent || next == JobStateFailed
	case JobStateSent:
		return next == JobStateSent || next == JobStateDelivered || next == JobStateFailed
	default:
		return false
	}
}

// JobRecord is the durable status record for one submission attempt.
// InvoiceHash and CreatedAt are immutable after creation; TransmissionID is
// set exactly once, when the backend accepts the submission.
type JobRecord struct {
	JobID          string    `json:"job_id"`
	State          JobState  `json:"state"`
	LastError      *string   `json:"last_error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	TransmissionID *string   `json:"transmission_id,omitempty"`
	InvoiceHash    string    `json:"invoice_hash"`
}

// JobPayload holds the raw submission inputs, stored separately from the
// JobRecord under the same key so large payloads can be evicted or archived
// independently of the lightweight status record.
type JobPayload struct {
	XML      string `json:"xml"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Profile  string `json:"profile"`
}

// Validate checks the payload carries everything a provider needs.
func (p *JobPayload) Validate() error {
	if strings.TrimSpace(p.XML) == "" {
		return errors.New("invoice XML is required")
	}
	if strings.TrimSpace(p.Sender) == "" {
		return errors.New("sender is required")
	}
	if strings.TrimSpace(p.Receiver) == "" {
		return errors.New("receiver is required")
	}
	return nil
}
