// Package provider hosts the delivery backend implementations. Each backend
// satisfies core.Provider; the gateway and rest subpackages carry the
// protocol-specific clients while this package holds the local simulator.
package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sergejparity/e-invoice/internal/core"
	"github.com/sergejparity/e-invoice/internal/domain/model"
)

const defaultSimulatorDelay = 200 * time.Millisecond

// Simulator is a local delivery backend for offline development and tests.
// It accepts any submission after an artificial delay and always reports
// the transmission as delivered.
type Simulator struct {
	delay  time.Duration
	logger *slog.Logger
}

// SimulatorOptions configures a Simulator.
type SimulatorOptions struct {
	// Delay emulates network latency on submit. Defaults to 200ms.
	Delay time.Duration

	Logger *slog.Logger
}

// NewSimulator creates a simulator backend.
func NewSimulator(opts SimulatorOptions) *Simulator {
	if opts.Delay <= 0 {
		opts.Delay = defaultSimulatorDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Simulator{delay: opts.Delay, logger: opts.Logger}
}

// Submit fabricates a tracking id after the configured delay.
func (s *Simulator) Submit(ctx context.Context, req core.SubmitRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.delay):
	}

	id := uuid.NewString()
	s.logger.InfoContext(ctx, "simulated invoice submission",
		"transmission_id", id, "sender", req.Sender, "receiver", req.Receiver)
	return id, nil
}

// Status always reports Delivered for any transmission id.
func (s *Simulator) Status(ctx context.Context, transmissionID string) (*model.DeliveryStatus, error) {
	return &model.DeliveryStatus{
		TransmissionID: transmissionID,
		State:          model.DeliveryDelivered,
		Message:        "simulated delivery",
	}, nil
}
