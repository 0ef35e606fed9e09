// Package config loads application configuration from environment variables
// using the github.com/caarlos0/env library.
//
// Secrets (the operator API key and the OAuth2 client secret) are read only
// from the environment; they have no place in config files checked into
// source control.
package config

import (
	"fmt"
	"strings"
	"time"
)

// AppConfig is the main application configuration struct.
type AppConfig struct {
	// StorePath is the SQLite database file holding job records and payloads.
	StorePath string `env:"EINVOICE_STORE_PATH" envDefault:"einvoice.db"`

	// AuditLogPath is the append-only NDJSON audit trail.
	AuditLogPath string `env:"EINVOICE_AUDIT_LOG" envDefault:"audit.jsonl"`

	// Provider selects and configures the delivery backend.
	Provider ProviderConfig `envPrefix:"EINVOICE_PROVIDER_"`

	// Sender identifies this installation to the government gateway.
	Sender SenderConfig `envPrefix:"EINVOICE_SENDER_"`

	// Queue tunes dispatch behavior.
	Queue QueueConfig `envPrefix:"EINVOICE_QUEUE_"`
}

// ProviderKind selects which delivery backend to use.
type ProviderKind string

const (
	// ProviderMock is the in-process simulator. Default.
	ProviderMock ProviderKind = "mock"
	// ProviderGateway is the government SOAP gateway.
	ProviderGateway ProviderKind = "gateway"
	// ProviderRest is the commercial operator JSON API.
	ProviderRest ProviderKind = "rest"
)

// UnmarshalText implements encoding.TextUnmarshaler so env parsing rejects
// unknown provider kinds instead of silently falling through.
func (k *ProviderKind) UnmarshalText(text []byte) error {
	v := ProviderKind(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case ProviderMock, ProviderGateway, ProviderRest:
		*k = v
		return nil
	}
	return fmt.Errorf("invalid provider kind: %q (want mock, gateway, or rest)", v)
}

// ProviderConfig contains delivery backend configuration. APIKey and
// ClientSecret are credentials: set EINVOICE_PROVIDER_API_KEY or
// EINVOICE_PROVIDER_CLIENT_SECRET in the process environment, never in a
// file.
type ProviderConfig struct {
	Kind    ProviderKind `env:"KIND"     envDefault:"mock"`
	BaseURL string       `env:"BASE_URL" envDefault:""`

	// REST backend credentials.
	APIKey       string `env:"API_KEY"       envDefault:""`
	ClientID     string `env:"CLIENT_ID"     envDefault:""`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:""`
	TokenURL     string `env:"TOKEN_URL"     envDefault:""`

	// CertThumbprint identifies the client certificate registered with the
	// government gateway.
	CertThumbprint string `env:"CERT_THUMBPRINT" envDefault:""`
}

// SenderConfig identifies the sending party.
type SenderConfig struct {
	// EAddress is the sender's electronic address in the gateway namespace.
	EAddress string `env:"EADDRESS" envDefault:""`
	// Title is the sender organization name used when the invoice itself
	// does not carry one.
	Title string `env:"TITLE" envDefault:""`
}

// QueueConfig tunes the transmission queue.
type QueueConfig struct {
	// PollDelay is the pause between submit and the first status poll.
	PollDelay time.Duration `env:"POLL_DELAY" envDefault:"100ms"`

	// SimulatorDelay is the artificial latency of the mock provider.
	SimulatorDelay time.Duration `env:"SIMULATOR_DELAY" envDefault:"200ms"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	if strings.TrimSpace(c.StorePath) == "" {
		c.StorePath = "einvoice.db"
	}
	if strings.TrimSpace(c.AuditLogPath) == "" {
		c.AuditLogPath = "audit.jsonl"
	}
	c.Queue.Sanitize()
}

// Sanitize clamps queue tunables to sane values.
func (c *QueueConfig) Sanitize() {
	if c.PollDelay <= 0 {
		c.PollDelay = 100 * time.Millisecond
	}
	if c.SimulatorDelay < 0 {
		c.SimulatorDelay = 0
	}
}
