// Package rest implements the commercial e-invoicing operator backend: a
// JSON API authenticated with either a static API key or an OAuth2
// client-credentials token.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sergejparity/e-invoice/internal/core"
	"github.com/sergejparity/e-invoice/internal/domain/model"
)

// ErrNoCredentials is returned when neither an API key nor an OAuth2 client
// secret is available for the operator API.
var ErrNoCredentials = errors.New("credential retrieval failed: no API key or OAuth2 client secret configured")

const maxErrorBodyBytes = 4 * 1024

// Client talks to the operator's REST API. When OAuth2 is configured the
// access token is fetched once on first use, cached for the process
// lifetime, and shared across all dispatch goroutines.
type Client struct {
	baseURL string
	apiKey  string
	oauth   *clientcredentials.Config
	http    *http.Client
	logger  *slog.Logger

	// token caches the OAuth2 access token. Guarded by mu; refreshed under
	// the write lock with a double check so concurrent submits fetch the
	// token only once.
	mu    sync.RWMutex
	token string
}

// Options configures a rest Client. Exactly one of APIKey or
// ClientID+ClientSecret is normally set; with neither, requests fail with
// ErrNoCredentials at call time.
type Options struct {
	BaseURL string

	// APIKey enables static bearer-token authentication.
	APIKey string

	// ClientID, ClientSecret and TokenURL enable the OAuth2
	// client-credentials flow.
	ClientID     string
	ClientSecret string
	TokenURL     string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates an operator API client.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var oauthCfg *clientcredentials.Config
	if opts.APIKey == "" && opts.ClientSecret != "" {
		oauthCfg = &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		oauth:   oauthCfg,
		http:    hc,
		logger:  logger,
	}
}

type submitRequest struct {
	XML          string `json:"xml"`
	SenderID     string `json:"sender_id"`
	ReceiverID   string `json:"receiver_id"`
	DocumentType string `json:"document_type"`
}

type submitResponse struct {
	TransmissionID string `json:"transmission_id"`
	Status         string `json:"status,omitempty"`
}

type statusResponse struct {
	TransmissionID string `json:"transmission_id"`
	State          string `json:"state"`
	Message        string `json:"message,omitempty"`
}

// Submit posts the invoice as JSON and returns the operator-assigned
// transmission id.
func (c *Client) Submit(ctx context.Context, req core.SubmitRequest) (string, error) {
	auth, err := c.authHeader(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(submitRequest{
		XML:          req.XML,
		SenderID:     req.Sender,
		ReceiverID:   req.Receiver,
		DocumentType: req.Profile,
	})
	if err != nil {
		return "", fmt.Errorf("encode submit request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/peppol/send", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build submit request: %w", err)
	}
	httpReq.Header.Set("Authorization", auth)
	httpReq.Header.Set("Content-Type", "application/json")

	var out submitResponse
	if err := c.do(httpReq, "operator submit", &out); err != nil {
		return "", err
	}

	c.logger.InfoContext(ctx, "invoice submitted to operator",
		"transmission_id", out.TransmissionID)
	return out.TransmissionID, nil
}

// Status fetches the delivery state for a transmission id and maps the
// operator's free-text state onto the shared vocabulary.
func (c *Client) Status(ctx context.Context, transmissionID string) (*model.DeliveryStatus, error) {
	auth, err := c.authHeader(ctx)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/peppol/status/"+transmissionID, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	httpReq.Header.Set("Authorization", auth)

	var out statusResponse
	if err := c.do(httpReq, "operator status query", &out); err != nil {
		return nil, err
	}

	return &model.DeliveryStatus{
		TransmissionID: out.TransmissionID,
		State:          MapState(out.State),
		Message:        out.Message,
	}, nil
}

// MapState case-folds the operator's free-text state and maps it onto the
// shared DeliveryState machine. Unrecognized values are Pending.
func MapState(s string) model.DeliveryState {
	switch strings.ToLower(s) {
	case "delivered", "accepted":
		return model.DeliveryDelivered
	case "failed", "rejected":
		return model.DeliveryFailed
	case "in_transit", "sending":
		return model.DeliveryInFlight
	default:
		return model.DeliveryPending
	}
}

// authHeader resolves the Authorization header value. OAuth2 tokens are
// cached until process restart; there is no expiry-driven refresh.
func (c *Client) authHeader(ctx context.Context) (string, error) {
	if c.apiKey != "" {
		return "Bearer " + c.apiKey, nil
	}
	if c.oauth == nil {
		return "", ErrNoCredentials
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		return "Bearer " + token, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have refreshed while we waited for the lock.
	if c.token != "" {
		return "Bearer " + c.token, nil
	}

	tok, err := c.oauth.Token(context.WithValue(ctx, oauth2.HTTPClient, c.http))
	if err != nil {
		return "", fmt.Errorf("request OAuth2 token: %w", err)
	}
	c.token = tok.AccessToken
	return "Bearer " + c.token, nil
}

// do executes the request, maps non-success responses to descriptive errors
// carrying status and body, and decodes a JSON success body into out.
func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("%s failed: %s - %s", op, resp.Status, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", op, err)
	}
	return nil
}
