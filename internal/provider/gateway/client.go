// Package gateway implements the government unified-interface backend: a
// SOAP 1.2 client that wraps UBL invoices in the vendor envelope and polls
// the notification list for delivery status.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/sergejparity/e-invoice/internal/core"
	"github.com/sergejparity/e-invoice/internal/domain/model"
	"github.com/sergejparity/e-invoice/internal/invoice"
)

const (
	soapNamespace       = "http://schemas.xmlsoap.org/soap/envelope/"
	addressingNamespace = "http://www.w3.org/2005/08/addressing"
	serviceNamespace    = "http://vraa.gov.lv/xmlschemas/div/uui/2011/11"

	sendMessageAction         = "http://vraa.gov.lv/div/uui/2011/11/UnifiedServiceInterface/SendMessage"
	getNotificationListAction = "http://vraa.gov.lv/div/uui/2011/11/UnifiedServiceInterface/GetNotificationList"

	// notificationPollLimit caps one GetNotificationList page.
	notificationPollLimit = 100

	maxErrorBodyBytes = 4 * 1024
)

// Client talks to the gateway's UnifiedService endpoint. Authentication is
// client-certificate based and handled at the TLS layer; the thumbprint is
// carried for the transport configuration, and the outbound envelope itself
// is not message-signed.
type Client struct {
	baseURL        string
	certThumbprint string
	senderEAddress string
	senderTitle    string
	http           *http.Client
	logger         *slog.Logger
}

// Options configures a gateway Client.
type Options struct {
	// BaseURL is the full URL of the UnifiedService endpoint.
	BaseURL string
	// CertThumbprint identifies the client certificate used for transport auth.
	CertThumbprint string
	// SenderEAddress is the sender's e-address identifier.
	SenderEAddress string
	// SenderTitle names the sending organization when the invoice does not.
	SenderTitle string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a gateway client. The default HTTP client uses a 60s
// timeout; SOAP round trips on this service are slow.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:        opts.BaseURL,
		certThumbprint: opts.CertThumbprint,
		senderEAddress: opts.SenderEAddress,
		senderTitle:    opts.SenderTitle,
		http:           hc,
		logger:         logger,
	}
}

// Submit wraps the invoice in the gateway envelope and posts it through the
// SendMessage operation. The returned transmission id is the generated
// sender reference number, which the notification list echoes as the
// message id on later polls.
func (c *Client) Submit(ctx context.Context, req core.SubmitRequest) (string, error) {
	inv, err := invoice.Parse(req.XML)
	if err != nil {
		return "", fmt.Errorf("parse UBL invoice: %w", err)
	}

	orgName := inv.SupplierName
	if orgName == "" {
		orgName = c.senderTitle
	}
	if orgName == "" {
		orgName = "E-Invoice Sender"
	}

	senderRef := "ref-" + uuid.NewString()
	env := &Envelope{
		Title:             "E-invoice: " + inv.InvoiceNumber,
		IssueDate:         inv.IssueDate,
		SenderOrgName:     orgName,
		SenderEAddress:    c.senderEAddress,
		SenderRefNumber:   senderRef,
		RecipientEAddress: req.Receiver,
		FileName:          "invoice.xml",
		MimeType:          "application/xml",
		FileSize:          len(req.XML),
		DigestBase64:      invoice.DigestBase64([]byte(req.XML)),
	}

	body, err := c.soapRequest(sendMessageAction, "SendMessageInput", env.Element())
	if err != nil {
		return "", err
	}
	if _, err := c.post(ctx, sendMessageAction, body); err != nil {
		return "", fmt.Errorf("gateway submit: %w", err)
	}

	c.logger.InfoContext(ctx, "invoice submitted to gateway",
		"message_id", senderRef, "receiver", req.Receiver)
	return senderRef, nil
}

// Status polls the GetNotificationList operation and matches notifications
// by message id. A transmission without a matching notification is still
// in flight; an unparseable response or unknown native status is a query
// error, never a delivery verdict.
func (c *Client) Status(ctx context.Context, transmissionID string) (*model.DeliveryStatus, error) {
	input := etree.NewElement("GetNotificationListInput")
	input.CreateAttr("xmlns", serviceNamespace)
	input.CreateElement("MaxResultCount").SetText(fmt.Sprintf("%d", notificationPollLimit))

	body, err := c.soapRequest(getNotificationListAction, "", input)
	if err != nil {
		return nil, err
	}
	respBody, err := c.post(ctx, getNotificationListAction, body)
	if err != nil {
		return nil, fmt.Errorf("gateway notification query: %w", err)
	}

	status, err := matchNotification(respBody, transmissionID)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "polled gateway notifications",
		"message_id", transmissionID, "state", status.State)
	return status, nil
}

// soapRequest wraps a service payload in a SOAP 1.2 envelope with
// WS-Addressing Action/To headers. When wrapper is non-empty the payload is
// nested inside a wrapper element in the service namespace.
func (c *Client) soapRequest(action, wrapper string, payload *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	envelope := doc.CreateElement("s:Envelope")
	envelope.CreateAttr("xmlns:s", soapNamespace)
	envelope.CreateAttr("xmlns:a", addressingNamespace)

	header := envelope.CreateElement("s:Header")
	actionEl := header.CreateElement("a:Action")
	actionEl.CreateAttr("s:mustUnderstand", "1")
	actionEl.SetText(action)
	toEl := header.CreateElement("a:To")
	toEl.CreateAttr("s:mustUnderstand", "1")
	toEl.SetText(c.baseURL)

	bodyEl := envelope.CreateElement("s:Body")
	if wrapper != "" {
		wrapperEl := bodyEl.CreateElement(wrapper)
		wrapperEl.CreateAttr("xmlns", serviceNamespace)
		wrapperEl.AddChild(payload)
	} else {
		bodyEl.AddChild(payload)
	}

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serialize SOAP request: %w", err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, action, body string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", action)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send SOAP request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("unexpected response %s - %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return out, nil
}

// matchNotification scans a GetNotificationList response for the entry whose
// MessageId equals transmissionID and maps its native status.
func matchNotification(respBody []byte, transmissionID string) (*model.DeliveryStatus, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(respBody); err != nil {
		return nil, fmt.Errorf("parse notification response: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("notification response has no root element")
	}

	for _, notification := range findAll(root, "Notification") {
		if childText(notification, "MessageId") != transmissionID {
			continue
		}
		native := NativeStatus(childText(notification, "MessageStatus"))
		state, err := MapNativeStatus(native)
		if err != nil {
			return nil, err
		}
		return &model.DeliveryStatus{
			TransmissionID: transmissionID,
			State:          state,
			Message:        childText(notification, "StatusText"),
		}, nil
	}

	// No notification yet: the message is still moving through the gateway.
	return &model.DeliveryStatus{
		TransmissionID: transmissionID,
		State:          model.DeliveryInFlight,
		Message:        "no notification received yet",
	}, nil
}

func findAll(node *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range node.ChildElements() {
		if child.Tag == tag {
			out = append(out, child)
		}
		out = append(out, findAll(child, tag)...)
	}
	return out
}

func childText(node *etree.Element, tag string) string {
	for _, child := range node.ChildElements() {
		if child.Tag == tag {
			return strings.TrimSpace(child.Text())
		}
	}
	return ""
}
