package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergejparity/e-invoice/internal/core"
	"github.com/sergejparity/e-invoice/internal/domain/model"
)

const testInvoiceXML = `<Invoice>
  <ID>INV-7</ID>
  <IssueDate>2026-03-01</IssueDate>
  <DocumentCurrencyCode>EUR</DocumentCurrencyCode>
  <AccountingSupplierParty><Party><PartyName><Name>Supplier SIA</Name></PartyName></Party></AccountingSupplierParty>
  <AccountingCustomerParty><Party><PartyName><Name>Customer AS</Name></PartyName></Party></AccountingCustomerParty>
</Invoice>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:        srv.URL,
		CertThumbprint: "AA:BB",
		SenderEAddress: "_DEFAULT@90000000000",
		SenderTitle:    "Fallback Org",
	})
}

func TestClientSubmit(t *testing.T) {
	var captured []byte
	var contentType, soapAction string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		soapAction = r.Header.Get("SOAPAction")
		captured, _ = io.ReadAll(r.Body)
		_, _ = fmt.Fprint(w, `<Envelope><Body><SendMessageOutput/></Body></Envelope>`)
	})

	id, err := client.Submit(context.Background(), core.SubmitRequest{
		XML:      testInvoiceXML,
		Sender:   "_DEFAULT@90000000000",
		Receiver: "_DEFAULT@90000000001",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "ref-"), "transmission id is the sender reference")

	assert.Contains(t, contentType, "application/soap+xml")
	assert.Equal(t, sendMessageAction, soapAction)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(captured))

	action := doc.FindElement("//Action")
	require.NotNil(t, action)
	assert.Equal(t, sendMessageAction, action.Text())

	title := doc.FindElement("//GeneralMetadata/Title")
	require.NotNil(t, title)
	assert.Equal(t, "E-invoice: INV-7", title.Text())

	org := doc.FindElement("//Institution/Title")
	require.NotNil(t, org)
	assert.Equal(t, "Supplier SIA", org.Text(), "organization name comes from the invoice")

	ref := doc.FindElement("//SenderRefNumber")
	require.NotNil(t, ref)
	assert.Equal(t, id, ref.Text())

	recipient := doc.FindElement("//RecipientE-Address")
	require.NotNil(t, recipient)
	assert.Equal(t, "_DEFAULT@90000000001", recipient.Text())
}

func TestClientSubmitMalformedInvoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("malformed invoice must not reach the gateway")
	})

	_, err := client.Submit(context.Background(), core.SubmitRequest{XML: "<Invoice><ID>broken"})
	require.Error(t, err)
}

func TestClientSubmitServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	})

	_, err := client.Submit(context.Background(), core.SubmitRequest{
		XML:      testInvoiceXML,
		Receiver: "_DEFAULT@90000000001",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "internal failure")
}

func notificationListResponse(entries ...string) string {
	return `<Envelope><Body><GetNotificationListOutput><Notifications>` +
		strings.Join(entries, "") +
		`</Notifications></GetNotificationListOutput></Body></Envelope>`
}

func notificationEntry(messageID string, status NativeStatus, text string) string {
	return fmt.Sprintf(
		`<Notification><MessageId>%s</MessageId><MessageStatus>%s</MessageStatus><StatusText>%s</StatusText></Notification>`,
		messageID, status, text)
}

func TestClientStatus(t *testing.T) {
	tests := []struct {
		name            string
		response        string
		expectedState   model.DeliveryState
		expectedMessage string
	}{
		{
			name: "matched accepted notification",
			response: notificationListResponse(
				notificationEntry("ref-other", StatusRejected, "wrong entry"),
				notificationEntry("ref-1", StatusRecipientAccepted, "recipient accepted"),
			),
			expectedState:   model.DeliveryDelivered,
			expectedMessage: "recipient accepted",
		},
		{
			name: "matched rejected notification",
			response: notificationListResponse(
				notificationEntry("ref-1", StatusRejected, "mailbox unknown"),
			),
			expectedState:   model.DeliveryFailed,
			expectedMessage: "mailbox unknown",
		},
		{
			name: "matched delayed notification stays in flight",
			response: notificationListResponse(
				notificationEntry("ref-1", StatusDeliveryDelayed, "delayed"),
			),
			expectedState: model.DeliveryInFlight,
		},
		{
			name:            "no matching notification",
			response:        notificationListResponse(),
			expectedState:   model.DeliveryInFlight,
			expectedMessage: "no notification received yet",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, getNotificationListAction, r.Header.Get("SOAPAction"))
				_, _ = fmt.Fprint(w, tt.response)
			})

			status, err := client.Status(context.Background(), "ref-1")
			require.NoError(t, err)
			assert.Equal(t, "ref-1", status.TransmissionID)
			assert.Equal(t, tt.expectedState, status.State)
			if tt.expectedMessage != "" {
				assert.Equal(t, tt.expectedMessage, status.Message)
			}
		})
	}
}

func TestClientStatusUnknownNativeStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, notificationListResponse(
			notificationEntry("ref-1", "Teleported", ""),
		))
	})

	_, err := client.Status(context.Background(), "ref-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Teleported")
}

func TestClientStatusUnparseableResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "not xml at all <")
	})

	_, err := client.Status(context.Background(), "ref-1")
	require.Error(t, err)
}
