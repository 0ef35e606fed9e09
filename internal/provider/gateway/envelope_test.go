package gateway

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergejparity/e-invoice/internal/domain/model"
)

func testEnvelope() *Envelope {
	return &Envelope{
		Title:             "E-invoice: INV-1",
		IssueDate:         "2026-03-01",
		SenderOrgName:     "Supplier SIA",
		SenderEAddress:    "_DEFAULT@90000000000",
		SenderRefNumber:   "ref-abc",
		RecipientEAddress: "_DEFAULT@90000000001",
		FileName:          "invoice.xml",
		MimeType:          "application/xml",
		FileSize:          1234,
		DigestBase64:      "qpX1FcFmiA==",
	}
}

func TestEnvelopeElement(t *testing.T) {
	root := testEnvelope().Element()

	assert.Equal(t, "Envelope", root.Tag)
	assert.Equal(t, envelopeNamespace, root.SelectAttrValue("xmlns", ""))

	senderDoc := root.SelectElement("SenderDocument")
	require.NotNil(t, senderDoc)
	assert.Equal(t, "SenderSection", senderDoc.SelectAttrValue("Id", ""))

	general := senderDoc.FindElement("DocumentMetadata/GeneralMetadata")
	require.NotNil(t, general)
	assert.Equal(t, "E-invoice: INV-1", general.SelectElement("Title").Text())
	assert.Equal(t, "2026-03-01", general.SelectElement("Date").Text())

	kind := general.SelectElement("DocumentKind")
	require.NotNil(t, kind)
	assert.Equal(t, "EINVOICE", kind.SelectElement("DocumentKindCode").Text())
	assert.Equal(t, "1.0", kind.SelectElement("DocumentKindVersion").Text())

	orgTitle := general.FindElement("Authors/AuthorEntry/Institution/Title")
	require.NotNil(t, orgTitle)
	assert.Equal(t, "Supplier SIA", orgTitle.Text())

	file := senderDoc.FindElement("DocumentMetadata/PayloadReference/File")
	require.NotNil(t, file)
	assert.Equal(t, "application/xml", file.SelectElement("MimeType").Text())
	assert.Equal(t, "1234", file.SelectElement("Size").Text())
	assert.Equal(t, "invoice.xml", file.SelectElement("Name").Text())
	assert.Equal(t, "false", file.SelectElement("Compressed").Text())

	content := file.SelectElement("Content")
	require.NotNil(t, content)
	assert.Equal(t, payloadContentID, content.SelectElement("ContentReference").Text())
	assert.Equal(t, sha256DigestMethod,
		content.SelectElement("DigestMethod").SelectAttrValue("Algorithm", ""))
	assert.Equal(t, "qpX1FcFmiA==", content.SelectElement("DigestValue").Text())

	transport := senderDoc.SelectElement("SenderTransportMetadata")
	require.NotNil(t, transport)
	assert.Equal(t, "_DEFAULT@90000000000", transport.SelectElement("SenderE-Address").Text())
	assert.Equal(t, "ref-abc", transport.SelectElement("SenderRefNumber").Text())
	assert.Equal(t, "_DEFAULT@90000000001",
		transport.FindElement("Recipients/RecipientEntry/RecipientE-Address").Text())
	assert.Equal(t, "true", transport.SelectElement("NotifySenderOnDelivery").Text())
	assert.Equal(t, "normal", transport.SelectElement("Priority").Text())
}

func TestEnvelopeXMLRoundTrips(t *testing.T) {
	out, err := testEnvelope().XML()
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(out))
	require.NotNil(t, doc.Root())
	assert.Equal(t, "Envelope", doc.Root().Tag)
}

func TestMapNativeStatus(t *testing.T) {
	tests := []struct {
		native   NativeStatus
		expected model.DeliveryState
	}{
		{StatusNew, model.DeliveryInFlight},
		{StatusSent, model.DeliveryInFlight},
		{StatusDeliveryDelayed, model.DeliveryInFlight},
		{StatusAccepted, model.DeliveryDelivered},
		{StatusRecipientAccepted, model.DeliveryDelivered},
		{StatusRejected, model.DeliveryFailed},
		{StatusRecipientRejected, model.DeliveryFailed},
	}
	for _, tt := range tests {
		t.Run(string(tt.native), func(t *testing.T) {
			state, err := MapNativeStatus(tt.native)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, state)
		})
	}

	t.Run("unknown status is an error", func(t *testing.T) {
		_, err := MapNativeStatus("Lost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Lost")
	})
}
