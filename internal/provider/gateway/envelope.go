package gateway

import (
	"strconv"

	"github.com/beevik/etree"
)

// Namespaces and constants fixed by the gateway's unified-interface schema.
const (
	envelopeNamespace  = "http://ivis.eps.gov.lv/XMLSchemas/100001/DIV/v1-0"
	sha256DigestMethod = "http://www.w3.org/2001/04/xmlenc#sha256"

	documentKindCode    = "EINVOICE"
	documentKindVersion = "1.0"
	documentKindName    = "E-invoice"

	payloadContentID = "cid:invoice-content"
)

// Envelope carries the metadata the gateway requires around a UBL payload:
// document identification, the sending organization, a payload reference
// with content digest, and the transport addressing block.
type Envelope struct {
	Title           string
	IssueDate       string
	SenderOrgName   string
	SenderEAddress  string
	SenderRefNumber string
	RecipientEAddress string

	FileName     string
	MimeType     string
	FileSize     int
	DigestBase64 string
}

// Element builds the envelope as an XML element tree.
func (e *Envelope) Element() *etree.Element {
	root := etree.NewElement("Envelope")
	root.CreateAttr("xmlns", envelopeNamespace)

	senderDoc := root.CreateElement("SenderDocument")
	senderDoc.CreateAttr("Id", "SenderSection")

	meta := senderDoc.CreateElement("DocumentMetadata")

	general := meta.CreateElement("GeneralMetadata")
	general.CreateElement("Title").SetText(e.Title)
	general.CreateElement("Date").SetText(e.IssueDate)
	kind := general.CreateElement("DocumentKind")
	kind.CreateElement("DocumentKindCode").SetText(documentKindCode)
	kind.CreateElement("DocumentKindVersion").SetText(documentKindVersion)
	kind.CreateElement("DocumentKindName").SetText(documentKindName)
	authors := general.CreateElement("Authors")
	entry := authors.CreateElement("AuthorEntry")
	institution := entry.CreateElement("Institution")
	institution.CreateElement("Title").SetText(e.SenderOrgName)

	payloadRef := meta.CreateElement("PayloadReference")
	file := payloadRef.CreateElement("File")
	file.CreateElement("MimeType").SetText(e.MimeType)
	file.CreateElement("Size").SetText(strconv.Itoa(e.FileSize))
	file.CreateElement("Name").SetText(e.FileName)
	content := file.CreateElement("Content")
	content.CreateElement("ContentReference").SetText(payloadContentID)
	digestMethod := content.CreateElement("DigestMethod")
	digestMethod.CreateAttr("Algorithm", sha256DigestMethod)
	content.CreateElement("DigestValue").SetText(e.DigestBase64)
	file.CreateElement("Compressed").SetText("false")

	transport := senderDoc.CreateElement("SenderTransportMetadata")
	transport.CreateElement("SenderE-Address").SetText(e.SenderEAddress)
	transport.CreateElement("SenderRefNumber").SetText(e.SenderRefNumber)
	recipients := transport.CreateElement("Recipients")
	recipientEntry := recipients.CreateElement("RecipientEntry")
	recipientEntry.CreateElement("RecipientE-Address").SetText(e.RecipientEAddress)
	transport.CreateElement("NotifySenderOnDelivery").SetText("true")
	transport.CreateElement("Priority").SetText("normal")

	return root
}

// XML serializes the envelope to an indented XML string.
func (e *Envelope) XML() (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(e.Element())
	doc.Indent(2)
	return doc.WriteToString()
}
