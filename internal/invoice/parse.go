// Package invoice implements UBL field extraction and the EN16931
// mandatory-field checks, plus the content digests used for audit
// correlation and gateway payload references.
package invoice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/sergejparity/e-invoice/internal/domain/model"
)

// Parse extracts the fields the system needs from a UBL invoice document.
// Element lookup matches local names only, so the usual cbc:/cac: prefixes
// and default-namespace variants all resolve the same way.
func Parse(xml string) (*model.Invoice, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		return nil, fmt.Errorf("parse UBL document: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("UBL document has no root element")
	}

	supplierName := textAt(root, "AccountingSupplierParty", "Party", "PartyName", "Name")
	if supplierName == "" {
		supplierName = textAt(root, "AccountingSupplierParty", "Party", "PartyLegalEntity", "RegistrationName")
	}
	customerName := textAt(root, "AccountingCustomerParty", "Party", "PartyName", "Name")
	if customerName == "" {
		customerName = textAt(root, "AccountingCustomerParty", "Party", "PartyLegalEntity", "RegistrationName")
	}

	return &model.Invoice{
		InvoiceNumber: textAt(root, "ID"),
		IssueDate:     textAt(root, "IssueDate"),
		DueDate:       textAt(root, "DueDate"),
		CurrencyCode:  textAt(root, "DocumentCurrencyCode"),
		SupplierName:  supplierName,
		SupplierID:    textAt(root, "AccountingSupplierParty", "Party", "EndpointID"),
		CustomerName:  customerName,
		CustomerID:    textAt(root, "AccountingCustomerParty", "Party", "EndpointID"),
		TaxTotal:      textAt(root, "TaxTotal", "TaxAmount"),
		PayableAmount: textAt(root, "LegalMonetaryTotal", "PayableAmount"),
	}, nil
}

// textAt returns the trimmed text of the first element found by descending
// through the given local-name path, or "" when the path does not resolve.
func textAt(root *etree.Element, path ...string) string {
	el := findPath(root, path)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func findPath(node *etree.Element, path []string) *etree.Element {
	if len(path) == 0 {
		return node
	}
	for _, child := range node.ChildElements() {
		if child.Tag != path[0] {
			continue
		}
		if len(path) == 1 {
			return child
		}
		if found := findPath(child, path[1:]); found != nil {
			return found
		}
	}
	return nil
}
