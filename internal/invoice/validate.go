package invoice

import (
	"fmt"
	"strings"
)

// Validate runs the EN16931 mandatory-field checks against a UBL invoice and
// returns the findings. The list is advisory: callers decide whether a
// document with findings may still be enqueued.
func Validate(xml string) []string {
	if !strings.Contains(xml, "<Invoice") && !strings.Contains(xml, "<invoice") {
		return []string{"missing UBL Invoice root element"}
	}

	inv, err := Parse(xml)
	if err != nil {
		return []string{fmt.Sprintf("failed to parse UBL: %v", err)}
	}

	var findings []string
	if inv.InvoiceNumber == "" {
		findings = append(findings, "BT-1: invoice number is mandatory")
	}
	if inv.IssueDate == "" {
		findings = append(findings, "BT-2: issue date is mandatory")
	}
	switch {
	case inv.CurrencyCode == "":
		findings = append(findings, "BT-5: currency code is mandatory")
	case len(inv.CurrencyCode) != 3:
		findings = append(findings, "BT-5: currency code must be 3 characters (ISO 4217)")
	}
	if inv.SupplierName == "" {
		findings = append(findings, "BG-4: seller name is mandatory")
	}
	if inv.CustomerName == "" {
		findings = append(findings, "BG-7: buyer name is mandatory")
	}
	if inv.PayableAmount == "" {
		findings = append(findings, "BT-115: payable amount should be present")
	}
	return findings
}
