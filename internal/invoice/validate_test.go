package invoice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCompleteInvoice(t *testing.T) {
	assert.Empty(t, Validate(sampleUBL))
}

func TestValidateMissingRoot(t *testing.T) {
	findings := Validate(`<CreditNote><ID>CN-1</ID></CreditNote>`)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "Invoice root")
}

func TestValidateMalformed(t *testing.T) {
	findings := Validate("<Invoice><ID>broken")
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "failed to parse")
}

func TestValidateFindings(t *testing.T) {
	tests := []struct {
		name     string
		xml      string
		expected []string
	}{
		{
			name: "missing invoice number",
			xml: `<Invoice><IssueDate>2026-01-01</IssueDate><DocumentCurrencyCode>EUR</DocumentCurrencyCode>
				<AccountingSupplierParty><Party><PartyName><Name>S</Name></PartyName></Party></AccountingSupplierParty>
				<AccountingCustomerParty><Party><PartyName><Name>C</Name></PartyName></Party></AccountingCustomerParty>
				<LegalMonetaryTotal><PayableAmount>1.00</PayableAmount></LegalMonetaryTotal></Invoice>`,
			expected: []string{"BT-1"},
		},
		{
			name:     "empty invoice collects every finding",
			xml:      `<Invoice></Invoice>`,
			expected: []string{"BT-1", "BT-2", "BT-5", "BG-4", "BG-7", "BT-115"},
		},
		{
			name: "bad currency length",
			xml: `<Invoice><ID>1</ID><IssueDate>2026-01-01</IssueDate><DocumentCurrencyCode>EURO</DocumentCurrencyCode>
				<AccountingSupplierParty><Party><PartyName><Name>S</Name></PartyName></Party></AccountingSupplierParty>
				<AccountingCustomerParty><Party><PartyName><Name>C</Name></PartyName></Party></AccountingCustomerParty>
				<LegalMonetaryTotal><PayableAmount>1.00</PayableAmount></LegalMonetaryTotal></Invoice>`,
			expected: []string{"BT-5"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := Validate(tt.xml)
			require.Len(t, findings, len(tt.expected))
			for i, code := range tt.expected {
				assert.True(t, strings.HasPrefix(findings[i], code),
					"finding %d should carry %s, got %q", i, code, findings[i])
			}
		})
	}
}
