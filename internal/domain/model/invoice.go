package model

// Invoice holds the UBL fields the system extracts from an invoice document.
// Optional fields are empty strings when the document does not carry them.
type Invoice struct {
	InvoiceNumber string `json:"invoice_number"`
	IssueDate     string `json:"issue_date"`
	DueDate       string `json:"due_date,omitempty"`
	CurrencyCode  string `json:"currency_code"`
	SupplierName  string `json:"supplier_name"`
	SupplierID    string `json:"supplier_id,omitempty"`
	CustomerName  string `json:"customer_name"`
	CustomerID    string `json:"customer_id,omitempty"`
	TaxTotal      string `json:"tax_total,omitempty"`
	PayableAmount string `json:"payable_amount,omitempty"`
}
