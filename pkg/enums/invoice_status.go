package enums

import "fmt"

// InvoiceStatus tracks a supplier invoice from receipt to payment.
type InvoiceStatus string

const (
	InvoiceStatusReceived InvoiceStatus = "RECEIVED"
	InvoiceStatusMatched  InvoiceStatus = "MATCHED"
	InvoiceStatusDisputed InvoiceStatus = "DISPUTED"
	InvoiceStatusApproved InvoiceStatus = "APPROVED"
	InvoiceStatusPaid     InvoiceStatus = "PAID"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusReceived,
	InvoiceStatusMatched,
	InvoiceStatusDisputed,
	InvoiceStatusApproved,
	InvoiceStatusPaid,
}

// String implements fmt.Stringer.
func (i InvoiceStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InvoiceStatus.
func (i InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInvoiceStatus converts raw input into an InvoiceStatus.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	for _, candidate := range validInvoiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice status %q", value)
}
