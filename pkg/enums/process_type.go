package enums

import "fmt"

// ProcessType names an approval-routed procurement process.
type ProcessType string

const (
	ProcessTypePO      ProcessType = "PO"
	ProcessTypeRFQ     ProcessType = "RFQ"
	ProcessTypePayment ProcessType = "PAYMENT"
)

var validProcessTypes = []ProcessType{
	ProcessTypePO,
	ProcessTypeRFQ,
	ProcessTypePayment,
}

// String implements fmt.Stringer.
func (p ProcessType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProcessType.
func (p ProcessType) IsValid() bool {
	for _, candidate := range validProcessTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProcessType converts raw input into a ProcessType.
func ParseProcessType(value string) (ProcessType, error) {
	for _, candidate := range validProcessTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid process type %q", value)
}
