package enums

import "fmt"

// RFQStatus tracks the lifecycle of a request for quotation.
type RFQStatus string

const (
	RFQStatusOpen    RFQStatus = "OPEN"
	RFQStatusAwarded RFQStatus = "AWARDED"
	RFQStatusClosed  RFQStatus = "CLOSED"
)

var validRFQStatuses = []RFQStatus{
	RFQStatusOpen,
	RFQStatusAwarded,
	RFQStatusClosed,
}

// String implements fmt.Stringer.
func (r RFQStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RFQStatus.
func (r RFQStatus) IsValid() bool {
	for _, candidate := range validRFQStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRFQStatus converts raw input into an RFQStatus.
func ParseRFQStatus(value string) (RFQStatus, error) {
	for _, candidate := range validRFQStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rfq status %q", value)
}
