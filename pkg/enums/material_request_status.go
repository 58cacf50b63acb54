package enums

import "fmt"

// MaterialRequestStatus tracks the lifecycle of a site material request.
type MaterialRequestStatus string

const (
	MaterialRequestStatusPending   MaterialRequestStatus = "PENDING"
	MaterialRequestStatusApproved  MaterialRequestStatus = "APPROVED"
	MaterialRequestStatusDeclined  MaterialRequestStatus = "DECLINED"
	MaterialRequestStatusFulfilled MaterialRequestStatus = "FULFILLED"
)

var validMaterialRequestStatuses = []MaterialRequestStatus{
	MaterialRequestStatusPending,
	MaterialRequestStatusApproved,
	MaterialRequestStatusDeclined,
	MaterialRequestStatusFulfilled,
}

// String implements fmt.Stringer.
func (m MaterialRequestStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MaterialRequestStatus.
func (m MaterialRequestStatus) IsValid() bool {
	for _, candidate := range validMaterialRequestStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaterialRequestStatus converts raw input into a MaterialRequestStatus.
func ParseMaterialRequestStatus(value string) (MaterialRequestStatus, error) {
	for _, candidate := range validMaterialRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid material request status %q", value)
}
