package enums

import "fmt"

// ResourceType classifies a BOQ item component row.
type ResourceType string

const (
	ResourceTypeMaterial  ResourceType = "MATERIAL"
	ResourceTypeLabor     ResourceType = "LABOR"
	ResourceTypeEquipment ResourceType = "EQUIPMENT"
)

var validResourceTypes = []ResourceType{
	ResourceTypeMaterial,
	ResourceTypeLabor,
	ResourceTypeEquipment,
}

// String implements fmt.Stringer.
func (r ResourceType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ResourceType.
func (r ResourceType) IsValid() bool {
	for _, candidate := range validResourceTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseResourceType converts raw input into a ResourceType.
func ParseResourceType(value string) (ResourceType, error) {
	for _, candidate := range validResourceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid resource type %q", value)
}
