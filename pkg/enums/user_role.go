package enums

import "fmt"

// UserRole represents a back-office permissions role.
type UserRole string

const (
	UserRoleAdmin            UserRole = "admin"
	UserRoleProjectManager   UserRole = "project_manager"
	UserRoleProcurementStaff UserRole = "procurement_staff"
	UserRoleSiteEngineer     UserRole = "site_engineer"
	UserRoleFinance          UserRole = "finance"
	UserRoleGeneralManager   UserRole = "general_manager"
	UserRoleWarehouse        UserRole = "warehouse"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleProjectManager,
	UserRoleProcurementStaff,
	UserRoleSiteEngineer,
	UserRoleFinance,
	UserRoleGeneralManager,
	UserRoleWarehouse,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
