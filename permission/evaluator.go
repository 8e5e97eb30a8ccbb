package permission

import "github.com/MrEthical07/goSession/identity"

// Canonical role names. The convenience predicates below are bound to these.
const (
	RoleAdministrator          = "ADMINISTRATOR"
	RoleAssistantAdministrator = "ASSISTANT_ADMINISTRATOR"
	RoleCustomer               = "CUSTOMER"
)

// Roles lists the canonical role names.
func Roles() []string {
	return []string{RoleAdministrator, RoleAssistantAdministrator, RoleCustomer}
}

// HasPermission reports whether id's role grants an operation named exactly op.
func HasPermission(id *identity.Identity, op string) bool {
	if id == nil || op == "" {
		return false
	}
	for _, p := range id.Role.Permissions {
		if p.Operation.Name == op {
			return true
		}
	}
	return false
}

// IsInRole reports whether id's role is named exactly roleName.
func IsInRole(id *identity.Identity, roleName string) bool {
	if id == nil || roleName == "" || id.Role.Name == "" {
		return false
	}
	return id.Role.Name == roleName
}

// IsAdmin is IsInRole(id, RoleAdministrator).
func IsAdmin(id *identity.Identity) bool {
	return IsInRole(id, RoleAdministrator)
}

// IsAssistantAdmin is IsInRole(id, RoleAssistantAdministrator).
func IsAssistantAdmin(id *identity.Identity) bool {
	return IsInRole(id, RoleAssistantAdministrator)
}

// IsCustomer is IsInRole(id, RoleCustomer).
func IsCustomer(id *identity.Identity) bool {
	return IsInRole(id, RoleCustomer)
}
