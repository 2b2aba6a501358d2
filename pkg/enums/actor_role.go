package enums

import "fmt"

// ActorRole represents the permission tier of an authenticated user.
type ActorRole string

const (
	ActorRoleOwner ActorRole = "owner"
	ActorRoleAdmin ActorRole = "admin"
	ActorRoleStaff ActorRole = "staff"
)

var validActorRoles = []ActorRole{
	ActorRoleOwner,
	ActorRoleAdmin,
	ActorRoleStaff,
}

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsOwner reports whether the role carries owner-level authority. Owner and
// admin are equivalent for every privileged operation.
func (a ActorRole) IsOwner() bool {
	return a == ActorRoleOwner || a == ActorRoleAdmin
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
