package domain

import "fmt"

// Role is the closed set of relations a user can hold on an organization.
// Invalid values are rejected at the request boundary, before any store or
// relationship-store call.
type Role string

const (
	RoleAdmin                Role = "admin"
	RoleMember               Role = "member"
	RoleProjectManager       Role = "project_manager"
	RoleSeniorProjectManager Role = "senior_project_manager"
)

// ParseRole accepts the membership roles assignable through the members API.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMember:
		return Role(s), nil
	}
	return "", fmt.Errorf("role must be %q or %q, got %q", RoleAdmin, RoleMember, s)
}

// ParseProjectManagerRole accepts the project-manager assignment roles.
func ParseProjectManagerRole(s string) (Role, error) {
	switch Role(s) {
	case RoleProjectManager, RoleSeniorProjectManager:
		return Role(s), nil
	}
	return "", fmt.Errorf("role must be %q or %q, got %q", RoleProjectManager, RoleSeniorProjectManager, s)
}

// Permission is the closed set of named capabilities the relationship store
// derives from stored relations.
type Permission string

const (
	CanViewMember     Permission = "can_view_member"
	CanAddMember      Permission = "can_add_member"
	CanDeleteMember   Permission = "can_delete_member"
	CanAddResource    Permission = "can_add_resource"
	CanViewResource   Permission = "can_view_resource"
	CanDeleteResource Permission = "can_delete_resource"
)

// Permissions lists every named permission, in a stable order.
func Permissions() []Permission {
	return []Permission{
		CanViewMember,
		CanAddMember,
		CanDeleteMember,
		CanAddResource,
		CanViewResource,
		CanDeleteResource,
	}
}

func ParsePermission(s string) (Permission, error) {
	for _, p := range Permissions() {
		if Permission(s) == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown permission %q", s)
}
