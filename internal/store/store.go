// Package store persists domain attribute records. No authorization state is
// kept here; that belongs to the relationship store.
package store

import (
	"context"
	"errors"

	"github.com/bramblewood/orgaccess/internal/domain"
)

var ErrNotFound = errors.New("record not found")

// Stores return lists in a stable iteration order: insertion order for the
// memory backing, created_at order for postgres. Handlers rely on that order
// when filtering by permission.

type OrganizationStore interface {
	CreateOrganization(ctx context.Context, org *domain.Organization) error
	GetOrganization(ctx context.Context, id string) (*domain.Organization, error)
	ListOrganizations(ctx context.Context) ([]domain.Organization, error)
	UpdateOrganization(ctx context.Context, org *domain.Organization) error
	DeleteOrganization(ctx context.Context, id string) error
}

type ResourceStore interface {
	CreateResource(ctx context.Context, res *domain.Resource) error
	GetResource(ctx context.Context, id string) (*domain.Resource, error)
	ListResources(ctx context.Context) ([]domain.Resource, error)
	UpdateResource(ctx context.Context, res *domain.Resource) error
	DeleteResource(ctx context.Context, id string) error
}

type ProjectManagerStore interface {
	CreateProjectManager(ctx context.Context, pm *domain.ProjectManager) error
	GetProjectManager(ctx context.Context, id string) (*domain.ProjectManager, error)
	ListProjectManagers(ctx context.Context) ([]domain.ProjectManager, error)
	UpdateProjectManager(ctx context.Context, pm *domain.ProjectManager) error
}

type RoleStore interface {
	CreateRole(ctx context.Context, role *domain.RoleDefinition) error
	GetRole(ctx context.Context, id string) (*domain.RoleDefinition, error)
	ListRoles(ctx context.Context) ([]domain.RoleDefinition, error)
	UpdateRole(ctx context.Context, role *domain.RoleDefinition) error
}

type PermissionStore interface {
	CreatePermission(ctx context.Context, perm *domain.PermissionDefinition) error
	GetPermission(ctx context.Context, id string) (*domain.PermissionDefinition, error)
	ListPermissions(ctx context.Context) ([]domain.PermissionDefinition, error)
	UpdatePermission(ctx context.Context, perm *domain.PermissionDefinition) error
}
