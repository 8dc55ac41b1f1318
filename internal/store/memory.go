package store

import (
	"context"
	"sync"

	"github.com/bramblewood/orgaccess/internal/domain"
)

// Memory backs every store interface with process-local maps. Iteration order
// is insertion order, kept in a side slice per entity.
type Memory struct {
	mu sync.RWMutex

	orgs     map[string]*domain.Organization
	orgOrder []string

	resources     map[string]*domain.Resource
	resourceOrder []string

	pms     map[string]*domain.ProjectManager
	pmOrder []string

	roles     map[string]*domain.RoleDefinition
	roleOrder []string

	perms     map[string]*domain.PermissionDefinition
	permOrder []string
}

func NewMemory() *Memory {
	return &Memory{
		orgs:      make(map[string]*domain.Organization),
		resources: make(map[string]*domain.Resource),
		pms:       make(map[string]*domain.ProjectManager),
		roles:     make(map[string]*domain.RoleDefinition),
		perms:     make(map[string]*domain.PermissionDefinition),
	}
}

func (m *Memory) CreateOrganization(_ context.Context, org *domain.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *org
	m.orgs[org.ID] = &cp
	m.orgOrder = append(m.orgOrder, org.ID)
	return nil
}

func (m *Memory) GetOrganization(_ context.Context, id string) (*domain.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *org
	return &cp, nil
}

func (m *Memory) ListOrganizations(_ context.Context) ([]domain.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Organization, 0, len(m.orgOrder))
	for _, id := range m.orgOrder {
		if org, ok := m.orgs[id]; ok {
			out = append(out, *org)
		}
	}
	return out, nil
}

func (m *Memory) UpdateOrganization(_ context.Context, org *domain.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orgs[org.ID]; !ok {
		return ErrNotFound
	}
	cp := *org
	m.orgs[org.ID] = &cp
	return nil
}

func (m *Memory) DeleteOrganization(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orgs[id]; !ok {
		return ErrNotFound
	}
	delete(m.orgs, id)
	m.orgOrder = removeID(m.orgOrder, id)
	return nil
}

func (m *Memory) CreateResource(_ context.Context, res *domain.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *res
	m.resources[res.ID] = &cp
	m.resourceOrder = append(m.resourceOrder, res.ID)
	return nil
}

func (m *Memory) GetResource(_ context.Context, id string) (*domain.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.resources[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (m *Memory) ListResources(_ context.Context) ([]domain.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Resource, 0, len(m.resourceOrder))
	for _, id := range m.resourceOrder {
		if res, ok := m.resources[id]; ok {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (m *Memory) UpdateResource(_ context.Context, res *domain.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resources[res.ID]; !ok {
		return ErrNotFound
	}
	cp := *res
	m.resources[res.ID] = &cp
	return nil
}

func (m *Memory) DeleteResource(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resources[id]; !ok {
		return ErrNotFound
	}
	delete(m.resources, id)
	m.resourceOrder = removeID(m.resourceOrder, id)
	return nil
}

func (m *Memory) CreateProjectManager(_ context.Context, pm *domain.ProjectManager) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pm
	m.pms[pm.ID] = &cp
	m.pmOrder = append(m.pmOrder, pm.ID)
	return nil
}

func (m *Memory) GetProjectManager(_ context.Context, id string) (*domain.ProjectManager, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pm, ok := m.pms[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *pm
	return &cp, nil
}

func (m *Memory) ListProjectManagers(_ context.Context) ([]domain.ProjectManager, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ProjectManager, 0, len(m.pmOrder))
	for _, id := range m.pmOrder {
		if pm, ok := m.pms[id]; ok {
			out = append(out, *pm)
		}
	}
	return out, nil
}

func (m *Memory) UpdateProjectManager(_ context.Context, pm *domain.ProjectManager) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pms[pm.ID]; !ok {
		return ErrNotFound
	}
	cp := *pm
	m.pms[pm.ID] = &cp
	return nil
}

func (m *Memory) CreateRole(_ context.Context, role *domain.RoleDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *role
	m.roles[role.ID] = &cp
	m.roleOrder = append(m.roleOrder, role.ID)
	return nil
}

func (m *Memory) GetRole(_ context.Context, id string) (*domain.RoleDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.roles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *role
	return &cp, nil
}

func (m *Memory) ListRoles(_ context.Context) ([]domain.RoleDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.RoleDefinition, 0, len(m.roleOrder))
	for _, id := range m.roleOrder {
		if role, ok := m.roles[id]; ok {
			out = append(out, *role)
		}
	}
	return out, nil
}

func (m *Memory) UpdateRole(_ context.Context, role *domain.RoleDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[role.ID]; !ok {
		return ErrNotFound
	}
	cp := *role
	m.roles[role.ID] = &cp
	return nil
}

func (m *Memory) CreatePermission(_ context.Context, perm *domain.PermissionDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *perm
	m.perms[perm.ID] = &cp
	m.permOrder = append(m.permOrder, perm.ID)
	return nil
}

func (m *Memory) GetPermission(_ context.Context, id string) (*domain.PermissionDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	perm, ok := m.perms[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *perm
	return &cp, nil
}

func (m *Memory) ListPermissions(_ context.Context) ([]domain.PermissionDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.PermissionDefinition, 0, len(m.permOrder))
	for _, id := range m.permOrder {
		if perm, ok := m.perms[id]; ok {
			out = append(out, *perm)
		}
	}
	return out, nil
}

func (m *Memory) UpdatePermission(_ context.Context, perm *domain.PermissionDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.perms[perm.ID]; !ok {
		return ErrNotFound
	}
	cp := *perm
	m.perms[perm.ID] = &cp
	return nil
}

func removeID(order []string, id string) []string {
	out := order[:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
