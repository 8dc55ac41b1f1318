package authz

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bramblewood/orgaccess/internal/domain"
)

// rolePermissions is the fixed rewrite rule set the demo model assumes the
// relationship store enforces. Memory mirrors it so tests and dependency-free
// dev runs see the same derivations as a live store.
var rolePermissions = map[domain.Role][]domain.Permission{
	domain.RoleAdmin: {
		domain.CanViewMember, domain.CanAddMember, domain.CanDeleteMember,
		domain.CanAddResource, domain.CanViewResource, domain.CanDeleteResource,
	},
	domain.RoleMember: {
		domain.CanViewMember, domain.CanAddResource, domain.CanViewResource,
	},
	domain.RoleProjectManager: {
		domain.CanViewMember, domain.CanViewResource,
	},
	domain.RoleSeniorProjectManager: {
		domain.CanViewMember, domain.CanViewResource, domain.CanAddResource,
	},
}

// Memory is an in-process Authorizer holding the relation graph directly.
// Permission derivation follows rolePermissions, with resource permissions
// inherited through the owning organization's containment tuple.
type Memory struct {
	mu sync.RWMutex
	// object -> relation -> set(subject ref)
	tuples map[string]map[string]map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{tuples: make(map[string]map[string]map[string]struct{})}
}

func (m *Memory) put(subjectRef, relation, object string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rels, ok := m.tuples[object]
	if !ok {
		rels = make(map[string]map[string]struct{})
		m.tuples[object] = rels
	}
	subjects, ok := rels[relation]
	if !ok {
		subjects = make(map[string]struct{})
		rels[relation] = subjects
	}
	subjects[subjectRef] = struct{}{}
}

func (m *Memory) remove(subjectRef, relation, object string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rels, ok := m.tuples[object]; ok {
		if subjects, ok := rels[relation]; ok {
			delete(subjects, subjectRef)
		}
	}
}

func (m *Memory) has(subjectRef, relation, object string) bool {
	if subjects, ok := m.tuples[object][relation]; ok {
		_, ok := subjects[subjectRef]
		return ok
	}
	return false
}

func (m *Memory) Assign(_ context.Context, subject string, role domain.Role, orgID string) error {
	m.put(userRef(subject), string(role), orgRef(orgID))
	return nil
}

func (m *Memory) Unassign(_ context.Context, subject string, role domain.Role, orgID string) error {
	m.remove(userRef(subject), string(role), orgRef(orgID))
	return nil
}

func (m *Memory) LinkResource(_ context.Context, resourceID, orgID string) error {
	m.put(orgRef(orgID), RelationOrganization, resourceRef(resourceID))
	return nil
}

func (m *Memory) UnlinkResource(_ context.Context, resourceID, orgID string) error {
	m.remove(orgRef(orgID), RelationOrganization, resourceRef(resourceID))
	return nil
}

func (m *Memory) Check(_ context.Context, req Request) Decision {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.allowed(userRef(req.Subject), req.Relation, req.ObjectType, req.ObjectID) {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, Reason: "policy_denied"}
}

// allowed expects m.mu held for reading.
func (m *Memory) allowed(subjectRef, relation, objectType, objectID string) bool {
	object := objectRef(objectType, objectID)
	if m.has(subjectRef, relation, object) {
		return true
	}
	switch objectType {
	case TypeOrganization:
		// A permission is held if any role deriving it is held.
		for role, perms := range rolePermissions {
			for _, p := range perms {
				if string(p) == relation && m.has(subjectRef, string(role), object) {
					return true
				}
			}
		}
	case TypeResource:
		// Resource permissions inherit from the owning organization.
		for owner := range m.tuples[object][RelationOrganization] {
			orgID := strings.TrimPrefix(owner, TypeOrganization+":")
			if m.allowed(subjectRef, relation, TypeOrganization, orgID) {
				return true
			}
		}
	}
	return false
}

func (m *Memory) ListAccessible(_ context.Context, subject, relation, objectType string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := objectType + ":"
	var ids []string
	for object := range m.tuples {
		if !strings.HasPrefix(object, prefix) {
			continue
		}
		id := strings.TrimPrefix(object, prefix)
		if m.allowed(userRef(subject), relation, objectType, id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (m *Memory) Healthy(context.Context) bool { return true }
