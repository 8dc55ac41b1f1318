package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewood/orgaccess/internal/domain"
)

func check(a Authorizer, subject string, rel domain.Permission, objType, objID string) bool {
	return a.Check(context.Background(), Request{
		Subject:    subject,
		Relation:   string(rel),
		ObjectType: objType,
		ObjectID:   objID,
	}).Allowed
}

func TestMemoryAdminDerivesAllOrganizationPermissions(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Assign(ctx, "alice", domain.RoleAdmin, "org1"))

	for _, p := range domain.Permissions() {
		assert.True(t, check(m, "alice", p, TypeOrganization, "org1"), "admin should hold %s", p)
	}
	assert.False(t, check(m, "bob", domain.CanViewMember, TypeOrganization, "org1"))
}

func TestMemoryMemberHoldsOnlyMemberPermissions(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Assign(ctx, "bob", domain.RoleMember, "org1"))

	assert.True(t, check(m, "bob", domain.CanViewMember, TypeOrganization, "org1"))
	assert.True(t, check(m, "bob", domain.CanAddResource, TypeOrganization, "org1"))
	assert.True(t, check(m, "bob", domain.CanViewResource, TypeOrganization, "org1"))
	assert.False(t, check(m, "bob", domain.CanAddMember, TypeOrganization, "org1"))
	assert.False(t, check(m, "bob", domain.CanDeleteMember, TypeOrganization, "org1"))
	assert.False(t, check(m, "bob", domain.CanDeleteResource, TypeOrganization, "org1"))
}

func TestMemoryUnassignRevokesDerivedPermissions(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Assign(ctx, "alice", domain.RoleAdmin, "org1"))
	require.True(t, check(m, "alice", domain.CanDeleteMember, TypeOrganization, "org1"))

	require.NoError(t, m.Unassign(ctx, "alice", domain.RoleAdmin, "org1"))
	assert.False(t, check(m, "alice", domain.CanDeleteMember, TypeOrganization, "org1"))
	assert.False(t, check(m, "alice", domain.CanViewMember, TypeOrganization, "org1"))
}

func TestMemoryResourceInheritsOrganizationRole(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.LinkResource(ctx, "res1", "org1"))
	require.NoError(t, m.Assign(ctx, "alice", domain.RoleAdmin, "org1"))
	require.NoError(t, m.Assign(ctx, "bob", domain.RoleMember, "org1"))

	assert.True(t, check(m, "alice", domain.CanDeleteResource, TypeResource, "res1"))
	assert.True(t, check(m, "alice", domain.CanViewResource, TypeResource, "res1"))
	assert.True(t, check(m, "bob", domain.CanViewResource, TypeResource, "res1"))
	assert.False(t, check(m, "bob", domain.CanDeleteResource, TypeResource, "res1"))
	assert.False(t, check(m, "carol", domain.CanViewResource, TypeResource, "res1"))
}

func TestMemoryUnlinkBreaksInheritance(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.LinkResource(ctx, "res1", "org1"))
	require.NoError(t, m.Assign(ctx, "alice", domain.RoleAdmin, "org1"))
	require.True(t, check(m, "alice", domain.CanViewResource, TypeResource, "res1"))

	require.NoError(t, m.UnlinkResource(ctx, "res1", "org1"))
	assert.False(t, check(m, "alice", domain.CanViewResource, TypeResource, "res1"))
}

func TestMemoryAssignIsIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Assign(ctx, "alice", domain.RoleMember, "org1"))
	require.NoError(t, m.Assign(ctx, "alice", domain.RoleMember, "org1"))
	assert.True(t, check(m, "alice", domain.CanViewMember, TypeOrganization, "org1"))

	// Removing an absent tuple must not error either.
	require.NoError(t, m.Unassign(ctx, "nobody", domain.RoleMember, "org1"))
}

func TestMemoryListAccessible(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Assign(ctx, "alice", domain.RoleAdmin, "org1"))
	require.NoError(t, m.Assign(ctx, "alice", domain.RoleMember, "org2"))
	require.NoError(t, m.Assign(ctx, "alice", domain.RoleMember, "org3"))
	require.NoError(t, m.Unassign(ctx, "alice", domain.RoleMember, "org3"))
	require.NoError(t, m.LinkResource(ctx, "res1", "org1"))
	require.NoError(t, m.LinkResource(ctx, "res2", "org2"))

	orgs := m.ListAccessible(ctx, "alice", string(domain.CanViewMember), TypeOrganization)
	assert.Equal(t, []string{"org1", "org2"}, orgs)

	resources := m.ListAccessible(ctx, "alice", string(domain.CanViewResource), TypeResource)
	assert.Equal(t, []string{"res1", "res2"}, resources)

	assert.Empty(t, m.ListAccessible(ctx, "bob", string(domain.CanViewMember), TypeOrganization))
}

func TestMemoryProjectManagerRoles(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Assign(ctx, "pat", domain.RoleProjectManager, "org1"))
	assert.True(t, check(m, "pat", domain.CanViewMember, TypeOrganization, "org1"))
	assert.False(t, check(m, "pat", domain.CanAddResource, TypeOrganization, "org1"))

	require.NoError(t, m.Assign(ctx, "sam", domain.RoleSeniorProjectManager, "org1"))
	assert.True(t, check(m, "sam", domain.CanAddResource, TypeOrganization, "org1"))
	assert.False(t, check(m, "sam", domain.CanDeleteMember, TypeOrganization, "org1"))
}
