package authz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewood/orgaccess/internal/domain"
)

const testStoreID = "01GXSA8YR785C4FYS3C0RTG7B1"

// respond writes a JSON body with the content type the sdk's response parser
// requires; without it the body is sniffed as text/plain and rejected.
func respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newFGA(t *testing.T, handler http.HandlerFunc) *OpenFGA {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	a, err := NewOpenFGA(OpenFGAConfig{
		APIURL:  server.URL,
		StoreID: testStoreID,
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return a
}

func TestOpenFGACheckAllowed(t *testing.T) {
	var gotBody map[string]any
	a := newFGA(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/check"), "path = %s", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		respond(w, map[string]any{"allowed": true})
	})

	d := a.Check(context.Background(), Request{
		Subject:    "alice",
		Relation:   string(domain.CanViewMember),
		ObjectType: TypeOrganization,
		ObjectID:   "org1",
	})
	assert.True(t, d.Allowed)

	tupleKey := gotBody["tuple_key"].(map[string]any)
	assert.Equal(t, "user:alice", tupleKey["user"])
	assert.Equal(t, "can_view_member", tupleKey["relation"])
	assert.Equal(t, "organization:org1", tupleKey["object"])
}

func TestOpenFGACheckDenied(t *testing.T) {
	a := newFGA(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{"allowed": false})
	})

	d := a.Check(context.Background(), Request{
		Subject: "alice", Relation: "can_view_member",
		ObjectType: TypeOrganization, ObjectID: "org1",
	})
	assert.False(t, d.Allowed)
	assert.Equal(t, "policy_denied", d.Reason)
}

// A store that cannot answer is a denial, never an error.
func TestOpenFGACheckFailsClosedOnServerError(t *testing.T) {
	a := newFGA(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	d := a.Check(context.Background(), Request{
		Subject: "alice", Relation: "can_view_member",
		ObjectType: TypeOrganization, ObjectID: "org1",
	})
	assert.False(t, d.Allowed)
	assert.Equal(t, "store_unreachable", d.Reason)
}

func TestOpenFGACheckFailsClosedOnTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		respond(w, map[string]any{"allowed": true})
	}))
	t.Cleanup(server.Close)

	a, err := NewOpenFGA(OpenFGAConfig{
		APIURL:  server.URL,
		StoreID: testStoreID,
		Timeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	d := a.Check(context.Background(), Request{
		Subject: "alice", Relation: "can_view_member",
		ObjectType: TypeOrganization, ObjectID: "org1",
	})
	assert.False(t, d.Allowed)
}

func TestOpenFGACheckFailsClosedOnUnreachableHost(t *testing.T) {
	a, err := NewOpenFGA(OpenFGAConfig{
		APIURL:  "http://127.0.0.1:1",
		StoreID: testStoreID,
		Timeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)

	d := a.Check(context.Background(), Request{
		Subject: "alice", Relation: "admin",
		ObjectType: TypeOrganization, ObjectID: "org1",
	})
	assert.False(t, d.Allowed)
}

func TestOpenFGAAssignWritesTuple(t *testing.T) {
	var gotBody map[string]any
	a := newFGA(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/write"), "path = %s", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		respond(w, map[string]any{})
	})

	require.NoError(t, a.Assign(context.Background(), "alice", domain.RoleAdmin, "org1"))

	writes := gotBody["writes"].(map[string]any)["tuple_keys"].([]any)
	require.Len(t, writes, 1)
	tuple := writes[0].(map[string]any)
	assert.Equal(t, "user:alice", tuple["user"])
	assert.Equal(t, "admin", tuple["relation"])
	assert.Equal(t, "organization:org1", tuple["object"])
}

func TestOpenFGAWriteErrorSurfaces(t *testing.T) {
	a := newFGA(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	assert.Error(t, a.Assign(context.Background(), "alice", domain.RoleAdmin, "org1"))
}

func TestOpenFGALinkResource(t *testing.T) {
	var gotBody map[string]any
	a := newFGA(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		respond(w, map[string]any{})
	})

	require.NoError(t, a.LinkResource(context.Background(), "res1", "org1"))

	writes := gotBody["writes"].(map[string]any)["tuple_keys"].([]any)
	tuple := writes[0].(map[string]any)
	assert.Equal(t, "organization:org1", tuple["user"])
	assert.Equal(t, "organization", tuple["relation"])
	assert.Equal(t, "resource:res1", tuple["object"])
}

func TestOpenFGAUnassignDeletesTuple(t *testing.T) {
	var gotBody map[string]any
	a := newFGA(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		respond(w, map[string]any{})
	})

	require.NoError(t, a.Unassign(context.Background(), "alice", domain.RoleMember, "org1"))

	deletes := gotBody["deletes"].(map[string]any)["tuple_keys"].([]any)
	require.Len(t, deletes, 1)
	tuple := deletes[0].(map[string]any)
	assert.Equal(t, "user:alice", tuple["user"])
	assert.Equal(t, "member", tuple["relation"])
}

func TestOpenFGAListAccessibleStripsPrefixAndDedupes(t *testing.T) {
	a := newFGA(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/list-objects"), "path = %s", r.URL.Path)
		respond(w, map[string]any{
			"objects": []string{"resource:r1", "resource:r2", "resource:r1"},
		})
	})

	ids := a.ListAccessible(context.Background(), "alice", "can_view_resource", TypeResource)
	assert.Equal(t, []string{"r1", "r2"}, ids)
}

func TestOpenFGAListAccessibleDegradesToEmpty(t *testing.T) {
	a := newFGA(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	assert.Empty(t, a.ListAccessible(context.Background(), "alice", "can_view_resource", TypeResource))
}

func TestOpenFGAHealthy(t *testing.T) {
	a := newFGA(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{"authorization_models": []any{}})
	})
	assert.True(t, a.Healthy(context.Background()))

	down, err := NewOpenFGA(OpenFGAConfig{
		APIURL:  "http://127.0.0.1:1",
		StoreID: testStoreID,
		Timeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.False(t, down.Healthy(context.Background()))
}
