package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bramblewood/orgaccess/internal/authz"
	"github.com/bramblewood/orgaccess/internal/domain"
	"github.com/bramblewood/orgaccess/internal/server"
	"github.com/bramblewood/orgaccess/internal/store"
)

type env struct {
	router http.Handler
	store  *store.Memory
	authz  *authz.Memory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWith(t, authz.NewMemory())
}

func newEnvWith(t *testing.T, a authz.Authorizer) *env {
	t.Helper()
	mem := store.NewMemory()
	router := server.BuildRouter(server.Deps{
		Organizations:   mem,
		Resources:       mem,
		ProjectManagers: mem,
		Roles:           mem,
		Permissions:     mem,
		Authz:           a,
	}, server.Options{})
	e := &env{router: router, store: mem}
	if m, ok := a.(*authz.Memory); ok {
		e.authz = m
	}
	return e
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

// createOrg makes an organization as userID and returns its id; the creator
// holds the admin role afterwards.
func (e *env) createOrg(t *testing.T, userID, name string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/organizations/?user_id="+userID, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	org := decode[domain.Organization](t, w)
	require.NotEmpty(t, org.ID)
	return org.ID
}

func (e *env) createResource(t *testing.T, userID, orgID, name string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/resources/?user_id="+userID, map[string]string{
		"name":            name,
		"resource_type":   "database",
		"organization_id": orgID,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	res := decode[domain.Resource](t, w)
	require.NotEmpty(t, res.ID)
	return res.ID
}

// brokenAuthorizer wraps a working authorizer but fails every tuple write, to
// exercise the compensation paths.
type brokenAuthorizer struct {
	*authz.Memory
}

var errStoreDown = errors.New("relationship store unreachable")

func (b *brokenAuthorizer) Assign(context.Context, string, domain.Role, string) error {
	return errStoreDown
}

func (b *brokenAuthorizer) LinkResource(context.Context, string, string) error {
	return errStoreDown
}
