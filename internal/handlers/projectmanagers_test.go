package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewood/orgaccess/internal/domain"
	"github.com/bramblewood/orgaccess/internal/httpx"
)

func (e *env) createPM(t *testing.T, userID, name, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/project-managers/?user_id="+userID, map[string]string{
		"user_id": userID,
		"name":    name,
		"email":   email,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	pm := decode[domain.ProjectManager](t, w)
	require.NotEmpty(t, pm.ID)
	return pm.ID
}

func TestProjectManagerCRUD(t *testing.T) {
	e := newEnv(t)
	pmID := e.createPM(t, "u3", "Pat", "pat@example.com")

	w := e.do(t, http.MethodGet, "/project-managers/"+pmID+"?user_id=anyone", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pat", decode[domain.ProjectManager](t, w).Name)

	w = e.do(t, http.MethodGet, "/project-managers/no-such-pm?user_id=anyone", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, "/project-managers/?user_id=u3", map[string]string{"name": "incomplete"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectManagerUpdateOwnerOnly(t *testing.T) {
	e := newEnv(t)
	pmID := e.createPM(t, "u3", "Pat", "pat@example.com")

	w := e.do(t, http.MethodPut, "/project-managers/"+pmID+"?user_id=u3", map[string]string{
		"email": "pat@corp.example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	pm := decode[domain.ProjectManager](t, w)
	assert.Equal(t, "Pat", pm.Name)
	assert.Equal(t, "pat@corp.example.com", pm.Email)

	w = e.do(t, http.MethodPut, "/project-managers/"+pmID+"?user_id=u1", map[string]string{"name": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "can only update your own profile", decode[httpx.APIError](t, w).Error)
}

func TestProjectManagerAssignmentFlow(t *testing.T) {
	e := newEnv(t)
	orgID := e.createOrg(t, "u1", "acme")
	pmID := e.createPM(t, "u3", "Pat", "pat@example.com")

	w := e.do(t, http.MethodPost, "/project-managers/"+pmID+"/assign?user_id=u1", map[string]string{
		"organization_id": orgID,
		"role":            "project_manager",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	// The project_manager role carries member visibility onto the org.
	w = e.do(t, http.MethodGet, "/organizations/"+orgID+"?user_id=u3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	// But not resource creation.
	w = e.do(t, http.MethodPost, "/resources/?user_id=u3", map[string]string{
		"name": "pm-db", "resource_type": "database", "organization_id": orgID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodDelete, "/project-managers/"+pmID+"/assign/"+orgID+"?user_id=u1&role=project_manager", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodGet, "/organizations/"+orgID+"?user_id=u3", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSeniorProjectManagerCanAddResources(t *testing.T) {
	e := newEnv(t)
	orgID := e.createOrg(t, "u1", "acme")
	pmID := e.createPM(t, "u4", "Sam", "sam@example.com")

	w := e.do(t, http.MethodPost, "/project-managers/"+pmID+"/assign?user_id=u1", map[string]string{
		"organization_id": orgID,
		"role":            "senior_project_manager",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/resources/?user_id=u4", map[string]string{
		"name": "spm-db", "resource_type": "database", "organization_id": orgID,
	})
	assert.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
}

func TestProjectManagerAssignValidation(t *testing.T) {
	e := newEnv(t)
	orgID := e.createOrg(t, "u1", "acme")
	pmID := e.createPM(t, "u3", "Pat", "pat@example.com")

	t.Run("membership role rejected", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/project-managers/"+pmID+"/assign?user_id=u1", map[string]string{
			"organization_id": orgID,
			"role":            "admin",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("outsider denied", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/project-managers/"+pmID+"/assign?user_id=stranger", map[string]string{
			"organization_id": orgID,
			"role":            "project_manager",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown profile", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/project-managers/no-such-pm/assign?user_id=u1", map[string]string{
			"organization_id": orgID,
			"role":            "project_manager",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProjectManagerListScoping(t *testing.T) {
	e := newEnv(t)
	orgID := e.createOrg(t, "u1", "acme")
	e.createPM(t, "u3", "Pat", "pat@example.com")

	w := e.do(t, http.MethodGet, "/project-managers/?user_id=anyone", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.ProjectManager](t, w), 1)

	w = e.do(t, http.MethodGet, "/project-managers/?user_id=u1&organization_id="+orgID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/project-managers/?user_id=stranger&organization_id="+orgID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
