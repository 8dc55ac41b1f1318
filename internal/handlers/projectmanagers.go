package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bramblewood/orgaccess/internal/authz"
	"github.com/bramblewood/orgaccess/internal/domain"
	"github.com/bramblewood/orgaccess/internal/httpx"
	"github.com/bramblewood/orgaccess/internal/store"
)

type ProjectManagerHandler struct {
	Store store.ProjectManagerStore
	Authz authz.Authorizer
}

func NewProjectManagerHandler(s store.ProjectManagerStore, a authz.Authorizer) *ProjectManagerHandler {
	return &ProjectManagerHandler{Store: s, Authz: a}
}

type createProjectManagerRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type updateProjectManagerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type projectManagerAssignment struct {
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

func (h *ProjectManagerHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	// When scoped to an organization the caller must be able to see its
	// members; the profile list itself holds no organization data.
	if orgID := r.URL.Query().Get("organization_id"); orgID != "" {
		if !h.Authz.Check(ctx, authz.Request{
			Subject:    caller,
			Relation:   string(domain.CanViewMember),
			ObjectType: authz.TypeOrganization,
			ObjectID:   orgID,
		}).Allowed {
			deny(w)
			return
		}
	}

	pms, err := h.Store.ListProjectManagers(ctx)
	if err != nil {
		writeStoreError(w, err, "project manager")
		return
	}
	if pms == nil {
		pms = []domain.ProjectManager{}
	}
	httpx.WriteJSON(w, http.StatusOK, pms)
}

func (h *ProjectManagerHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	pm, err := h.Store.GetProjectManager(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "project manager")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pm)
}

func (h *ProjectManagerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	var req createProjectManagerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.Name == "" || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "user_id, name and email are required")
		return
	}
	pm := &domain.ProjectManager{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.CreateProjectManager(r.Context(), pm); err != nil {
		writeStoreError(w, err, "project manager")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, pm)
}

// Update is restricted to the profile owner.
func (h *ProjectManagerHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	pm, err := h.Store.GetProjectManager(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "project manager")
		return
	}
	if pm.UserID != caller {
		httpx.WriteError(w, http.StatusForbidden, "can only update your own profile")
		return
	}

	var req updateProjectManagerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name != nil {
		pm.Name = *req.Name
	}
	if req.Email != nil {
		pm.Email = *req.Email
	}
	if err := h.Store.UpdateProjectManager(ctx, pm); err != nil {
		writeStoreError(w, err, "project manager")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pm)
}

func (h *ProjectManagerHandler) Assign(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req projectManagerAssignment
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OrganizationID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "organization_id is required")
		return
	}
	role, err := domain.ParseProjectManagerRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if !h.Authz.Check(ctx, authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanAddMember),
		ObjectType: authz.TypeOrganization,
		ObjectID:   req.OrganizationID,
	}).Allowed {
		deny(w)
		return
	}

	pm, err := h.Store.GetProjectManager(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "project manager")
		return
	}
	if err := h.Authz.Assign(ctx, pm.UserID, role, req.OrganizationID); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to assign project manager")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "project manager assigned as " + string(role)})
}

func (h *ProjectManagerHandler) RemoveAssignment(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "orgID")
	role, err := domain.ParseProjectManagerRole(r.URL.Query().Get("role"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if !h.Authz.Check(ctx, authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanDeleteMember),
		ObjectType: authz.TypeOrganization,
		ObjectID:   orgID,
	}).Allowed {
		deny(w)
		return
	}

	pm, err := h.Store.GetProjectManager(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "project manager")
		return
	}
	if err := h.Authz.Unassign(ctx, pm.UserID, role, orgID); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to remove project manager")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "project manager removed from " + string(role)})
}
