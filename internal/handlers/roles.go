package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bramblewood/orgaccess/internal/authz"
	"github.com/bramblewood/orgaccess/internal/domain"
	"github.com/bramblewood/orgaccess/internal/httpx"
	"github.com/bramblewood/orgaccess/internal/store"
)

// RoleHandler serves the role catalog plus the assignment endpoints that map
// onto relationship tuples. The catalog itself is descriptive data; only
// assign/unassign touch the relationship store.
type RoleHandler struct {
	Store store.RoleStore
	Authz authz.Authorizer
}

func NewRoleHandler(s store.RoleStore, a authz.Authorizer) *RoleHandler {
	return &RoleHandler{Store: s, Authz: a}
}

type createRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type updateRoleRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
}

type roleAssignment struct {
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id"`
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	roles, err := h.Store.ListRoles(r.Context())
	if err != nil {
		writeStoreError(w, err, "role")
		return
	}
	if roles == nil {
		roles = []domain.RoleDefinition{}
	}
	httpx.WriteJSON(w, http.StatusOK, roles)
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	role, err := h.Store.GetRole(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	role := &domain.RoleDefinition{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	if err := h.Store.CreateRole(r.Context(), role); err != nil {
		writeStoreError(w, err, "role")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, role)
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	var req updateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ctx := r.Context()
	role, err := h.Store.GetRole(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "role")
		return
	}
	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.Permissions != nil {
		role.Permissions = *req.Permissions
	}
	if err := h.Store.UpdateRole(ctx, role); err != nil {
		writeStoreError(w, err, "role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Assign(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req roleAssignment
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OrganizationID == "" || req.UserID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "user_id and organization_id are required")
		return
	}
	role, err := domain.ParseRole(req.Role)
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
	if err := h.Authz.Assign(ctx, req.UserID, role, req.OrganizationID); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to assign role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "role " + string(role) + " assigned to user " + req.UserID})
}

func (h *RoleHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req roleAssignment
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OrganizationID == "" || req.UserID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "user_id and organization_id are required")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if !h.Authz.Check(ctx, authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanDeleteMember),
		ObjectType: authz.TypeOrganization,
		ObjectID:   req.OrganizationID,
	}).Allowed {
		deny(w)
		return
	}
	if err := h.Authz.Unassign(ctx, req.UserID, role, req.OrganizationID); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to remove role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "role " + string(role) + " removed from user " + req.UserID})
}
