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

type PermissionHandler struct {
	Store store.PermissionStore
	Authz authz.Authorizer
}

func NewPermissionHandler(s store.PermissionStore, a authz.Authorizer) *PermissionHandler {
	return &PermissionHandler{Store: s, Authz: a}
}

type createPermissionRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ResourceType string `json:"resource_type"`
}

type updatePermissionRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	ResourceType *string `json:"resource_type"`
}

type permissionCheckRequest struct {
	UserID       string `json:"user_id"`
	Permission   string `json:"permission"`
	ResourceID   string `json:"resource_id"`
	ResourceType string `json:"resource_type"`
}

func (h *PermissionHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	perms, err := h.Store.ListPermissions(r.Context())
	if err != nil {
		writeStoreError(w, err, "permission")
		return
	}
	if perms == nil {
		perms = []domain.PermissionDefinition{}
	}
	httpx.WriteJSON(w, http.StatusOK, perms)
}

func (h *PermissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	perm, err := h.Store.GetPermission(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "permission")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, perm)
}

func (h *PermissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	var req createPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.ResourceType == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name and resource_type are required")
		return
	}
	perm := &domain.PermissionDefinition{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Description:  req.Description,
		ResourceType: req.ResourceType,
	}
	if err := h.Store.CreatePermission(r.Context(), perm); err != nil {
		writeStoreError(w, err, "permission")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, perm)
}

func (h *PermissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	var req updatePermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ctx := r.Context()
	perm, err := h.Store.GetPermission(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "permission")
		return
	}
	if req.Name != nil {
		perm.Name = *req.Name
	}
	if req.Description != nil {
		perm.Description = *req.Description
	}
	if req.ResourceType != nil {
		perm.ResourceType = *req.ResourceType
	}
	if err := h.Store.UpdatePermission(ctx, perm); err != nil {
		writeStoreError(w, err, "permission")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, perm)
}

// Check answers "does user X hold permission P on object O". Callers may ask
// about themselves freely; asking about someone else requires visibility into
// the target organization.
func (h *PermissionHandler) Check(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req permissionCheckRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.ResourceID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "user_id and resource_id are required")
		return
	}
	if req.ResourceType == "" {
		req.ResourceType = authz.TypeOrganization
	}
	if req.ResourceType != authz.TypeOrganization && req.ResourceType != authz.TypeResource {
		httpx.WriteError(w, http.StatusBadRequest, "resource_type must be organization or resource")
		return
	}
	perm, err := domain.ParsePermission(req.Permission)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if req.UserID != caller && req.ResourceType == authz.TypeOrganization {
		if !h.Authz.Check(ctx, authz.Request{
			Subject:    caller,
			Relation:   string(domain.CanViewMember),
			ObjectType: authz.TypeOrganization,
			ObjectID:   req.ResourceID,
		}).Allowed {
			httpx.WriteError(w, http.StatusForbidden, "can only check your own permissions")
			return
		}
	}

	allowed := h.Authz.Check(ctx, authz.Request{
		Subject:    req.UserID,
		Relation:   string(perm),
		ObjectType: req.ResourceType,
		ObjectID:   req.ResourceID,
	}).Allowed

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":       req.UserID,
		"permission":    perm,
		"resource_id":   req.ResourceID,
		"resource_type": req.ResourceType,
		"allowed":       allowed,
	})
}

// UserPermissions reports every named permission a user holds on one
// organization.
func (h *PermissionHandler) UserPermissions(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "userID")
	orgID := r.URL.Query().Get("organization_id")
	if orgID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "organization_id query parameter is required")
		return
	}

	ctx := r.Context()
	if userID != caller {
		if !h.Authz.Check(ctx, authz.Request{
			Subject:    caller,
			Relation:   string(domain.CanViewMember),
			ObjectType: authz.TypeOrganization,
			ObjectID:   orgID,
		}).Allowed {
			httpx.WriteError(w, http.StatusForbidden, "can only check your own permissions")
			return
		}
	}

	perms := make(map[string]bool, len(domain.Permissions()))
	for _, p := range domain.Permissions() {
		perms[string(p)] = h.Authz.Check(ctx, authz.Request{
			Subject:    userID,
			Relation:   string(p),
			ObjectType: authz.TypeOrganization,
			ObjectID:   orgID,
		}).Allowed
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":         userID,
		"organization_id": orgID,
		"permissions":     perms,
	})
}
