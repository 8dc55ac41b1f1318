package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bramblewood/orgaccess/internal/authz"
	"github.com/bramblewood/orgaccess/internal/domain"
	"github.com/bramblewood/orgaccess/internal/httpx"
	"github.com/bramblewood/orgaccess/internal/store"
)

type ResourceHandler struct {
	Store store.ResourceStore
	Authz authz.Authorizer
}

func NewResourceHandler(s store.ResourceStore, a authz.Authorizer) *ResourceHandler {
	return &ResourceHandler{Store: s, Authz: a}
}

type createResourceRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	ResourceType   string `json:"resource_type"`
	OrganizationID string `json:"organization_id"`
}

type updateResourceRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	ResourceType *string `json:"resource_type"`
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	orgFilter := r.URL.Query().Get("organization_id")

	accessible := make(map[string]struct{})
	for _, id := range h.Authz.ListAccessible(ctx, caller, string(domain.CanViewResource), authz.TypeResource) {
		accessible[id] = struct{}{}
	}

	resources, err := h.Store.ListResources(ctx)
	if err != nil {
		writeStoreError(w, err, "resource")
		return
	}
	visible := make([]domain.Resource, 0, len(resources))
	for _, res := range resources {
		if orgFilter != "" && res.OrganizationID != orgFilter {
			continue
		}
		if _, ok := accessible[res.ID]; ok {
			visible = append(visible, res)
		}
	}
	httpx.WriteJSON(w, http.StatusOK, visible)
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	resID := chi.URLParam(r, "id")

	if !h.Authz.Check(r.Context(), authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanViewResource),
		ObjectType: authz.TypeResource,
		ObjectID:   resID,
	}).Allowed {
		deny(w)
		return
	}

	res, err := h.Store.GetResource(r.Context(), resID)
	if err != nil {
		writeStoreError(w, err, "resource")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// Create is gated on can_add_resource against the owning organization; the
// containment tuple is written after the record persists, and the record is
// rolled back when that write fails.
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req createResourceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.ResourceType == "" || req.OrganizationID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name, resource_type and organization_id are required")
		return
	}

	ctx := r.Context()
	if !h.Authz.Check(ctx, authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanAddResource),
		ObjectType: authz.TypeOrganization,
		ObjectID:   req.OrganizationID,
	}).Allowed {
		httpx.WriteError(w, http.StatusForbidden, "cannot add resources to this organization")
		return
	}

	res := &domain.Resource{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Description:    req.Description,
		ResourceType:   req.ResourceType,
		OrganizationID: req.OrganizationID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.Store.CreateResource(ctx, res); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	if err := h.Authz.LinkResource(ctx, res.ID, req.OrganizationID); err != nil {
		_ = h.Store.DeleteResource(ctx, res.ID)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to link resource to organization")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	resID := chi.URLParam(r, "id")

	if !h.Authz.Check(r.Context(), authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanDeleteResource),
		ObjectType: authz.TypeResource,
		ObjectID:   resID,
	}).Allowed {
		deny(w)
		return
	}

	var req updateResourceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx := r.Context()
	res, err := h.Store.GetResource(ctx, resID)
	if err != nil {
		writeStoreError(w, err, "resource")
		return
	}
	if req.Name != nil {
		res.Name = *req.Name
	}
	if req.Description != nil {
		res.Description = *req.Description
	}
	if req.ResourceType != nil {
		res.ResourceType = *req.ResourceType
	}
	if err := h.Store.UpdateResource(ctx, res); err != nil {
		writeStoreError(w, err, "resource")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	resID := chi.URLParam(r, "id")

	if !h.Authz.Check(r.Context(), authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanDeleteResource),
		ObjectType: authz.TypeResource,
		ObjectID:   resID,
	}).Allowed {
		deny(w)
		return
	}

	ctx := r.Context()
	res, err := h.Store.GetResource(ctx, resID)
	if err != nil {
		writeStoreError(w, err, "resource")
		return
	}
	if err := h.Store.DeleteResource(ctx, resID); err != nil {
		writeStoreError(w, err, "resource")
		return
	}
	// Best effort: a stale containment tuple only grants access to an id that
	// no longer resolves, but clean up when we can.
	if err := h.Authz.UnlinkResource(ctx, resID, res.OrganizationID); err != nil {
		slog.Warn("failed to unlink deleted resource",
			"resource", resID, "organization", res.OrganizationID, "err", err)
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "resource deleted"})
}

// Permissions reports which capabilities a user holds on one resource.
func (h *ResourceHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	resID := chi.URLParam(r, "id")

	ctx := r.Context()
	if _, err := h.Store.GetResource(ctx, resID); err != nil {
		writeStoreError(w, err, "resource")
		return
	}

	canView := h.Authz.Check(ctx, authz.Request{
		Subject:    userID,
		Relation:   string(domain.CanViewResource),
		ObjectType: authz.TypeResource,
		ObjectID:   resID,
	}).Allowed
	canDelete := h.Authz.Check(ctx, authz.Request{
		Subject:    userID,
		Relation:   string(domain.CanDeleteResource),
		ObjectType: authz.TypeResource,
		ObjectID:   resID,
	}).Allowed

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"resource_id": resID,
		"user_id":     userID,
		"permissions": map[string]bool{
			"can_view":   canView,
			"can_delete": canDelete,
		},
	})
}
