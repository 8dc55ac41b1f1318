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

type OrganizationHandler struct {
	Store store.OrganizationStore
	Authz authz.Authorizer
}

func NewOrganizationHandler(s store.OrganizationStore, a authz.Authorizer) *OrganizationHandler {
	return &OrganizationHandler{Store: s, Authz: a}
}

type createOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateOrganizationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type memberAssignment struct {
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// List returns the organizations the caller can view, in store order.
// Membership comes from a reverse lookup over both roles rather than one
// check per record.
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	accessible := make(map[string]struct{})
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleMember} {
		for _, id := range h.Authz.ListAccessible(ctx, caller, string(role), authz.TypeOrganization) {
			accessible[id] = struct{}{}
		}
	}

	orgs, err := h.Store.ListOrganizations(ctx)
	if err != nil {
		writeStoreError(w, err, "organization")
		return
	}
	visible := make([]domain.Organization, 0, len(orgs))
	for _, org := range orgs {
		if _, ok := accessible[org.ID]; ok {
			visible = append(visible, org)
		}
	}
	httpx.WriteJSON(w, http.StatusOK, visible)
}

func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "id")

	if !h.Authz.Check(r.Context(), authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanViewMember),
		ObjectType: authz.TypeOrganization,
		ObjectID:   orgID,
	}).Allowed {
		deny(w)
		return
	}

	org, err := h.Store.GetOrganization(r.Context(), orgID)
	if err != nil {
		writeStoreError(w, err, "organization")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, org)
}

// Create persists the record and grants the creator the admin role. If the
// grant fails the record is rolled back; success must mean the creator can
// actually reach the organization they just made.
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	var req createOrganizationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx := r.Context()
	org := &domain.Organization{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Store.CreateOrganization(ctx, org); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	if err := h.Authz.Assign(ctx, caller, domain.RoleAdmin, org.ID); err != nil {
		_ = h.Store.DeleteOrganization(ctx, org.ID)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to grant creator access")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, org)
}

func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "id")

	if !h.Authz.Check(r.Context(), authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanAddMember),
		ObjectType: authz.TypeOrganization,
		ObjectID:   orgID,
	}).Allowed {
		deny(w)
		return
	}

	var req updateOrganizationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx := r.Context()
	org, err := h.Store.GetOrganization(ctx, orgID)
	if err != nil {
		writeStoreError(w, err, "organization")
		return
	}
	// Partial update: absent fields stay as they are.
	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.Description != nil {
		org.Description = *req.Description
	}
	if err := h.Store.UpdateOrganization(ctx, org); err != nil {
		writeStoreError(w, err, "organization")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, org)
}

// Delete removes the record once the check passes. Membership and containment
// tuples are intentionally left in the relationship store; see DESIGN.md.
func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "id")

	if !h.Authz.Check(r.Context(), authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanDeleteMember),
		ObjectType: authz.TypeOrganization,
		ObjectID:   orgID,
	}).Allowed {
		deny(w)
		return
	}

	if err := h.Store.DeleteOrganization(r.Context(), orgID); err != nil {
		writeStoreError(w, err, "organization")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "organization deleted"})
}

func (h *OrganizationHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "id")

	if !h.Authz.Check(r.Context(), authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanAddMember),
		ObjectType: authz.TypeOrganization,
		ObjectID:   orgID,
	}).Allowed {
		deny(w)
		return
	}

	var req memberAssignment
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if _, err := h.Store.GetOrganization(ctx, orgID); err != nil {
		writeStoreError(w, err, "organization")
		return
	}
	if err := h.Authz.Assign(ctx, req.UserID, role, orgID); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to assign role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "user " + req.UserID + " added as " + string(role)})
}

func (h *OrganizationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	orgID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberID")

	if !h.Authz.Check(r.Context(), authz.Request{
		Subject:    caller,
		Relation:   string(domain.CanDeleteMember),
		ObjectType: authz.TypeOrganization,
		ObjectID:   orgID,
	}).Allowed {
		deny(w)
		return
	}

	role, err := domain.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if _, err := h.Store.GetOrganization(ctx, orgID); err != nil {
		writeStoreError(w, err, "organization")
		return
	}
	if err := h.Authz.Unassign(ctx, memberID, role, orgID); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to remove role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "user " + memberID + " removed from " + string(role)})
}
