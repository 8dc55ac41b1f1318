package handlers

import (
	"net/http"

	"github.com/bramblewood/orgaccess/internal/authz"
	"github.com/bramblewood/orgaccess/internal/httpx"
	"github.com/bramblewood/orgaccess/internal/version"
)

// ServiceHandler covers the unauthenticated service endpoints.
type ServiceHandler struct {
	Authz authz.Authorizer
}

func NewServiceHandler(a authz.Authorizer) *ServiceHandler {
	return &ServiceHandler{Authz: a}
}

func (h *ServiceHandler) Root(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "orgaccess: organizations and resources gated by a relationship store",
		"version": version.Version,
		"model":   "organizations with admin/member roles; resources inherit from their organization",
		"roles":   []string{"admin", "member"},
	})
}

func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.Authz.Healthy(r.Context())
	status := "connected"
	if !connected {
		status = "disconnected"
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"version":            version.Version,
		"relationship_store": status,
	})
}

func (h *ServiceHandler) RBACInfo(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"pattern": "coarse-grained relationship-based access control",
		"types": map[string]string{
			"user":         "individual users in the system",
			"organization": "groups that contain users with roles",
			"resource":     "assets owned by organizations",
		},
		"roles": map[string]any{
			"admin": map[string]any{
				"description": "full control over the organization and its resources",
				"permissions": []string{
					"can_view_member", "can_add_member", "can_delete_member",
					"can_add_resource", "can_view_resource", "can_delete_resource",
				},
			},
			"member": map[string]any{
				"description": "basic access to the organization and its resources",
				"permissions": []string{
					"can_view_member", "can_add_resource", "can_view_resource",
				},
			},
		},
		"inheritance": "resource permissions derive from the owning organization via its containment relation",
	})
}

func (h *ServiceHandler) Version(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, version.Get())
}
