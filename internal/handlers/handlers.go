// Package handlers maps the HTTP surface onto the authorization facade and
// the domain stores. Every handler follows the same shape: extract the caller,
// gate through the facade, then apply the effect. Checks run before existence
// lookups, so a denied caller sees 403 even for objects that do not exist.
package handlers

import (
	"errors"
	"net/http"

	"github.com/bramblewood/orgaccess/internal/httpx"
	"github.com/bramblewood/orgaccess/internal/store"
)

// callerID extracts the demo identity from the user_id query parameter.
// There is no credential verification behind it; the parameter is the whole
// identity mechanism.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("user_id")
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "user_id query parameter is required")
		return "", false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, what+" not found")
		return
	}
	httpx.WriteError(w, http.StatusInternalServerError, "storage failure")
}

func deny(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusForbidden, "access denied")
}

type message struct {
	Message string `json:"message"`
}
