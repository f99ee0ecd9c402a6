// Package handlers contains the HTTP adapters. Each handler decodes the
// request, delegates to a service, and writes the service's result or error.
// Authorization lives in the services and the policy gate, not here.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/surajorg0/jira-tracker-backend/internal/httpx"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}
