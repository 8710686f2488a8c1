package httpapi

import (
	"net/http"
	"strings"

	"github.com/ThonyMarckDEV/rci-backend/internal/auth"
	"github.com/ThonyMarckDEV/rci-backend/internal/ids"
)

func (a *API) handleLogs(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, auth.RoleSuperadmin) {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"), 100, 1000)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	after := strings.TrimSpace(r.URL.Query().Get("after"))
	if after != "" && !ids.IsValid(after) {
		writeError(w, r, http.StatusBadRequest, "after must be a valid log id")
		return
	}

	entries, err := a.logs.List(r.Context(), limit, after)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	next := ""
	if len(entries) == limit && limit > 0 {
		next = entries[len(entries)-1].ID
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"logs": entries,
		"next": next,
	})
}
