package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ThonyMarckDEV/rci-backend/internal/auth"
)

type createUserRequest struct {
	Role      string `json:"rol"`
	FirstName string `json:"nombres"`
	LastName  string `json:"apellidos"`
	Email     string `json:"correo"`
	Password  string `json:"password"`
	Status    string `json:"estado"`
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, auth.RoleSuperadmin) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r)
	case http.MethodPost:
		a.createUser(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), 100, 1000)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	filter := auth.UserFilter{
		AccountStatus: strings.TrimSpace(r.URL.Query().Get("estado")),
		Limit:         limit,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("rol")); raw != "" {
		role, err := auth.ParseRole(raw)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}
		filter.Role = role
	}

	users, err := a.auth.ListUsers(r.Context(), filter)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	user, err := a.auth.CreateUser(r.Context(), auth.CreateUserInput{
		Role:          role,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Password:      req.Password,
		AccountStatus: req.Status,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	if actorID, ok := auth.UserIDFromContext(r.Context()); ok {
		a.auth.RecordAction(r.Context(), actorID, fmt.Sprintf("created user %s (%s)", user.FullName(), user.Email))
	}
	writeJSON(w, http.StatusCreated, user)
}

type ownPasswordRequest struct {
	Current string `json:"passwordActual"`
	Next    string `json:"passwordNuevo"`
}

// handleOwnPassword lets any authenticated user rotate their own password.
// The current password must verify; the superadmin reset route is the only
// path that skips that check.
func (a *API) handleOwnPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ownPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.auth.ChangePassword(r.Context(), callerID, req.Current, req.Next, false); err != nil {
		handleAuthError(w, r, err)
		return
	}
	a.auth.RecordAction(r.Context(), callerID, "changed own password")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type updateUserRequest struct {
	FirstName *string `json:"nombres"`
	LastName  *string `json:"apellidos"`
	Email     *string `json:"correo"`
	Role      *string `json:"rol"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (a *API) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, auth.RoleSuperadmin) {
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/admin/users/"), "/")
	if rest == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		user, err := a.auth.GetUser(r.Context(), id)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)

	case len(parts) == 1 && r.Method == http.MethodPut:
		a.updateUser(w, r, id)

	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPatch:
		status, err := a.auth.ToggleAccountStatus(r.Context(), id)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}
		if actorID, ok := auth.UserIDFromContext(r.Context()); ok {
			a.auth.RecordAction(r.Context(), actorID, fmt.Sprintf("set user %s account status to %s", id, status))
		}
		writeJSON(w, http.StatusOK, map[string]any{"estado": status})

	case len(parts) == 2 && parts[1] == "password" && r.Method == http.MethodPost:
		var req resetPasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := a.auth.ChangePassword(r.Context(), id, "", req.Password, true); err != nil {
			handleAuthError(w, r, err)
			return
		}
		if actorID, ok := auth.UserIDFromContext(r.Context()); ok {
			a.auth.RecordAction(r.Context(), actorID, fmt.Sprintf("reset password for user %s", id))
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	upd := auth.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if req.Role != nil {
		role, err := auth.ParseRole(*req.Role)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}
		upd.Role = &role
	}

	user, err := a.auth.UpdateUser(r.Context(), id, upd)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if actorID, ok := auth.UserIDFromContext(r.Context()); ok {
		a.auth.RecordAction(r.Context(), actorID, fmt.Sprintf("updated user %s", id))
	}
	writeJSON(w, http.StatusOK, user)
}
