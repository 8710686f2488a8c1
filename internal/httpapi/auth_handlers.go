package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ThonyMarckDEV/rci-backend/internal/auth"
	"github.com/ThonyMarckDEV/rci-backend/internal/obs"
)

type loginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeError(w, r, http.StatusBadRequest, "valid correo is required")
		return
	}
	if len(req.Password) < auth.MinPasswordLen {
		writeError(w, r, http.StatusBadRequest, "password must have at least 6 characters")
		return
	}

	res, err := a.auth.Login(r.Context(), email, req.Password, r.Header.Get("User-Agent"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			obs.CountLogin("not_found")
		case errors.Is(err, auth.ErrUnauthorized):
			obs.CountLogin("unauthorized")
		case errors.Is(err, auth.ErrForbidden):
			obs.CountLogin("forbidden")
		default:
			obs.CountLogin("error")
		}
		handleAuthError(w, r, err)
		return
	}

	obs.CountLogin("ok")
	if res.Superseded {
		obs.CountSupersession()
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: res.Token})
}

type userIDRequest struct {
	UserID string `json:"idUsuario"`
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req userIDRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeError(w, r, http.StatusBadRequest, "idUsuario is required")
		return
	}
	if !authorizeSubject(w, r, userID) {
		return
	}

	if err := a.auth.Logout(r.Context(), userID); err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Session closed successfully",
	})
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (a *API) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	raw, ok := auth.TokenFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	fresh, err := a.auth.Refresh(r.Context(), raw)
	if err != nil {
		// Any failure past authentication reads as a server-side refresh
		// problem to the client.
		writeError(w, r, http.StatusInternalServerError, "could not refresh token")
		return
	}
	obs.CountRefresh()
	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: fresh})
}

func (a *API) handleCheckStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req userIDRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = strings.TrimSpace(r.URL.Query().Get("idUsuario"))
	}
	if userID == "" {
		writeError(w, r, http.StatusBadRequest, "idUsuario is required")
		return
	}
	if !authorizeSubject(w, r, userID) {
		return
	}

	raw, ok := auth.TokenFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	stored, err := a.auth.CheckStatus(r.Context(), userID, raw)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"token":  stored,
	})
}

func (a *API) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req userIDRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeError(w, r, http.StatusBadRequest, "idUsuario is required")
		return
	}
	if !authorizeSubject(w, r, userID) {
		return
	}

	if err := a.auth.UpdateActivity(r.Context(), userID); err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Last activity updated",
	})
}
