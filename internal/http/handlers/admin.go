package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"siteapi/internal/domain"
)

// loginRedirect is where clients go when their session is missing or dead.
const loginRedirect = "/admin/login"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLogin verifies the static credential pair and mints a session token.
// The client keeps the token itself; nothing is stored server-side.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	raw, expiresAt, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		// the same generic answer regardless of which half was wrong
		respondJSON(w, http.StatusUnauthorized, map[string]any{
			"success":  false,
			"error":    "invalid credentials",
			"redirect": loginRedirect,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"token":     raw,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}

// AdminSession re-verifies the bearer token presented on each protected
// navigation. An invalid or expired token answers 401 with a login redirect;
// a valid one close to expiry carries a non-blocking warning flag.
func (h *Handler) AdminSession(w http.ResponseWriter, r *http.Request) {
	raw, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]any{
			"success":  false,
			"error":    "authentication required",
			"redirect": loginRedirect,
		})
		return
	}

	user, expiresSoon, err := h.auth.Authorize(raw)
	if err != nil {
		message := "session is invalid"
		if errors.Is(err, domain.ErrTokenExpired) {
			message = "session has expired"
		}
		respondJSON(w, http.StatusUnauthorized, map[string]any{
			"success":  false,
			"error":    message,
			"redirect": loginRedirect,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"subject":     user.Subject,
		"expiresAt":   user.TokenExpiry.UTC().Format(time.RFC3339),
		"expiresSoon": expiresSoon,
	})
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
