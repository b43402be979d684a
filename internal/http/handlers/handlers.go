// Package handlers implements the JSON API: one endpoint per public form,
// the CSRF token endpoint, and the admin login/session pair. Handlers
// validate, delegate to services, and translate errors into safe responses;
// internal detail stays in the logs.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"siteapi/internal/config"
	"siteapi/internal/lib/csrf"
	"siteapi/internal/lib/validate"
	"siteapi/internal/services/auth"
	"siteapi/internal/services/mailer"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	log      *slog.Logger
	auth     *auth.Auth
	mailer   *mailer.Dispatcher
	guard    *csrf.Guard
	siteURL  string
	secret   string // signs unsubscribe links
	business config.Business
}

func New(
	log *slog.Logger,
	authService *auth.Auth,
	dispatcher *mailer.Dispatcher,
	guard *csrf.Guard,
	cfg *config.Config,
) *Handler {
	return &Handler{
		log:      log,
		auth:     authService,
		mailer:   dispatcher,
		guard:    guard,
		siteURL:  strings.TrimRight(cfg.SiteURL, "/"),
		secret:   cfg.Auth.TokenSecret,
		business: cfg.Business,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/csrf", h.CSRFToken)
	r.Post("/api/contact", h.Contact)
	r.Post("/api/booking", h.Booking)
	r.Post("/api/newsletter", h.Newsletter)
	r.Get("/api/newsletter/unsubscribe", h.Unsubscribe)
	r.Post("/api/testimonial", h.Testimonial)
	r.Post("/api/admin/login", h.AdminLogin)
	r.Get("/api/admin/session", h.AdminSession)
}

// CSRFToken issues a fresh token for a page render.
func (h *Handler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.CSRFToken"

	token, err := h.guard.Issue("")
	if err != nil {
		h.log.Error("csrf issue failed", slog.String("op", op), slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "temporarily unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"token": token})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		respondError(w, http.StatusBadRequest, "request body is required")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		respondError(w, http.StatusBadRequest, "request body is not valid JSON")
		return false
	}
	return true
}

// validateForm writes the 400 response itself when the payload fails.
func (h *Handler) validateForm(w http.ResponseWriter, form any) bool {
	err := validate.Struct(form)
	if err == nil {
		return true
	}

	var verr *validate.Error
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   strings.Join(verr.Messages, "; "),
			"details": verr.Messages,
		})
		return false
	}
	respondError(w, http.StatusBadRequest, "invalid payload")
	return false
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"success": false, "error": message})
}
