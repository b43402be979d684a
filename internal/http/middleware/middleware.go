// Package middleware holds the cross-cutting checks composed in front of the
// API handlers. Order is fixed: request logging, rate limit (cheap), CSRF
// validation for state-changing methods, then the handler. The first failing
// check responds immediately; nothing downstream runs.
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"siteapi/internal/lib/csrf"
	"siteapi/internal/lib/ratelimit"
)

const (
	// CSRFHeader is where clients normally present their token; the `_csrf`
	// body field is the fallback for plain form posts.
	CSRFHeader    = "X-CSRF-Token"
	csrfBodyField = "_csrf"

	maxBodyBytes = 64 << 10
)

// RequestLogger tags every request with an id and logs method, path, status
// and duration.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			log.Info("request",
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("client_ip", ClientIP(r)),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)))
		})
	}
}

// RateLimit rejects clients that exceed the fixed window with 429.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientIP(r)) {
				reject(w, http.StatusTooManyRequests, "too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CSRF requires a valid token on every state-changing request. GET, HEAD and
// OPTIONS are exempt. The rejection message is deliberately generic: it never
// reveals which check failed.
func CSRF(guard *csrf.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(CSRFHeader)
			if token == "" {
				token = tokenFromBody(r)
			}
			if token == "" || !guard.Validate(token, "") {
				reject(w, http.StatusForbidden, "invalid request token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tokenFromBody pulls `_csrf` out of a JSON body and puts the body back for
// the handler.
func tokenFromBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	var token string
	if raw, ok := fields[csrfBodyField]; ok {
		_ = json.Unmarshal(raw, &token)
	}
	return token
}

// ClientIP derives the client identity used for rate limiting: first hop of
// X-Forwarded-For, then X-Real-IP, then the socket address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func reject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
