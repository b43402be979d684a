package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"siteapi/internal/domain"
	"siteapi/internal/domain/models"
)

// APIClient talks to the siteapi admin endpoints over HTTP, fetching a CSRF
// token before any state-changing call the way a rendered page would.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Login exchanges the credential pair for a session token.
func (c *APIClient) Login(ctx context.Context, email, password string) (token string, expiresAt time.Time, err error) {
	const op = "client.Login"

	csrfToken, err := c.fetchCSRFToken(ctx)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/admin/login", bytes.NewReader(body))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", csrfToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Success   bool   `json:"success"`
		Token     string `json:"token"`
		ExpiresAt string `json:"expiresAt"`
		Error     string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	if !parsed.Success {
		return "", time.Time{}, fmt.Errorf("%s: %s", op, parsed.Error)
	}

	expiry, err := time.Parse(time.RFC3339, parsed.ExpiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return parsed.Token, expiry, nil
}

// VerifySession implements Verifier against GET /api/admin/session.
func (c *APIClient) VerifySession(ctx context.Context, token string) (models.AuthUser, bool, error) {
	const op = "client.VerifySession"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/admin/session", nil)
	if err != nil {
		return models.AuthUser{}, false, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.AuthUser{}, false, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return models.AuthUser{}, false, domain.ErrTokenInvalid
	}
	if resp.StatusCode != http.StatusOK {
		return models.AuthUser{}, false, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var parsed struct {
		Subject     string `json:"subject"`
		ExpiresAt   string `json:"expiresAt"`
		ExpiresSoon bool   `json:"expiresSoon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.AuthUser{}, false, fmt.Errorf("%s: %w", op, err)
	}
	expiry, _ := time.Parse(time.RFC3339, parsed.ExpiresAt)

	return models.AuthUser{
		Subject:         parsed.Subject,
		IsAuthenticated: true,
		TokenExpiry:     expiry,
	}, parsed.ExpiresSoon, nil
}

func (c *APIClient) fetchCSRFToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/csrf", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Token == "" {
		return "", fmt.Errorf("empty csrf token from server")
	}
	return parsed.Token, nil
}
