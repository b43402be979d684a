package auth

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"siteapi/internal/config"
	"siteapi/internal/domain"
	"siteapi/internal/lib/token"
)

func newTestAuth(t *testing.T, cfg config.AuthConfig, ttl time.Duration) *Auth {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, token.NewCodec(cfg.TokenSecret), cfg, ttl)
}

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		AdminEmail:    "owner@septic.test",
		AdminPassword: "swordfish",
		TokenSecret:   "token-test-secret",
		CSRFSecret:    "csrf-test-secret",
	}
}

func TestLogin_HappyPath(t *testing.T) {
	a := newTestAuth(t, testConfig(), 8*time.Hour)

	loginTime := time.Now()
	raw, expiresAt, err := a.Login("owner@septic.test", "swordfish")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	const deltaSeconds = 2
	assert.InDelta(t, loginTime.Add(8*time.Hour).Unix(), expiresAt.Unix(), deltaSeconds)

	user, expiresSoon, err := a.Authorize(raw)
	require.NoError(t, err)
	assert.True(t, user.IsAuthenticated)
	assert.Equal(t, "owner@septic.test", user.Subject)
	assert.NotEmpty(t, user.SessionID)
	assert.False(t, expiresSoon)
}

func TestLogin_WrongPassword(t *testing.T) {
	a := newTestAuth(t, testConfig(), 8*time.Hour)

	_, _, err := a.Login("owner@septic.test", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_WrongIdentifier(t *testing.T) {
	a := newTestAuth(t, testConfig(), 8*time.Hour)

	_, _, err := a.Login("intruder@septic.test", "swordfish")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyCredentials_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("swordfish"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.AdminPassword = string(hash)
	a := newTestAuth(t, cfg, 8*time.Hour)

	assert.True(t, a.VerifyCredentials("owner@septic.test", "swordfish"))
	assert.False(t, a.VerifyCredentials("owner@septic.test", "not-swordfish"))
}

func TestAuthorize_ExpiryWarning(t *testing.T) {
	// a ttl under the warning window flags an imminent expiry without failing
	a := newTestAuth(t, testConfig(), 10*time.Minute)

	raw, _, err := a.Login("owner@septic.test", "swordfish")
	require.NoError(t, err)

	user, expiresSoon, err := a.Authorize(raw)
	require.NoError(t, err)
	assert.True(t, user.IsAuthenticated)
	assert.True(t, expiresSoon)
}

func TestAuthorize_ExpiredToken(t *testing.T) {
	a := newTestAuth(t, testConfig(), -time.Minute)

	raw, _, err := a.Login("owner@septic.test", "swordfish")
	require.NoError(t, err)

	_, _, err = a.Authorize(raw)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestAuthorize_GarbageToken(t *testing.T) {
	a := newTestAuth(t, testConfig(), 8*time.Hour)

	_, _, err := a.Authorize("garbage")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
