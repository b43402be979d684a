package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteapi/internal/client"
	"siteapi/tests/suite"
)

func TestAdminLogin_HappyPath(t *testing.T) {
	ctx, st := suite.New(t)

	api := client.NewAPIClient(st.Server.URL, 5*time.Second)

	loginTime := time.Now()
	token, expiresAt, err := api.Login(ctx, suite.AdminEmail, suite.AdminPassword)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	const deltaSeconds = 2
	assert.InDelta(t, loginTime.Add(st.Cfg.SessionTTL).Unix(), expiresAt.Unix(), deltaSeconds)

	user, expiresSoon, err := api.VerifySession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, suite.AdminEmail, user.Subject)
	assert.True(t, user.IsAuthenticated)
	assert.False(t, expiresSoon)
}

func TestAdminLogin_WrongCredentials(t *testing.T) {
	ctx, st := suite.New(t)

	api := client.NewAPIClient(st.Server.URL, 5*time.Second)

	_, _, err := api.Login(ctx, suite.AdminEmail, "not-the-password")
	require.Error(t, err)
}

func TestAdminSession_NoToken(t *testing.T) {
	_, st := suite.New(t)

	resp, err := http.Get(st.Server.URL + "/api/admin/session")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminFlow_GuardNavigations(t *testing.T) {
	ctx, st := suite.New(t)

	api := client.NewAPIClient(st.Server.URL, 5*time.Second)
	store := client.NewTokenStore(t.TempDir())
	guard := client.NewSessionGuard(store, api)

	// before login every navigation redirects
	decision := guard.Check(ctx)
	assert.Equal(t, client.StateRedirecting, decision.State)

	token, _, err := api.Login(ctx, suite.AdminEmail, suite.AdminPassword)
	require.NoError(t, err)
	require.NoError(t, store.Save(token))

	// within the session window navigations pass without re-prompting
	for i := 0; i < 3; i++ {
		decision = guard.Check(ctx)
		require.Equal(t, client.StateAuthenticated, decision.State)
		assert.Equal(t, suite.AdminEmail, decision.User.Subject)
	}

	// force the expiry into the past: a token minted already expired but
	// signed with the real secret stands in for a naturally aged session
	require.NoError(t, store.Save(st.Codec.Issue(suite.AdminEmail, -time.Minute, "")))

	decision = guard.Check(ctx)
	assert.Equal(t, client.StateRedirecting, decision.State)

	_, ok := store.Load()
	assert.False(t, ok, "the dead token was discarded")
}

func TestAdminFlow_ExpiryWarning(t *testing.T) {
	ctx, st := suite.New(t)

	api := client.NewAPIClient(st.Server.URL, 5*time.Second)
	store := client.NewTokenStore(t.TempDir())
	guard := client.NewSessionGuard(store, api)

	// 10 minutes left is inside the 30 minute warning window
	require.NoError(t, store.Save(st.Codec.Issue(suite.AdminEmail, 10*time.Minute, "")))

	decision := guard.Check(ctx)
	require.Equal(t, client.StateAuthenticated, decision.State)
	assert.True(t, decision.ExpiresSoon, "warning is surfaced without blocking")
}

func TestAdminLogin_TamperedTokenRejected(t *testing.T) {
	ctx, st := suite.New(t)

	api := client.NewAPIClient(st.Server.URL, 5*time.Second)

	token, _, err := api.Login(ctx, suite.AdminEmail, suite.AdminPassword)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, _, err = api.VerifySession(ctx, tampered)
	require.Error(t, err)
}
