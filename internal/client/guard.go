package client

import (
	"context"

	"siteapi/internal/domain/models"
)

// State is where a protected navigation stands.
//
//	Unauthenticated -> Redirecting            (no local token)
//	Unauthenticated -> Checking               (token found, being verified)
//	Checking        -> Authenticated          (verified; may carry warning)
//	Checking        -> Redirecting            (verification failed, token discarded)
type State int

const (
	StateUnauthenticated State = iota
	StateChecking
	StateAuthenticated
	StateRedirecting
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// Verifier checks a token with the server. expiresSoon mirrors the server's
// non-blocking expiry warning.
type Verifier interface {
	VerifySession(ctx context.Context, token string) (user models.AuthUser, expiresSoon bool, err error)
}

// Decision is the guard's answer for one protected navigation.
type Decision struct {
	State       State
	User        models.AuthUser
	ExpiresSoon bool
}

// SessionGuard decides whether a protected action may proceed, discarding
// the local token on any verification failure.
type SessionGuard struct {
	store    *TokenStore
	verifier Verifier
}

func NewSessionGuard(store *TokenStore, verifier Verifier) *SessionGuard {
	return &SessionGuard{store: store, verifier: verifier}
}

// Check walks the state machine once. It never returns StateChecking: that
// state exists only between loading the token and hearing back from the
// verifier.
func (g *SessionGuard) Check(ctx context.Context) Decision {
	raw, ok := g.store.Load()
	if !ok {
		return Decision{State: StateRedirecting}
	}

	user, expiresSoon, err := g.verifier.VerifySession(ctx, raw)
	if err != nil {
		g.store.Clear()
		return Decision{State: StateRedirecting}
	}

	return Decision{State: StateAuthenticated, User: user, ExpiresSoon: expiresSoon}
}

// Logout discards the local token. The token itself stays valid until its
// natural expiry; no server-side revocation exists.
func (g *SessionGuard) Logout() {
	g.store.Clear()
}
