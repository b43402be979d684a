package auth

import (
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"siteapi/internal/config"
	"siteapi/internal/domain"
	"siteapi/internal/domain/models"
	"siteapi/internal/lib/token"
)

// ExpiryWarningWindow is how close to expiry a session may get before the
// client is told to expect a forced re-login. There is no refresh flow.
const ExpiryWarningWindow = 30 * time.Minute

// Auth gates the admin area with a single static credential pair and
// stateless signed session tokens. Logout is a client-side discard: a
// captured token stays technically valid until its natural expiry because
// no revocation list exists.
type Auth struct {
	log        *slog.Logger
	codec      *token.Codec
	cfg        config.AuthConfig
	sessionTTL time.Duration
}

// New returns a new instance of the Auth service.
func New(log *slog.Logger, codec *token.Codec, cfg config.AuthConfig, sessionTTL time.Duration) *Auth {
	return &Auth{
		log:        log,
		codec:      codec,
		cfg:        cfg,
		sessionTTL: sessionTTL,
	}
}

// VerifyCredentials checks the identifier/secret pair against configuration.
// The configured secret may be a bcrypt hash; a literal secret is compared in
// constant time. Which form is in use is never revealed to the caller.
func (a *Auth) VerifyCredentials(identifier, secret string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(identifier), []byte(a.cfg.AdminEmail)) == 1

	var secretOK bool
	if strings.HasPrefix(a.cfg.AdminPassword, "$2") {
		secretOK = bcrypt.CompareHashAndPassword([]byte(a.cfg.AdminPassword), []byte(secret)) == nil
	} else {
		secretOK = subtle.ConstantTimeCompare([]byte(secret), []byte(a.cfg.AdminPassword)) == 1
	}

	return idOK && secretOK
}

// Login verifies the credential pair and mints a session token.
func (a *Auth) Login(identifier, secret string) (string, time.Time, error) {
	const op = "auth.Login"
	log := a.log.With(slog.String("op", op))

	if !a.VerifyCredentials(identifier, secret) {
		log.Warn("failed admin login attempt", slog.String("identifier", identifier))
		return "", time.Time{}, domain.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(a.sessionTTL)
	raw := a.codec.Issue(identifier, a.sessionTTL, uuid.NewString())
	log.Info("admin logged in", slog.Time("expires_at", expiresAt))
	return raw, expiresAt, nil
}

// Authorize verifies a session token. expiresSoon is set when less than
// ExpiryWarningWindow remains, so the client can warn without blocking.
func (a *Auth) Authorize(raw string) (user models.AuthUser, expiresSoon bool, err error) {
	const op = "auth.Authorize"

	user, err = a.codec.Verify(raw)
	if err != nil {
		a.log.Debug("session token rejected", slog.String("op", op), slog.String("error", err.Error()))
		return models.AuthUser{}, false, err
	}
	return user, user.ExpiresSoon(ExpiryWarningWindow), nil
}
