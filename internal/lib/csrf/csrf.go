// Package csrf issues and validates the per-render tokens that prove a form
// submission originated from a page this service rendered. Tokens are signed
// with a secret independent of the session-token secret and expire on their
// own window regardless of any session.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const delimiter = "|"

// DefaultTTL is the validation window applied when the guard is constructed
// with a non-positive ttl.
const DefaultTTL = time.Hour

type Guard struct {
	secret []byte
	ttl    time.Duration
}

func NewGuard(secret string, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Guard{secret: []byte(secret), ttl: ttl}
}

// Issue generates a fresh token, optionally bound to sessionID.
// Wire format: base64url( nonce|issuedAt|sessionID|signature ); the sessionID
// segment is present but empty for anonymous visitors.
func (g *Guard) Issue(sessionID string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	payload := strings.Join([]string{
		hex.EncodeToString(nonce),
		strconv.FormatInt(time.Now().Unix(), 10),
		sessionID,
	}, delimiter)
	signed := payload + delimiter + g.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(signed)), nil
}

// Validate reports whether raw is a structurally sound, unexpired token whose
// session binding (if any) matches sessionID. It never reports why a token
// failed; callers surface a single generic rejection.
func (g *Guard) Validate(raw string, sessionID string) bool {
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return false
	}

	parts := strings.Split(string(decoded), delimiter)
	if len(parts) != 4 {
		return false
	}
	nonce, issuedAtRaw, boundSession, sig := parts[0], parts[1], parts[2], parts[3]

	if subtle.ConstantTimeCompare([]byte(boundSession), []byte(sessionID)) != 1 {
		return false
	}

	issuedAt, err := strconv.ParseInt(issuedAtRaw, 10, 64)
	if err != nil {
		return false
	}
	age := time.Since(time.Unix(issuedAt, 0))
	if age > g.ttl || age < -time.Minute {
		return false
	}

	expected, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	payload := strings.Join([]string{nonce, issuedAtRaw, boundSession}, delimiter)
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(payload))
	return hmac.Equal(mac.Sum(nil), expected)
}

func (g *Guard) sign(payload string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
