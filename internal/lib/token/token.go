// Package token implements the signed stateless token scheme used for admin
// sessions. A token is fully self-describing: validity is determined by its
// own HMAC-signed contents plus the current time, with no server-side lookup
// and no revocation list.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"siteapi/internal/domain"
	"siteapi/internal/domain/models"
)

const delimiter = "|"

// Codec issues and verifies signed tokens with a process-wide secret.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue builds a token for subject valid for ttl. sessionID may be empty.
// Wire format: base64url( subject|issuedAt|expiresAt[|sessionID] |signature )
// where signature is hex(HMAC-SHA256) over everything before it.
func (c *Codec) Issue(subject string, ttl time.Duration, sessionID string) string {
	now := time.Now()
	fields := []string{
		subject,
		strconv.FormatInt(now.Unix(), 10),
		strconv.FormatInt(now.Add(ttl).Unix(), 10),
	}
	if sessionID != "" {
		fields = append(fields, sessionID)
	}
	payload := strings.Join(fields, delimiter)
	signed := payload + delimiter + c.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(signed))
}

// Verify decodes and checks a token. It returns ErrTokenInvalid on any
// structural or signature defect and ErrTokenExpired when the signature is
// sound but the expiry has passed; expiry is enforced independently of
// signature correctness.
func (c *Codec) Verify(raw string) (models.AuthUser, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return models.AuthUser{}, domain.ErrTokenInvalid
	}

	signed := string(decoded)
	cut := strings.LastIndex(signed, delimiter)
	if cut < 0 {
		return models.AuthUser{}, domain.ErrTokenInvalid
	}
	payload, sig := signed[:cut], signed[cut+1:]

	expected, err := hex.DecodeString(sig)
	if err != nil {
		return models.AuthUser{}, domain.ErrTokenInvalid
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	if !hmac.Equal(mac.Sum(nil), expected) {
		return models.AuthUser{}, domain.ErrTokenInvalid
	}

	parts := strings.Split(payload, delimiter)
	if len(parts) != 3 && len(parts) != 4 {
		return models.AuthUser{}, domain.ErrTokenInvalid
	}
	expiresAt, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return models.AuthUser{}, domain.ErrTokenInvalid
	}
	if _, err := strconv.ParseInt(parts[1], 10, 64); err != nil {
		return models.AuthUser{}, domain.ErrTokenInvalid
	}
	if time.Now().Unix() >= expiresAt {
		return models.AuthUser{}, domain.ErrTokenExpired
	}

	user := models.AuthUser{
		Subject:         parts[0],
		IsAuthenticated: true,
		TokenExpiry:     time.Unix(expiresAt, 0),
	}
	if len(parts) == 4 {
		user.SessionID = parts[3]
	}
	return user, nil
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
