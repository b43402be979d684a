package csrf

import (
	"encoding/base64"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "csrf-test-secret"

func TestIssueValidate_HappyPath(t *testing.T) {
	guard := NewGuard(testSecret, time.Hour)

	raw, err := guard.Issue("")
	require.NoError(t, err)
	assert.True(t, guard.Validate(raw, ""))
}

func TestIssueValidate_SessionBound(t *testing.T) {
	guard := NewGuard(testSecret, time.Hour)

	raw, err := guard.Issue("sess-1")
	require.NoError(t, err)

	assert.True(t, guard.Validate(raw, "sess-1"))
	assert.False(t, guard.Validate(raw, "sess-2"), "foreign session must not pass")
	assert.False(t, guard.Validate(raw, ""), "anonymous presenter must not pass")
}

func TestValidate_Expired(t *testing.T) {
	guard := NewGuard(testSecret, time.Hour)

	// rebuild a correctly signed token whose timestamp is outside the window
	stale := strconv.FormatInt(time.Now().Add(-2*time.Hour).Unix(), 10)
	payload := strings.Join([]string{strings.Repeat("ab", 16), stale, ""}, delimiter)
	signed := payload + delimiter + guard.sign(payload)
	raw := base64.RawURLEncoding.EncodeToString([]byte(signed))

	assert.False(t, guard.Validate(raw, ""), "signature is valid but the window has passed")
}

func TestValidate_TamperedNonce(t *testing.T) {
	guard := NewGuard(testSecret, time.Hour)

	raw, err := guard.Issue("")
	require.NoError(t, err)

	decoded, _ := base64.RawURLEncoding.DecodeString(raw)
	tampered := []byte(string(decoded))
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}
	assert.False(t, guard.Validate(base64.RawURLEncoding.EncodeToString(tampered), ""))
}

func TestValidate_WrongSecret(t *testing.T) {
	raw, err := NewGuard("secret-a", time.Hour).Issue("")
	require.NoError(t, err)

	assert.False(t, NewGuard("secret-b", time.Hour).Validate(raw, ""))
}

func TestValidate_Malformed(t *testing.T) {
	guard := NewGuard(testSecret, time.Hour)

	for _, raw := range []string{
		"",
		"!!not-base64!!",
		base64.RawURLEncoding.EncodeToString([]byte("only|two")),
		base64.RawURLEncoding.EncodeToString([]byte("a|b|c|d|e")),
	} {
		assert.False(t, guard.Validate(raw, ""), "input %q", raw)
	}
}

func TestTokensAreSingleUseShaped(t *testing.T) {
	// two renders must never produce the same token
	guard := NewGuard(testSecret, time.Hour)

	a, err := guard.Issue("")
	require.NoError(t, err)
	b, err := guard.Issue("")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
