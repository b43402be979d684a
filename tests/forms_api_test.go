package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteapi/internal/config"
	"siteapi/internal/services/mailer"
	"siteapi/tests/suite"
)

func fetchCSRFToken(t *testing.T, st *suite.Suite) string {
	t.Helper()

	resp, err := http.Get(st.Server.URL + "/api/csrf")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.NotEmpty(t, parsed.Token)
	return parsed.Token
}

func postJSON(t *testing.T, st *suite.Suite, path, csrfToken string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, st.Server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if csrfToken != "" {
		req.Header.Set("X-CSRF-Token", csrfToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp, parsed
}

func TestContactForm_HappyPath(t *testing.T) {
	_, st := suite.New(t)

	resp, body := postJSON(t, st, "/api/contact", fetchCSRFToken(t, st), map[string]any{
		"name":    "Jane",
		"email":   "jane@x.com",
		"message": "hi",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	sent := st.Mail.Sent()
	require.Len(t, sent, 2, "admin notification plus submitter confirmation")

	assert.Equal(t, []string{suite.NotifyAddress}, sent[0].Options.To)
	assert.Equal(t, "jane@x.com", sent[0].Options.ReplyTo)
	assert.Contains(t, sent[0].Content.Text, "Jane")
	assert.Contains(t, sent[0].Content.Text, "hi")

	assert.Equal(t, []string{"jane@x.com"}, sent[1].Options.To)
}

func TestContactForm_InvalidEmail(t *testing.T) {
	_, st := suite.New(t)

	resp, body := postJSON(t, st, "/api/contact", fetchCSRFToken(t, st), map[string]any{
		"name":    "Jane",
		"email":   "not-an-email",
		"message": "hi",
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "valid email address")
	assert.Empty(t, st.Mail.Sent(), "zero emails on validation failure")
}

func TestContactForm_MissingCSRFToken(t *testing.T) {
	_, st := suite.New(t)

	resp, body := postJSON(t, st, "/api/contact", "", map[string]any{
		"name":    "Jane",
		"email":   "jane@x.com",
		"message": "hi",
	})

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Empty(t, st.Mail.Sent(), "handler side effects must be observably zero")
}

func TestContactForm_CSRFTokenInBody(t *testing.T) {
	_, st := suite.New(t)

	resp, _ := postJSON(t, st, "/api/contact", "", map[string]any{
		"name":    "Jane",
		"email":   "jane@x.com",
		"message": "hi",
		"_csrf":   fetchCSRFToken(t, st),
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestContactForm_DeliveryFailure(t *testing.T) {
	_, st := suite.New(t)
	st.Mail.FailWith(mailer.Attempt{Status: mailer.StatusTransient, Err: errors.New("provider exploded: key sk-123")})

	resp, body := postJSON(t, st, "/api/contact", fetchCSRFToken(t, st), map[string]any{
		"name":    "Jane",
		"email":   "jane@x.com",
		"message": "hi",
	})

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], st.Cfg.Business.Phone, "the generic message tells visitors to call")
	assert.NotContains(t, body["error"], "sk-123", "internal detail never leaks")
}

func TestBookingForm_HappyPath(t *testing.T) {
	_, st := suite.New(t)

	resp, body := postJSON(t, st, "/api/booking", fetchCSRFToken(t, st), map[string]any{
		"name":          gofakeit.Name(),
		"email":         gofakeit.Email(),
		"phone":         "555-0101",
		"service":       "pumping",
		"preferredDate": "2026-10-01",
		"address":       "12 Drain Field Rd",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	sent := st.Mail.Sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Content.Subject, "pumping")
}

func TestBookingForm_UnknownService(t *testing.T) {
	_, st := suite.New(t)

	resp, body := postJSON(t, st, "/api/booking", fetchCSRFToken(t, st), map[string]any{
		"name":          gofakeit.Name(),
		"email":         gofakeit.Email(),
		"phone":         "555-0101",
		"service":       "exorcism",
		"preferredDate": "2026-10-01",
		"address":       "12 Drain Field Rd",
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "service")
}

func TestNewsletter_SubscribeAndUnsubscribe(t *testing.T) {
	_, st := suite.New(t)
	email := gofakeit.Email()

	resp, _ := postJSON(t, st, "/api/newsletter", fetchCSRFToken(t, st), map[string]any{"email": email})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sent := st.Mail.Sent()
	require.Len(t, sent, 2)
	welcome := sent[1]
	assert.Equal(t, []string{email}, welcome.Options.To)
	assert.Contains(t, welcome.Content.Text, "/api/newsletter/unsubscribe?token=")

	// follow the link from the welcome mail
	idx := bytes.Index([]byte(welcome.Content.Text), []byte("token="))
	require.GreaterOrEqual(t, idx, 0)
	link := welcome.Content.Text[idx+len("token="):]
	if cut := bytes.IndexAny([]byte(link), " \n"); cut >= 0 {
		link = link[:cut]
	}

	unsubResp, err := http.Get(st.Server.URL + "/api/newsletter/unsubscribe?token=" + link)
	require.NoError(t, err)
	defer unsubResp.Body.Close()
	assert.Equal(t, http.StatusOK, unsubResp.StatusCode)

	sent = st.Mail.Sent()
	require.Len(t, sent, 3, "the office is told to remove the subscriber")
	assert.Contains(t, sent[2].Content.Text, email)
}

func TestNewsletter_UnsubscribeBadToken(t *testing.T) {
	_, st := suite.New(t)

	resp, err := http.Get(st.Server.URL + "/api/newsletter/unsubscribe?token=garbage")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, st.Mail.Sent())
}

func TestTestimonial_HappyPath(t *testing.T) {
	_, st := suite.New(t)

	resp, _ := postJSON(t, st, "/api/testimonial", fetchCSRFToken(t, st), map[string]any{
		"name":    gofakeit.Name(),
		"email":   gofakeit.Email(),
		"rating":  5,
		"message": "pumped our tank same day, great crew",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	sent := st.Mail.Sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Content.Subject, "5/5")
}

func TestRateLimit_Returns429(t *testing.T) {
	_, st := suite.New(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateConfig{Limit: 3, Window: time.Minute}
	})

	var lastStatus int
	for i := 0; i < 4; i++ {
		req, err := http.NewRequest(http.MethodPost, st.Server.URL+"/api/contact", bytes.NewReader([]byte(`{}`)))
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", "203.0.113.50")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		lastStatus = resp.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, lastStatus)
}
