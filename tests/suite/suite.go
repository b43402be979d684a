// Package suite spins up the full API in-process for end-to-end tests:
// real middleware chain and handlers, a recording mail transport instead of
// the network ones.
package suite

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"siteapi/internal/app/httpserver"
	"siteapi/internal/config"
	"siteapi/internal/domain/models"
	"siteapi/internal/http/handlers"
	"siteapi/internal/lib/csrf"
	"siteapi/internal/lib/ratelimit"
	"siteapi/internal/lib/token"
	"siteapi/internal/services/auth"
	"siteapi/internal/services/mailer"
)

const (
	AdminEmail    = "owner@septic.test"
	AdminPassword = "swordfish"
	TokenSecret   = "e2e-token-secret"
	CSRFSecret    = "e2e-csrf-secret"
	NotifyAddress = "office@septic.test"
)

type Suite struct {
	*testing.T
	Cfg    *config.Config
	Server *httptest.Server
	Mail   *MailRecorder
	Codec  *token.Codec
}

// New builds the suite. Options mutate the config before wiring, e.g. to
// tighten the rate limit.
func New(t *testing.T, options ...func(*config.Config)) (context.Context, *Suite) {
	t.Helper()

	cfg := &config.Config{
		Env:          "local",
		SiteURL:      "http://localhost:8080",
		SessionTTL:   8 * time.Hour,
		CSRFTokenTTL: time.Hour,
		HTTP:         config.HTTPConfig{Port: 0, Timeout: 5 * time.Second},
		Auth: config.AuthConfig{
			AdminEmail:    AdminEmail,
			AdminPassword: AdminPassword,
			TokenSecret:   TokenSecret,
			CSRFSecret:    CSRFSecret,
		},
		Mail:      config.MailConfig{NotifyTo: []string{NotifyAddress}, SendTimeout: 5 * time.Second},
		RateLimit: config.RateConfig{Limit: 1000, Window: time.Minute},
		Business:  config.Business{Name: "ClearFlow Septic", Phone: "(555) 555-0100"},
	}
	for _, opt := range options {
		opt(cfg)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := token.NewCodec(cfg.Auth.TokenSecret)
	guard := csrf.NewGuard(cfg.Auth.CSRFSecret, cfg.CSRFTokenTTL)
	limiter := ratelimit.New(cfg.RateLimit.Limit, cfg.RateLimit.Window)

	recorder := &MailRecorder{}
	authService := auth.New(log, codec, cfg.Auth, cfg.SessionTTL)
	dispatcher := mailer.NewWithTransports(log, recorder, nil, cfg.Mail, cfg.Business)

	handler := handlers.New(log, authService, dispatcher, guard, cfg)
	app := httpserver.New(log, handler, guard, limiter, cfg.HTTP.Port, cfg.HTTP.Timeout)

	server := httptest.NewServer(app.Router())
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	return ctx, &Suite{
		T:      t,
		Cfg:    cfg,
		Server: server,
		Mail:   recorder,
		Codec:  codec,
	}
}

// MailRecorder implements mailer.Transport, capturing every delivery.
type MailRecorder struct {
	mu       sync.Mutex
	sent     []RecordedMail
	failWith *mailer.Attempt
}

type RecordedMail struct {
	Content models.MailContent
	Options models.MailOptions
}

func (m *MailRecorder) Name() string { return "recorder" }

func (m *MailRecorder) Send(_ context.Context, content models.MailContent, opts models.MailOptions) mailer.Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return *m.failWith
	}
	m.sent = append(m.sent, RecordedMail{Content: content, Options: opts})
	return mailer.Attempt{Status: mailer.StatusOK}
}

// FailWith makes every subsequent send return the given attempt.
func (m *MailRecorder) FailWith(att mailer.Attempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = &att
}

// Sent returns a snapshot of the recorded deliveries.
func (m *MailRecorder) Sent() []RecordedMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedMail, len(m.sent))
	copy(out, m.sent)
	return out
}
