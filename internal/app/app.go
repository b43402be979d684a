package app

import (
	"log/slog"

	"siteapi/internal/app/httpserver"
	"siteapi/internal/config"
	"siteapi/internal/http/handlers"
	"siteapi/internal/lib/csrf"
	"siteapi/internal/lib/ratelimit"
	"siteapi/internal/lib/token"
	"siteapi/internal/services/auth"
	"siteapi/internal/services/mailer"
)

type App struct {
	HTTPSrv *httpserver.App
}

func New(log *slog.Logger, cfg *config.Config) *App {
	codec := token.NewCodec(cfg.Auth.TokenSecret)
	guard := csrf.NewGuard(cfg.Auth.CSRFSecret, cfg.CSRFTokenTTL)
	limiter := ratelimit.New(cfg.RateLimit.Limit, cfg.RateLimit.Window)

	authService := auth.New(log, codec, cfg.Auth, cfg.SessionTTL)
	dispatcher := mailer.New(log, cfg.Mail, cfg.Business)

	handler := handlers.New(log, authService, dispatcher, guard, cfg)

	httpApp := httpserver.New(log, handler, guard, limiter, cfg.HTTP.Port, cfg.HTTP.Timeout)

	return &App{
		HTTPSrv: httpApp,
	}
}
