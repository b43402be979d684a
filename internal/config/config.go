package config

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Insecure placeholders used when the corresponding secret is not configured.
// Startup warns loudly while any of them is still active; the service keeps
// running anyway (availability over strictness).
const (
	DefaultTokenSecret   = "dev-token-secret-change-me"
	DefaultCSRFSecret    = "dev-csrf-secret-change-me"
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "admin"
)

type Config struct {
	Env          string        `yaml:"env" env:"ENV" env-default:"local"`
	SiteURL      string        `yaml:"site_url" env:"SITE_URL" env-default:"http://localhost:8080"`
	SessionTTL   time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"8h"`
	CSRFTokenTTL time.Duration `yaml:"csrf_token_ttl" env:"CSRF_TOKEN_TTL" env-default:"1h"`
	HTTP         HTTPConfig    `yaml:"http"`
	Auth         AuthConfig    `yaml:"auth"`
	Mail         MailConfig    `yaml:"mail"`
	RateLimit    RateConfig    `yaml:"rate_limit"`
	Business     Business      `yaml:"business"`
}

type HTTPConfig struct {
	Port    int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
}

type AuthConfig struct {
	// AdminEmail/AdminPassword form the single static credential pair.
	// AdminPassword may be either a bcrypt hash ($2...) or a literal.
	AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL" env-default:"admin@example.com"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD" env-default:"admin"`
	TokenSecret   string `yaml:"token_secret" env:"TOKEN_SECRET"`
	CSRFSecret    string `yaml:"csrf_secret" env:"CSRF_SECRET"`
}

type MailConfig struct {
	ResendAPIKey string        `yaml:"resend_api_key" env:"RESEND_API_KEY"`
	From         string        `yaml:"from" env:"MAIL_FROM" env-default:"no-reply@localhost"`
	NotifyTo     []string      `yaml:"notify_to" env:"MAIL_NOTIFY_TO"`
	SendTimeout  time.Duration `yaml:"send_timeout" env:"MAIL_SEND_TIMEOUT" env-default:"15s"`
	SMTP         SMTPConfig    `yaml:"smtp"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
}

type RateConfig struct {
	Limit  int           `yaml:"limit" env:"RATE_LIMIT" env-default:"20"`
	Window time.Duration `yaml:"window" env:"RATE_WINDOW" env-default:"1m"`
}

// Business holds the public identity data quoted back to visitors
// (the "call us" fallback message uses Phone).
type Business struct {
	Name  string `yaml:"name" env:"BUSINESS_NAME" env-default:"Septic Services"`
	Phone string `yaml:"phone" env:"BUSINESS_PHONE" env-default:"(555) 555-0100"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		// env-only configuration is fine for containerized deploys
		var cfg Config
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			panic(err)
		}
		cfg.applyDefaults()
		return &cfg
	}
	return MustLoadPath(path)
}

func MustLoadPath(path string) *Config {
	if path == "" {
		panic("config path is empty")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config path does not exist: " + path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic(err)
	}
	cfg.applyDefaults()

	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Auth.TokenSecret == "" {
		c.Auth.TokenSecret = DefaultTokenSecret
	}
	if c.Auth.CSRFSecret == "" {
		c.Auth.CSRFSecret = DefaultCSRFSecret
	}
}

// Warnings reports configuration weaknesses worth logging at startup.
// None of them is fatal: the service starts degraded rather than refusing
// to serve a brochure site over a missing secret.
func (c *Config) Warnings() []string {
	var warns []string
	if c.Auth.TokenSecret == DefaultTokenSecret {
		warns = append(warns, "token signing secret is the built-in default; set TOKEN_SECRET")
	}
	if c.Auth.CSRFSecret == DefaultCSRFSecret {
		warns = append(warns, "csrf signing secret is the built-in default; set CSRF_SECRET")
	}
	if c.Auth.AdminEmail == DefaultAdminEmail || c.Auth.AdminPassword == DefaultAdminPassword {
		warns = append(warns, "admin credentials are the built-in defaults; set ADMIN_EMAIL and ADMIN_PASSWORD")
	}
	if c.Mail.ResendAPIKey == "" && c.Mail.SMTP.Host == "" {
		warns = append(warns, "no mail transport configured; form deliveries will fail")
	}
	if len(c.Mail.NotifyTo) == 0 {
		warns = append(warns, "no notification recipients configured; set MAIL_NOTIFY_TO")
	}
	if c.Env != "local" && strings.HasPrefix(c.SiteURL, "http://") {
		warns = append(warns, "site_url is not https outside local env")
	}
	return warns
}

// LogWarnings emits Warnings through the given logger.
func (c *Config) LogWarnings(log *slog.Logger) {
	for _, w := range c.Warnings() {
		log.Warn("configuration weakness", slog.String("warning", w))
	}
}

// Priority: flag > env > default
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
