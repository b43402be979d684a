// Package mailer delivers form notifications with automatic transport
// failover: the configured provider API first, then direct SMTP. Callers get
// a uniform SendResult and never learn which transport delivered.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"siteapi/internal/config"
	"siteapi/internal/domain/models"
)

const defaultSendTimeout = 15 * time.Second

type Dispatcher struct {
	log         *slog.Logger
	primary     Transport
	fallback    Transport
	notifyTo    []string
	timeout     time.Duration
	unavailable string
}

// New wires a Dispatcher from configuration. A missing provider key or SMTP
// host simply disables that transport; with neither configured every Send
// fails with the generic unavailable message.
func New(log *slog.Logger, cfg config.MailConfig, business config.Business) *Dispatcher {
	var primary, fallback Transport
	if cfg.ResendAPIKey != "" {
		primary = newResendTransport(cfg.ResendAPIKey, cfg.From)
	}
	if cfg.SMTP.Host != "" {
		fallback = newSMTPTransport(cfg.SMTP, cfg.From)
	}
	return NewWithTransports(log, primary, fallback, cfg, business)
}

// NewWithTransports is New with the transports supplied directly; tests use
// it to substitute fakes.
func NewWithTransports(log *slog.Logger, primary, fallback Transport, cfg config.MailConfig, business config.Business) *Dispatcher {
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{
		log:         log,
		primary:     primary,
		fallback:    fallback,
		notifyTo:    cfg.NotifyTo,
		timeout:     timeout,
		unavailable: fmt.Sprintf("Our contact form is temporarily unavailable. Please call us at %s.", business.Phone),
	}
}

// Send attempts delivery in a fixed order: provider, provider again with a
// simplified payload if the first try was a payload rejection, then SMTP.
// First success wins. Transport errors are logged here and never reach the
// caller; a total failure returns the generic unavailable message.
//
// Delivery is not idempotent: a provider timeout followed by a successful
// SMTP attempt can double-send. There is no deduplication token.
func (d *Dispatcher) Send(ctx context.Context, content models.MailContent, opts models.MailOptions) models.SendResult {
	const op = "mailer.Send"
	log := d.log.With(slog.String("op", op), slog.String("subject", content.Subject))

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if d.primary != nil {
		att := d.primary.Send(ctx, content, opts)
		if att.Status == StatusOK {
			return models.SendResult{Success: true}
		}
		log.Warn("primary transport failed",
			slog.String("transport", d.primary.Name()),
			slog.Int("status", int(att.Status)),
			slog.String("error", att.Err.Error()))

		if att.Status == StatusPermanent {
			// payload rejection: retry once without the extras before
			// abandoning the provider entirely
			att = d.primary.Send(ctx, simplify(content), models.MailOptions{To: opts.To, ReplyTo: opts.ReplyTo})
			if att.Status == StatusOK {
				return models.SendResult{Success: true}
			}
			log.Warn("simplified retry failed",
				slog.String("transport", d.primary.Name()),
				slog.String("error", att.Err.Error()))
		}
	}

	if d.fallback != nil {
		att := d.fallback.Send(ctx, content, opts)
		if att.Status == StatusOK {
			return models.SendResult{Success: true}
		}
		log.Error("fallback transport failed",
			slog.String("transport", d.fallback.Name()),
			slog.String("error", att.Err.Error()))
	}

	log.Error("all transports exhausted")
	return models.SendResult{Success: false, Error: d.unavailable}
}

// Confirmation is the independent copy sent back to a form submitter.
type Confirmation struct {
	To      string
	Content models.MailContent
}

// Notify sends the admin notification and, when the notification succeeded,
// a confirmation to the submitter. The notification alone drives the result:
// a failed confirmation is logged and swallowed (no retry queue exists).
func (d *Dispatcher) Notify(ctx context.Context, content models.MailContent, replyTo string, confirmation *Confirmation) models.SendResult {
	const op = "mailer.Notify"

	result := d.Send(ctx, content, models.MailOptions{To: d.notifyTo, ReplyTo: replyTo})
	if !result.Success || confirmation == nil {
		return result
	}

	confirmResult := d.Send(ctx, confirmation.Content, models.MailOptions{To: []string{confirmation.To}})
	if !confirmResult.Success {
		d.log.Warn("confirmation email not delivered",
			slog.String("op", op),
			slog.String("to", confirmation.To))
	}
	return result
}

// UnavailableMessage is the user-facing text returned when every transport
// fails.
func (d *Dispatcher) UnavailableMessage() string { return d.unavailable }

func simplify(content models.MailContent) models.MailContent {
	return models.MailContent{Subject: content.Subject, Text: content.Text}
}
