package mailer

import (
	"bytes"
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"siteapi/internal/config"
	"siteapi/internal/domain/models"
)

// smtpTransport is the direct-SMTP fallback used when the provider API is
// unavailable or rejects the payload.
type smtpTransport struct {
	cfg  config.SMTPConfig
	from string
}

func newSMTPTransport(cfg config.SMTPConfig, from string) *smtpTransport {
	return &smtpTransport{cfg: cfg, from: from}
}

func (t *smtpTransport) Name() string { return "smtp" }

func (t *smtpTransport) Send(ctx context.Context, content models.MailContent, opts models.MailOptions) Attempt {
	msg := gomail.NewMsg()
	if err := msg.From(t.from); err != nil {
		return Attempt{Status: StatusPermanent, Err: err}
	}
	if err := msg.To(opts.To...); err != nil {
		return Attempt{Status: StatusPermanent, Err: err}
	}
	if opts.ReplyTo != "" {
		if err := msg.ReplyTo(opts.ReplyTo); err != nil {
			return Attempt{Status: StatusPermanent, Err: err}
		}
	}
	msg.Subject(content.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, content.Text)
	if content.HTML != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, content.HTML)
	}
	for _, a := range opts.Attachments {
		msg.AttachReader(a.Filename, bytes.NewReader(a.Content))
	}

	client, err := t.newClient()
	if err != nil {
		return Attempt{Status: StatusTransient, Err: err}
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return Attempt{Status: classify(err), Err: fmt.Errorf("smtp send: %w", err)}
	}
	return Attempt{Status: StatusOK}
}

func (t *smtpTransport) newClient() (*gomail.Client, error) {
	options := []gomail.Option{
		gomail.WithPort(t.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if t.cfg.Username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(t.cfg.Username),
			gomail.WithPassword(t.cfg.Password),
		)
	}
	return gomail.NewClient(t.cfg.Host, options...)
}
