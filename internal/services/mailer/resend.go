package mailer

import (
	"context"

	"github.com/resend/resend-go/v2"

	"siteapi/internal/domain/models"
)

// resendTransport delivers through the Resend transactional-email API.
type resendTransport struct {
	client *resend.Client
	from   string
}

func newResendTransport(apiKey, from string) *resendTransport {
	return &resendTransport{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (t *resendTransport) Name() string { return "resend" }

func (t *resendTransport) Send(ctx context.Context, content models.MailContent, opts models.MailOptions) Attempt {
	params := &resend.SendEmailRequest{
		From:    t.from,
		To:      opts.To,
		Subject: content.Subject,
		Text:    content.Text,
		Html:    content.HTML,
		ReplyTo: opts.ReplyTo,
	}
	for _, a := range opts.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	if _, err := t.client.Emails.SendWithContext(ctx, params); err != nil {
		return Attempt{Status: classify(err), Err: err}
	}
	return Attempt{Status: StatusOK}
}
