package mailer

import (
	"context"
	"errors"
	"net"

	"siteapi/internal/domain/models"
)

// Status tags the outcome of a single transport attempt. The dispatcher
// keys its fallback policy off these tags instead of matching vendor error
// strings, which do not survive SDK upgrades.
type Status int

const (
	// StatusOK means the transport accepted the message.
	StatusOK Status = iota
	// StatusTransient means the transport itself failed (network, timeout);
	// the same payload may succeed elsewhere.
	StatusTransient
	// StatusPermanent means the transport rejected the payload; a simplified
	// payload may still pass.
	StatusPermanent
)

// Attempt is the result of one delivery try on one transport.
type Attempt struct {
	Status Status
	Err    error
}

// Transport is a single delivery mechanism (provider API, SMTP relay).
type Transport interface {
	Name() string
	Send(ctx context.Context, content models.MailContent, opts models.MailOptions) Attempt
}

// classify maps a transport error to an attempt status. Context and network
// failures are transient; anything else is treated as a payload rejection.
func classify(err error) Status {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return StatusTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return StatusTransient
	}
	return StatusPermanent
}
