// Package provider defines the interface for email delivery backends.
package provider

import (
	"context"

	"github.com/shineum/mcp-mailer/internal/email"
)

// Provider is the interface that email delivery backends must implement.
// The SMTP backend dials the server described by cfg on every call;
// fixed-account backends (SES, stdout) deliver through their own account
// and ignore cfg, which is still recorded in the send log.
type Provider interface {
	// Send delivers an email message and returns a delivery id.
	// It returns an error if the delivery fails.
	Send(ctx context.Context, cfg *email.ServerConfig, msg *email.Email) (string, error)

	// Name returns the human-readable name of this provider.
	Name() string
}
