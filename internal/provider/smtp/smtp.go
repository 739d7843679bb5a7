// Package smtp implements a Provider that delivers mail through the SMTP
// server described by each send's server configuration, using go-mail.
package smtp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/shineum/mcp-mailer/internal/email"
)

// dialTimeout bounds connection and delivery per send.
const dialTimeout = 30 * time.Second

// Provider dials a fresh SMTP client per send, so every call honors the
// server configuration it was given. There is no connection pooling: the
// tool-call cadence is far below any rate where pooling would matter.
type Provider struct{}

// New creates a new SMTP Provider.
func New() *Provider {
	return &Provider{}
}

// Send delivers the message through cfg's SMTP server. The body is sent as
// HTML. Returns a synthetic delivery id; SMTP does not hand back one.
func (p *Provider) Send(ctx context.Context, cfg *email.ServerConfig, msg *email.Email) (string, error) {
	m := mail.NewMsg()

	if err := m.From(msg.From); err != nil {
		return "", fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return "", fmt.Errorf("invalid to address: %w", err)
	}
	if len(msg.Cc) > 0 {
		if err := m.Cc(msg.Cc...); err != nil {
			return "", fmt.Errorf("invalid cc address: %w", err)
		}
	}
	if len(msg.Bcc) > 0 {
		if err := m.Bcc(msg.Bcc...); err != nil {
			return "", fmt.Errorf("invalid bcc address: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)

	client, err := mail.NewClient(cfg.Host, clientOptions(cfg)...)
	if err != nil {
		return "", fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		slog.Error("smtp: delivery failed", "host", cfg.Host, "port", cfg.Port, "error", err)
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	slog.Debug("smtp: email delivered", "host", cfg.Host, "to", msg.To)
	return fmt.Sprintf("smtp-%d", time.Now().UnixNano()), nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "smtp"
}

// clientOptions maps a server configuration onto go-mail client options.
// secure=true means implicit TLS (SMTPS); otherwise the TLS policy follows
// the port: mandatory STARTTLS on the submission port, opportunistic
// elsewhere (which also covers local relays like Mailhog on 1025).
func clientOptions(cfg *email.ServerConfig) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(dialTimeout),
	}

	switch {
	case cfg.Secure:
		opts = append(opts, mail.WithSSL())
	case cfg.Port == 587:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if cfg.Auth.User != "" && cfg.Auth.Pass != "" {
		opts = append(opts,
			mail.WithUsername(cfg.Auth.User),
			mail.WithPassword(cfg.Auth.Pass),
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		)
	}

	return opts
}
