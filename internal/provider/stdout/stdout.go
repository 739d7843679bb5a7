// Package stdout implements a Provider that prints emails to a writer
// instead of delivering them. Useful for dry runs and local development.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shineum/mcp-mailer/internal/email"
)

// Provider prints email messages in a human-readable format. It writes to
// os.Stderr by default: stdout belongs to the MCP stdio transport.
type Provider struct {
	writer io.Writer
}

// New creates a new stdout Provider that writes to os.Stderr.
func New() *Provider {
	return &Provider{writer: os.Stderr}
}

// NewWithWriter creates a new stdout Provider that writes to the given
// writer. This is useful for testing.
func NewWithWriter(w io.Writer) *Provider {
	return &Provider{writer: w}
}

// Send prints the email message in a readable format and returns a
// synthetic delivery id. It always succeeds.
func (p *Provider) Send(_ context.Context, cfg *email.ServerConfig, msg *email.Email) (string, error) {
	var b strings.Builder

	b.WriteString("========================================\n")
	if cfg != nil {
		b.WriteString(fmt.Sprintf("Config: %s\n", cfg.ID))
	}
	b.WriteString(fmt.Sprintf("From: %s\n", msg.From))
	b.WriteString(fmt.Sprintf("To: %s\n", strings.Join(msg.To, ", ")))

	if len(msg.Cc) > 0 {
		b.WriteString(fmt.Sprintf("Cc: %s\n", strings.Join(msg.Cc, ", ")))
	}
	if len(msg.Bcc) > 0 {
		b.WriteString(fmt.Sprintf("Bcc: %s\n", strings.Join(msg.Bcc, ", ")))
	}

	b.WriteString(fmt.Sprintf("Subject: %s\n", msg.Subject))
	b.WriteString("Body:\n")
	b.WriteString(msg.HTMLBody + "\n")
	b.WriteString("========================================\n")

	// A write failure here is not a delivery failure; the provider
	// conceptually always succeeds.
	fmt.Fprint(p.writer, b.String())

	return fmt.Sprintf("dry-run-%d", time.Now().UnixNano()), nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stdout"
}
