package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shineum/mcp-mailer/internal/email"
	"github.com/shineum/mcp-mailer/internal/template"
)

// SendRequest carries the parameters of a single send-email call.
// Subject and Body are the literal content, used directly or as the
// fallback when TemplateID does not resolve.
type SendRequest struct {
	To           []email.Recipient
	Cc           []email.Recipient
	Bcc          []email.Recipient
	From         *email.Recipient
	Subject      string
	Body         string
	TemplateID   string
	TemplateData map[string]any
	SMTPConfigID string
}

// SendResult is the outcome of a send-email call. The pipeline never
// returns an error: every failure path resolves to Success=false.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendEmail resolves the SMTP configuration and the content, renders the
// subject and body, formats the envelope, and hands it to the delivery
// provider. One log entry is appended per `to` recipient per attempt,
// successful or not.
func (s *Service) SendEmail(ctx context.Context, req SendRequest) SendResult {
	cfgID := email.UnknownConfig
	subject := req.Subject

	fail := func(err error) SendResult {
		msg := err.Error()
		s.logAttempts(req.To, cfgID, req.TemplateID, subject, false, msg)
		return SendResult{Success: false, Message: msg}
	}

	// Resolve the SMTP configuration.
	var cfg email.ServerConfig
	if req.SMTPConfigID != "" {
		c, err := s.configByID(req.SMTPConfigID)
		if err != nil {
			return fail(err)
		}
		cfg = c
	} else {
		cfg = s.DefaultServerConfig()
	}
	cfgID = cfg.ID

	// Resolve the content: template when given, literal otherwise. A
	// missing template is a logged fallback to the literal content, not
	// a failure.
	body := req.Body
	if req.TemplateID != "" {
		t, err := s.templateByID(req.TemplateID)
		if err != nil {
			slog.Warn("mailer: template not found, using literal content",
				"template_id", req.TemplateID,
			)
		} else {
			subject = t.Subject
			body = t.Body
		}
	}

	data := req.TemplateData
	if data == nil {
		data = map[string]any{}
	}
	subject = template.Render(subject, data)
	body = template.Render(body, data)

	// Compose the envelope.
	from := cfg.Auth.User
	if req.From != nil {
		from = req.From.Format()
	}
	msg := &email.Email{
		From:     from,
		To:       email.FormatAll(req.To),
		Cc:       email.FormatAll(req.Cc),
		Bcc:      email.FormatAll(req.Bcc),
		Subject:  subject,
		HTMLBody: body,
	}

	id, err := s.provider.Send(ctx, &cfg, msg)
	if err != nil {
		return fail(err)
	}

	s.logAttempts(req.To, cfgID, req.TemplateID, subject, true,
		fmt.Sprintf("delivered with id %s via %s", id, s.provider.Name()))

	return SendResult{
		Success: true,
		Message: fmt.Sprintf("email sent to %d recipient(s), delivery id %s", len(req.To), id),
	}
}

// logAttempts appends one log entry per recipient. A failure to log is
// itself swallowed so it never masks the send outcome.
func (s *Service) logAttempts(recipients []email.Recipient, cfgID, templateID, subject string, success bool, message string) {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range recipients {
		ok := s.store.AppendLog(email.LogEntry{
			Timestamp:  now,
			SMTPConfig: cfgID,
			TemplateID: templateID,
			Recipient:  r.Email,
			Subject:    subject,
			Success:    success,
			Message:    message,
		})
		if !ok {
			slog.Warn("mailer: could not append send log entry", "recipient", r.Email)
		}
	}
}

// Logs returns send log entries, newest first, optionally filtered by
// success flag and capped at limit entries.
func (s *Service) Logs(limit int, filterBySuccess *bool) []email.LogEntry {
	return s.store.ReadLogs(limit, filterBySuccess)
}
