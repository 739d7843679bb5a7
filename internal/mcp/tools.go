package mcp

import (
	"context"
	"encoding/json"

	"github.com/shineum/mcp-mailer/internal/email"
	"github.com/shineum/mcp-mailer/internal/mailer"
)

// recipientParam is one addressee of a send, with an optional display name.
type recipientParam struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name,omitempty"`
}

func (r recipientParam) toRecipient() email.Recipient {
	return email.Recipient{Email: r.Email, Name: r.Name}
}

func toRecipients(params []recipientParam) []email.Recipient {
	if len(params) == 0 {
		return nil
	}
	recipients := make([]email.Recipient, len(params))
	for i, p := range params {
		recipients[i] = p.toRecipient()
	}
	return recipients
}

type sendEmailRequest struct {
	To           []recipientParam `json:"to" validate:"required,min=1,dive"`
	Cc           []recipientParam `json:"cc,omitempty" validate:"omitempty,dive"`
	Bcc          []recipientParam `json:"bcc,omitempty" validate:"omitempty,dive"`
	From         *recipientParam  `json:"from,omitempty"`
	Subject      string           `json:"subject" validate:"required"`
	Body         string           `json:"body" validate:"required"`
	TemplateID   string           `json:"templateId,omitempty"`
	TemplateData map[string]any   `json:"templateData,omitempty"`
	SMTPConfigID string           `json:"smtpConfigId,omitempty"`
}

type sendBulkRequest struct {
	Recipients          []recipientParam `json:"recipients" validate:"omitempty,dive"`
	Cc                  []recipientParam `json:"cc,omitempty" validate:"omitempty,dive"`
	Bcc                 []recipientParam `json:"bcc,omitempty" validate:"omitempty,dive"`
	From                *recipientParam  `json:"from,omitempty"`
	Subject             string           `json:"subject" validate:"required"`
	Body                string           `json:"body" validate:"required"`
	TemplateID          string           `json:"templateId,omitempty"`
	TemplateData        map[string]any   `json:"templateData,omitempty"`
	BatchSize           int              `json:"batchSize,omitempty" validate:"omitempty,gt=0"`
	DelayBetweenBatches int              `json:"delayBetweenBatches,omitempty" validate:"omitempty,gte=0"`
	SMTPConfigID        string           `json:"smtpConfigId,omitempty"`
}

// Credentials are flat user/pass parameters on the wire; they nest under
// auth only in the stored document.
type addSMTPConfigRequest struct {
	Name      string `json:"name" validate:"required"`
	Host      string `json:"host" validate:"required"`
	Port      int    `json:"port" validate:"required,gt=0,lte=65535"`
	Secure    bool   `json:"secure"`
	User      string `json:"user" validate:"required"`
	Pass      string `json:"pass" validate:"required"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

type updateSMTPConfigRequest struct {
	ID        string  `json:"id" validate:"required"`
	Name      *string `json:"name,omitempty"`
	Host      *string `json:"host,omitempty"`
	Port      *int    `json:"port,omitempty" validate:"omitempty,gt=0,lte=65535"`
	Secure    *bool   `json:"secure,omitempty"`
	User      *string `json:"user,omitempty"`
	Pass      *string `json:"pass,omitempty"`
	IsDefault *bool   `json:"isDefault,omitempty"`
}

type deleteByIDRequest struct {
	ID string `json:"id" validate:"required"`
}

type addTemplateRequest struct {
	Name      string `json:"name" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Body      string `json:"body" validate:"required"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

type updateTemplateRequest struct {
	ID        string  `json:"id" validate:"required"`
	Name      *string `json:"name,omitempty"`
	Subject   *string `json:"subject,omitempty"`
	Body      *string `json:"body,omitempty"`
	IsDefault *bool   `json:"isDefault,omitempty"`
}

type getLogsRequest struct {
	Limit           int   `json:"limit,omitempty" validate:"omitempty,gte=0"`
	FilterBySuccess *bool `json:"filterBySuccess,omitempty"`
}

// registerTools wires every email tool onto the MCP server.
func (s *Server) registerTools() {
	s.srv.Tool("send-email").
		Description("Send an email to one or more recipients, optionally rendered from a stored template").
		Handler(s.handleSendEmail)

	s.srv.Tool("send-bulk-emails").
		Description("Send personalized emails to many recipients in rate-limited batches").
		Handler(s.handleSendBulkEmails)

	s.srv.Tool("get-smtp-configs").
		Description("List the stored SMTP server configurations with credentials redacted").
		Handler(s.handleGetSMTPConfigs)

	s.srv.Tool("add-smtp-config").
		Description("Add a new SMTP server configuration").
		Handler(s.handleAddSMTPConfig)

	s.srv.Tool("update-smtp-config").
		Description("Update fields of an existing SMTP server configuration").
		Handler(s.handleUpdateSMTPConfig)

	s.srv.Tool("delete-smtp-config").
		Description("Delete an SMTP server configuration; the last remaining one cannot be deleted").
		Handler(s.handleDeleteSMTPConfig)

	s.srv.Tool("get-email-templates").
		Description("List the stored email templates").
		Handler(s.handleGetTemplates)

	s.srv.Tool("add-email-template").
		Description("Add a new email template with {{placeholder}} substitution").
		Handler(s.handleAddTemplate)

	s.srv.Tool("update-email-template").
		Description("Update fields of an existing email template").
		Handler(s.handleUpdateTemplate)

	s.srv.Tool("delete-email-template").
		Description("Delete an email template").
		Handler(s.handleDeleteTemplate)

	s.srv.Tool("get-email-logs").
		Description("Read the send log, newest first, optionally filtered by outcome and capped").
		Handler(s.handleGetLogs)
}

func (s *Server) handleSendEmail(ctx context.Context, input json.RawMessage) (string, error) {
	var req sendEmailRequest
	if err := s.decodeInput(input, &req); err != nil {
		return failure(err)
	}

	sendReq := mailer.SendRequest{
		To:           toRecipients(req.To),
		Cc:           toRecipients(req.Cc),
		Bcc:          toRecipients(req.Bcc),
		Subject:      req.Subject,
		Body:         req.Body,
		TemplateID:   req.TemplateID,
		TemplateData: req.TemplateData,
		SMTPConfigID: req.SMTPConfigID,
	}
	if req.From != nil {
		from := req.From.toRecipient()
		sendReq.From = &from
	}

	return marshalResult(s.service.SendEmail(ctx, sendReq))
}

func (s *Server) handleSendBulkEmails(ctx context.Context, input json.RawMessage) (string, error) {
	var req sendBulkRequest
	if err := s.decodeInput(input, &req); err != nil {
		return failure(err)
	}

	bulkReq := mailer.BulkRequest{
		Recipients:   toRecipients(req.Recipients),
		Cc:           toRecipients(req.Cc),
		Bcc:          toRecipients(req.Bcc),
		Subject:      req.Subject,
		Body:         req.Body,
		TemplateID:   req.TemplateID,
		TemplateData: req.TemplateData,
		BatchSize:    req.BatchSize,
		DelayMillis:  req.DelayBetweenBatches,
		SMTPConfigID: req.SMTPConfigID,
	}
	if req.From != nil {
		from := req.From.toRecipient()
		bulkReq.From = &from
	}

	return marshalResult(s.service.SendBulkEmails(ctx, bulkReq))
}

func (s *Server) handleGetSMTPConfigs(_ context.Context, input json.RawMessage) (string, error) {
	var req struct{}
	if err := s.decodeInput(input, &req); err != nil {
		return failure(err)
	}

	configs := s.service.Configs()
	redacted := make([]email.ServerConfig, len(configs))
	for i, cfg := range configs {
		redacted[i] = cfg.Redacted()
	}
	return marshalResult(map[string]any{
		"success": true,
		"configs": redacted,
	})
}

func (s *Server) handleAddSMTPConfig(_ context.Context, input json.RawMessage) (string, error) {
	var req addSMTPConfigRequest
	if err := s.decodeInput(input, &req); err != nil {
		return failure(err)
	}

	cfg, err := s.service.AddConfig(email.ServerConfig{
		Name:   req.Name,
		Host:   req.Host,
		Port:   req.Port,
		Secure: req.Secure,
		Auth: email.Auth{
			User: req.User,
			Pass: req.Pass,
		},
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return failure(err)
	}
	return success("smtp config added", map[string]any{"config": cfg.Redacted()})
}

func (s *Server) handleUpdateSMTPConfig(_ context.Context, input json.RawMessage) (string, error) {
	var req updateSMTPConfigRequest
	if err := s.decodeInput(input, &req); err != nil {
		return failure(err)
	}

	cfg, err := s.service.UpdateConfig(req.ID, mailer.ConfigUpdate{
		Name:      req.Name,
		Host:      req.Host,
		Port:      req.Port,
		Secure:    req.Secure,
		User:      req.User,
		Pass:      req.Pass,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return failure(err)
	}
	return success("smtp config updated", map[string]any{"config": cfg.Redacted()})
}

func (s *Server) handleDeleteSMTPConfig(_ context.Context, input json.RawMessage) (string, error) {
	var req deleteByIDRequest
	if err := s.decodeInput(input, &req); err != nil {
		return failure(err)
	}
	if err := s.service.DeleteConfig(req.ID); err != nil {
		return failure(err)
	}
	return success("smtp config deleted", nil)
}

func (s *Server) handleGetTemplates(_ context.Context, input json.RawMessage) (string, error) {
	var req struct{}
	if err := s.decodeInput(input, &req); err != nil {
		return failure(err)
	}
	return marshalResult(map[string]any{
		"success":   true,
		"templates": s.service.Templates(),
	})
}

func (s *Server) handleAddTemplate(_ context.Context, input json.RawMessage) (string, error) {
	var req addTemplateRequest
	if err := s.decodeInput(input, &req); err != nil {
		return failure(err)
	}

	t, err := s.service.AddTemplate(email.Template{
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return failure(err)
	}
	return success("email template added", map[string]any{"template": t})
}

func (s *Server) handleUpdateTemplate(_ context.Context, input json.RawMessage) (string, error) {
	var req updateTemplateRequest
	if err := s.decodeInput(input, &req); err != nil {
		return failure(err)
	}

	t, err := s.service.UpdateTemplate(req.ID, mailer.TemplateUpdate{
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return failure(err)
	}
	return success("email template updated", map[string]any{"template": t})
}

func (s *Server) handleDeleteTemplate(_ context.Context, input json.RawMessage) (string, error) {
	var req deleteByIDRequest
	if err := s.decodeInput(input, &req); err != nil {
		return failure(err)
	}
	if err := s.service.DeleteTemplate(req.ID); err != nil {
		return failure(err)
	}
	return success("email template deleted", nil)
}

func (s *Server) handleGetLogs(_ context.Context, input json.RawMessage) (string, error) {
	var req getLogsRequest
	if err := s.decodeInput(input, &req); err != nil {
		return failure(err)
	}

	logs := s.service.Logs(req.Limit, req.FilterBySuccess)
	return marshalResult(map[string]any{
		"success": true,
		"count":   len(logs),
		"logs":    logs,
	})
}
