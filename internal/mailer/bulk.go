package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shineum/mcp-mailer/internal/email"
)

// BulkRequest carries the parameters of a send-bulk-emails call. Cc, Bcc,
// From, Subject, Body, TemplateID and SMTPConfigID apply to every
// per-recipient send. BatchSize and DelayMillis override the persisted
// rate-limit settings when positive.
type BulkRequest struct {
	Recipients   []email.Recipient
	Cc           []email.Recipient
	Bcc          []email.Recipient
	From         *email.Recipient
	Subject      string
	Body         string
	TemplateID   string
	TemplateData map[string]any
	BatchSize    int
	DelayMillis  int
	SMTPConfigID string
}

// BulkFailure records one recipient whose send failed.
type BulkFailure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// BulkResult aggregates the per-recipient outcomes of a bulk send.
// Success is true when at least one recipient was delivered to: a partial
// success is still a success.
type BulkResult struct {
	Success     bool          `json:"success"`
	TotalSent   int           `json:"totalSent"`
	TotalFailed int           `json:"totalFailed"`
	Failures    []BulkFailure `json:"failures,omitempty"`
	Message     string        `json:"message"`
}

// SendBulkEmails partitions the recipients into contiguous batches,
// dispatches the sends of one batch concurrently, waits for the batch to
// settle, and pauses between consecutive batches. Each recipient gets its
// own send with the recipient's email and name injected into the template
// data, overriding caller-supplied keys of the same name.
func (s *Service) SendBulkEmails(ctx context.Context, req BulkRequest) (result BulkResult) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("mailer: bulk send aborted", "panic", p)
			result = BulkResult{
				Success:     false,
				TotalFailed: len(req.Recipients),
				Message:     fmt.Sprintf("bulk send aborted: %v", p),
			}
		}
	}()

	if len(req.Recipients) == 0 {
		return BulkResult{Success: false, Message: "no recipients provided"}
	}

	limits := s.store.RateLimitSettings()
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = limits.BatchSize
	}
	delay := time.Duration(req.DelayMillis) * time.Millisecond
	if req.DelayMillis <= 0 {
		delay = time.Duration(limits.DelayBetweenBatches) * time.Millisecond
	}

	var (
		sent     int
		failures []BulkFailure
		stopped  int // recipients never attempted because of cancellation
	)

	for start := 0; start < len(req.Recipients); start += batchSize {
		end := min(start+batchSize, len(req.Recipients))
		batch := req.Recipients[start:end]

		results := make([]SendResult, len(batch))
		var wg sync.WaitGroup
		for i, r := range batch {
			wg.Add(1)
			go func(i int, r email.Recipient) {
				defer wg.Done()
				// A panicking provider must cost one recipient,
				// not the process.
				defer func() {
					if p := recover(); p != nil {
						results[i] = SendResult{
							Success: false,
							Message: fmt.Sprintf("send panicked: %v", p),
						}
					}
				}()
				results[i] = s.SendEmail(ctx, s.perRecipientRequest(req, r))
			}(i, r)
		}
		wg.Wait()

		for i, res := range results {
			if res.Success {
				sent++
			} else {
				failures = append(failures, BulkFailure{
					Email: batch[i].Email,
					Error: res.Message,
				})
			}
		}

		if end < len(req.Recipients) {
			if err := s.sleep(ctx, delay); err != nil {
				stopped = len(req.Recipients) - end
				slog.Warn("mailer: bulk send cancelled between batches",
					"remaining", stopped,
					"error", err,
				)
				break
			}
		}
	}

	msg := fmt.Sprintf("bulk send finished: %d sent, %d failed", sent, len(failures))
	if stopped > 0 {
		msg = fmt.Sprintf("%s, %d not attempted (cancelled)", msg, stopped)
	}
	return BulkResult{
		Success:     sent > 0,
		TotalSent:   sent,
		TotalFailed: len(failures),
		Failures:    failures,
		Message:     msg,
	}
}

// perRecipientRequest derives the single-recipient send for one entry of a
// bulk request. The recipient's email and name always win over
// caller-supplied template data keys.
func (s *Service) perRecipientRequest(req BulkRequest, r email.Recipient) SendRequest {
	data := make(map[string]any, len(req.TemplateData)+2)
	for k, v := range req.TemplateData {
		data[k] = v
	}
	data["email"] = r.Email
	data["name"] = r.Name

	return SendRequest{
		To:           []email.Recipient{r},
		Cc:           req.Cc,
		Bcc:          req.Bcc,
		From:         req.From,
		Subject:      req.Subject,
		Body:         req.Body,
		TemplateID:   req.TemplateID,
		TemplateData: data,
		SMTPConfigID: req.SMTPConfigID,
	}
}
