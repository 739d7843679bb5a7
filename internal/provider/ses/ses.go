// Package ses implements a Provider that sends emails via AWS SES v2.
package ses

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/shineum/mcp-mailer/internal/email"
)

// ProviderConfig holds the configuration for creating a Provider.
type ProviderConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Sender          string
}

// Provider sends emails via the AWS SES v2 API. It delivers through a fixed
// SES account: the per-send SMTP server configuration only contributes the
// id recorded in the send log. A failed call is not retried here; the send
// pipeline reports the failure per recipient instead.
type Provider struct {
	sender string
	client SendEmailAPI
}

// SendEmailAPI is the interface for the SES v2 SendEmail operation.
// Used for testing with mock implementations.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// New creates a new SES Provider with the given configuration.
func New(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	var opts []func(*awsconfig.LoadOptions) error

	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Provider{
		sender: cfg.Sender,
		client: sesv2.NewFromConfig(awsCfg),
	}, nil
}

// NewWithClient creates a Provider with a custom client, used for testing.
func NewWithClient(sender string, client SendEmailAPI) *Provider {
	return &Provider{
		sender: sender,
		client: client,
	}
}

// Send delivers an email message via AWS SES v2 and returns the SES
// message id.
func (s *Provider) Send(ctx context.Context, _ *email.ServerConfig, msg *email.Email) (string, error) {
	input := buildInput(s.sender, msg)

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		slog.Warn("ses: SendEmail failed", "error", err)
		return "", fmt.Errorf("SES API request failed: %w", err)
	}

	// The API reports the message id as optional; fall back to a
	// synthetic id so a success always carries one.
	if out.MessageId == nil || *out.MessageId == "" {
		return fmt.Sprintf("ses-%d", time.Now().UnixNano()), nil
	}
	return *out.MessageId, nil
}

// Name returns the provider name.
func (s *Provider) Name() string {
	return "ses"
}

// buildInput creates a SES SendEmailInput for the message. The sender
// configured on the provider wins over the message's from: SES only accepts
// verified identities.
func buildInput(sender string, msg *email.Email) *sesv2.SendEmailInput {
	from := sender
	if from == "" {
		from = msg.From
	}

	body := &types.Body{
		Html: &types.Content{
			Data:    aws.String(msg.HTMLBody),
			Charset: aws.String("UTF-8"),
		},
	}

	dest := &types.Destination{
		ToAddresses:  msg.To,
		CcAddresses:  msg.Cc,
		BccAddresses: msg.Bcc,
	}

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      dest,
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: body,
			},
		},
	}
}
