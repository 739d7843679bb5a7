// Package mailer implements the email sending pipelines and the
// configuration/template management rules on top of the document store.
package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shineum/mcp-mailer/internal/provider"
	"github.com/shineum/mcp-mailer/internal/store"
)

var (
	// ErrConfigNotFound is returned when a referenced SMTP server
	// configuration id does not exist.
	ErrConfigNotFound = errors.New("smtp config not found")

	// ErrTemplateNotFound is returned when a referenced template id does
	// not exist.
	ErrTemplateNotFound = errors.New("email template not found")

	// ErrLastConfig is returned when deleting the sole remaining SMTP
	// server configuration.
	ErrLastConfig = errors.New("cannot delete the last smtp config")

	// ErrStoreWrite is returned when the document store rejects a write.
	ErrStoreWrite = errors.New("failed to persist document")
)

// Service wires the document store and the delivery provider together.
// The mutex serializes mutating store operations: the host is expected to
// issue one tool call at a time, but that discipline is not enforced by
// the protocol, and every mutation is a read-modify-write of a whole
// document.
type Service struct {
	store    *store.Store
	provider provider.Provider

	mu sync.Mutex

	// sleep is the inter-batch pause, replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Service on top of the given store and delivery provider.
func New(st *store.Store, p provider.Provider) *Service {
	return &Service{
		store:    st,
		provider: p,
		sleep:    sleepContext,
	}
}

// sleepContext waits for the specified duration or until the context is
// cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
