package mailer

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shineum/mcp-mailer/internal/email"
	"github.com/shineum/mcp-mailer/internal/store"
)

// fakeProvider records every delivered message and can be told to fail or
// panic for recipients whose address contains a marker substring.
type fakeProvider struct {
	mu       sync.Mutex
	messages []*email.Email
	configs  []string
	failOn   string
	panicOn  string
}

func (f *fakeProvider) Send(_ context.Context, cfg *email.ServerConfig, msg *email.Email) (string, error) {
	if f.panicOn != "" && containsAddr(msg.To, f.panicOn) {
		panic("provider exploded")
	}
	if f.failOn != "" && containsAddr(msg.To, f.failOn) {
		return "", errForced
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	f.configs = append(f.configs, cfg.ID)
	return "fake-id-1", nil
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) sent() []*email.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*email.Email(nil), f.messages...)
}

func containsAddr(addrs []string, marker string) bool {
	for _, a := range addrs {
		if strings.Contains(a, marker) {
			return true
		}
	}
	return false
}

var errForced = forcedError{}

type forcedError struct{}

func (forcedError) Error() string { return "forced delivery failure" }

// newTestService returns a Service over a seeded temporary store and its
// fake provider.
func newTestService(t *testing.T) (*Service, *fakeProvider) {
	t.Helper()
	st := store.New(t.TempDir())
	if err := st.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	fake := &fakeProvider{}
	return New(st, fake), fake
}

// assertSingleDefault fails unless exactly one entry of a non-empty
// collection carries the default flag.
func assertSingleDefaultConfigs(t *testing.T, configs []email.ServerConfig) {
	t.Helper()
	defaults := 0
	for _, c := range configs {
		if c.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("config collection has %d defaults, want exactly 1: %+v", defaults, configs)
	}
}

func assertSingleDefaultTemplates(t *testing.T, templates []email.Template) {
	t.Helper()
	defaults := 0
	for _, tm := range templates {
		if tm.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("template collection has %d defaults, want exactly 1: %+v", defaults, templates)
	}
}
