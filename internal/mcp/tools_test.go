package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shineum/mcp-mailer/internal/email"
	"github.com/shineum/mcp-mailer/internal/mailer"
	"github.com/shineum/mcp-mailer/internal/store"
)

// stubProvider accepts every message, optionally failing when the sole
// recipient contains a marker substring.
type stubProvider struct {
	delivered []*email.Email
}

func (p *stubProvider) Send(_ context.Context, _ *email.ServerConfig, msg *email.Email) (string, error) {
	p.delivered = append(p.delivered, msg)
	return fmt.Sprintf("stub-%d", len(p.delivered)), nil
}

func (p *stubProvider) Name() string { return "stub" }

func newTestServer(t *testing.T) (*Server, *stubProvider) {
	t.Helper()
	st := store.New(t.TempDir())
	require.NoError(t, st.EnsureLayout())
	provider := &stubProvider{}
	return NewServer(ServerConfig{
		Name:    "mcp-mailer-test",
		Version: "0.0.0",
		Service: mailer.New(st, provider),
	}), provider
}

// decode parses a tool result payload into a generic map.
func decode(t *testing.T, payload string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &out))
	return out
}

func TestHandleSendEmail(t *testing.T) {
	srv, provider := newTestServer(t)

	out, err := srv.handleSendEmail(context.Background(), json.RawMessage(`{
		"to": [{"email": "ana@example.com", "name": "Ana"}],
		"subject": "Hello {{name}}",
		"body": "<p>Hi {{name}}</p>",
		"templateData": {"name": "Ana"}
	}`))
	require.NoError(t, err)

	res := decode(t, out)
	assert.Equal(t, true, res["success"])
	require.Len(t, provider.delivered, 1)
	assert.Equal(t, "Hello Ana", provider.delivered[0].Subject)
}

func TestHandleSendEmail_InvalidInput(t *testing.T) {
	srv, provider := newTestServer(t)

	tests := []struct {
		name  string
		input string
	}{
		{"missing recipients", `{"subject": "s", "body": "b"}`},
		{"malformed address", `{"to": [{"email": "not-an-address"}], "subject": "s", "body": "b"}`},
		{"unknown field", `{"to": [{"email": "a@example.com"}], "subject": "s", "body": "b", "bogus": 1}`},
		{"missing body", `{"to": [{"email": "a@example.com"}], "subject": "s"}`},
		{"not json", `{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := srv.handleSendEmail(context.Background(), json.RawMessage(tt.input))
			require.NoError(t, err, "tool problems are payloads, not protocol errors")

			res := decode(t, out)
			assert.Equal(t, false, res["success"])
			assert.Contains(t, res["message"], "invalid input")
		})
	}
	assert.Empty(t, provider.delivered)
}

func TestHandleSendBulkEmails(t *testing.T) {
	srv, provider := newTestServer(t)

	out, err := srv.handleSendBulkEmails(context.Background(), json.RawMessage(`{
		"recipients": [
			{"email": "a@example.com", "name": "A"},
			{"email": "b@example.com", "name": "B"}
		],
		"subject": "Hi {{name}}",
		"body": "b",
		"batchSize": 10
	}`))
	require.NoError(t, err)

	res := decode(t, out)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, float64(2), res["totalSent"])
	assert.Equal(t, float64(0), res["totalFailed"])
	assert.Len(t, provider.delivered, 2)
}

func TestHandleSendBulkEmails_NoRecipients(t *testing.T) {
	srv, _ := newTestServer(t)

	out, err := srv.handleSendBulkEmails(context.Background(), json.RawMessage(`{
		"subject": "s", "body": "b"
	}`))
	require.NoError(t, err)

	res := decode(t, out)
	assert.Equal(t, false, res["success"])
	assert.Equal(t, "no recipients provided", res["message"])
}

func TestHandleGetSMTPConfigs_Redacted(t *testing.T) {
	srv, _ := newTestServer(t)

	out, err := srv.handleGetSMTPConfigs(context.Background(), nil)
	require.NoError(t, err)

	res := decode(t, out)
	assert.Equal(t, true, res["success"])
	configs, ok := res["configs"].([]any)
	require.True(t, ok)
	require.Len(t, configs, 1)
	auth := configs[0].(map[string]any)["auth"].(map[string]any)
	assert.Equal(t, "********", auth["pass"])
}

func TestHandleSMTPConfigLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	out, err := srv.handleAddSMTPConfig(ctx, json.RawMessage(`{
		"name": "Alt",
		"host": "alt.example.com",
		"port": 465,
		"secure": true,
		"user": "alt@example.com",
		"pass": "p",
		"isDefault": true
	}`))
	require.NoError(t, err)
	res := decode(t, out)
	require.Equal(t, true, res["success"])
	cfg := res["config"].(map[string]any)
	id := cfg["id"].(string)
	assert.Equal(t, true, cfg["isDefault"])
	assert.Equal(t, "********", cfg["auth"].(map[string]any)["pass"])

	out, err = srv.handleUpdateSMTPConfig(ctx, json.RawMessage(
		`{"id": "`+id+`", "port": 2525, "pass": "rotated"}`))
	require.NoError(t, err)
	res = decode(t, out)
	require.Equal(t, true, res["success"])
	assert.Equal(t, float64(2525), res["config"].(map[string]any)["port"])

	// Credentials live flat on the wire; the stored nesting is not part
	// of the call shape.
	out, err = srv.handleUpdateSMTPConfig(ctx, json.RawMessage(
		`{"id": "`+id+`", "auth": {"pass": "nested"}}`))
	require.NoError(t, err)
	res = decode(t, out)
	assert.Equal(t, false, res["success"])
	assert.Contains(t, res["message"], "invalid input")

	out, err = srv.handleDeleteSMTPConfig(ctx, json.RawMessage(`{"id": "`+id+`"}`))
	require.NoError(t, err)
	assert.Equal(t, true, decode(t, out)["success"])

	// Only the seeded config remains; deleting it is refused.
	out, err = srv.handleDeleteSMTPConfig(ctx, json.RawMessage(`{"id": "default"}`))
	require.NoError(t, err)
	res = decode(t, out)
	assert.Equal(t, false, res["success"])
	assert.Contains(t, res["message"], "last smtp config")
}

func TestHandleTemplateLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	out, err := srv.handleAddTemplate(ctx, json.RawMessage(`{
		"name": "Receipt",
		"subject": "Your receipt, {{name}}",
		"body": "<p>Total: {{total}}</p>"
	}`))
	require.NoError(t, err)
	res := decode(t, out)
	require.Equal(t, true, res["success"])
	id := res["template"].(map[string]any)["id"].(string)

	out, err = srv.handleUpdateTemplate(ctx, json.RawMessage(
		`{"id": "`+id+`", "isDefault": true}`))
	require.NoError(t, err)
	res = decode(t, out)
	require.Equal(t, true, res["success"])
	assert.Equal(t, true, res["template"].(map[string]any)["isDefault"])

	out, err = srv.handleGetTemplates(ctx, json.RawMessage(`{}`))
	require.NoError(t, err)
	res = decode(t, out)
	templates := res["templates"].([]any)
	assert.Len(t, templates, 3)
	defaults := 0
	for _, raw := range templates {
		if raw.(map[string]any)["isDefault"] == true {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)

	out, err = srv.handleDeleteTemplate(ctx, json.RawMessage(`{"id": "`+id+`"}`))
	require.NoError(t, err)
	assert.Equal(t, true, decode(t, out)["success"])

	out, err = srv.handleDeleteTemplate(ctx, json.RawMessage(`{"id": "nope"}`))
	require.NoError(t, err)
	res = decode(t, out)
	assert.Equal(t, false, res["success"])
	assert.Contains(t, res["message"], "not found")
}

func TestHandleGetLogs(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := srv.handleSendEmail(ctx, json.RawMessage(fmt.Sprintf(
			`{"to": [{"email": "r%d@example.com"}], "subject": "s%d", "body": "b"}`, i, i)))
		require.NoError(t, err)
	}

	out, err := srv.handleGetLogs(ctx, json.RawMessage(`{"limit": 2, "filterBySuccess": true}`))
	require.NoError(t, err)
	res := decode(t, out)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, float64(2), res["count"])
	logs := res["logs"].([]any)
	require.Len(t, logs, 2)
	// Newest first.
	assert.Equal(t, "r2@example.com", logs[0].(map[string]any)["recipient"])
	assert.Equal(t, "r1@example.com", logs[1].(map[string]any)["recipient"])
}
