// Package mcp exposes the mailer service as Model Context Protocol tools
// over stdio or HTTP.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/go-playground/validator/v10"

	"github.com/shineum/mcp-mailer/internal/mailer"
)

// ServerConfig configures the MCP tool server.
type ServerConfig struct {
	// Name is the server name advertised to clients.
	Name string

	// Version is the server version advertised to clients.
	Version string

	// Instructions provides usage instructions for clients.
	Instructions string

	// Service handles every tool invocation.
	Service *mailer.Service
}

// Server wraps an MCP server exposing the email tool set.
type Server struct {
	srv         *mcpgo.Server
	service     *mailer.Service
	validate    *validator.Validate
	middlewares []mcpgo.Middleware
}

// NewServer creates the MCP server and registers all email tools on it.
func NewServer(cfg ServerConfig) *Server {
	info := mcpgo.ServerInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Description: "Email delivery and template management over SMTP",
		Capabilities: mcpgo.Capabilities{
			Tools: true,
		},
	}

	var opts []mcpgo.Option
	if cfg.Instructions != "" {
		opts = append(opts, mcpgo.WithInstructions(cfg.Instructions))
	}

	s := &Server{
		srv:      mcpgo.NewServer(info, opts...),
		service:  cfg.Service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	s.registerTools()
	return s
}

// Use adds middleware to the underlying server.
func (s *Server) Use(middlewares ...mcpgo.Middleware) {
	s.middlewares = append(s.middlewares, middlewares...)
}

// ServeStdio runs the server over stdin/stdout until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context, opts ...mcpgo.ServeOption) error {
	if len(s.middlewares) > 0 {
		opts = append([]mcpgo.ServeOption{mcpgo.WithMiddleware(s.middlewares...)}, opts...)
	}
	return mcpgo.ServeStdio(ctx, s.srv, opts...)
}

// ServeHTTP runs the server over HTTP with SSE on addr.
func (s *Server) ServeHTTP(ctx context.Context, addr string, opts ...mcpgo.HTTPOption) error {
	if len(s.middlewares) > 0 {
		return mcpgo.ServeHTTPWithMiddleware(ctx, s.srv, addr, opts,
			mcpgo.WithMiddleware(s.middlewares...))
	}
	return mcpgo.ServeHTTP(ctx, s.srv, addr, opts...)
}

// decodeInput parses a tool invocation's input into req. Empty and null
// inputs decode as an empty object so tools with no required parameters
// can be called bare. Unknown fields are rejected.
func (s *Server) decodeInput(input json.RawMessage, req any) error {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

// failure renders an error as a tool result. Tool-level problems are
// reported inside the result payload, never as protocol errors, so a
// client always gets a well-formed outcome it can inspect.
func failure(err error) (string, error) {
	return marshalResult(map[string]any{
		"success": false,
		"message": err.Error(),
	})
}

func success(message string, extra map[string]any) (string, error) {
	payload := map[string]any{
		"success": true,
		"message": message,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return marshalResult(payload)
}

func marshalResult(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding tool result: %w", err)
	}
	return string(out), nil
}
