// Package main is the entry point for the mailer MCP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/joho/godotenv"

	"github.com/shineum/mcp-mailer/internal/config"
	"github.com/shineum/mcp-mailer/internal/mailer"
	"github.com/shineum/mcp-mailer/internal/mcp"
	"github.com/shineum/mcp-mailer/internal/provider"
	"github.com/shineum/mcp-mailer/internal/provider/ses"
	"github.com/shineum/mcp-mailer/internal/provider/smtp"
	"github.com/shineum/mcp-mailer/internal/provider/stdout"
	"github.com/shineum/mcp-mailer/internal/store"
)

const (
	serverName    = "mcp-mailer"
	serverVersion = "1.0.0"

	serverInstructions = "Tools for sending email through configured SMTP servers, " +
		"managing reusable {{placeholder}} templates, and reading the send log."
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	httpAddr := flag.String("http", "", "serve MCP over HTTP on this address instead of stdio")
	flag.Parse()

	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging. Stdout carries the MCP stdio transport,
	// so logs go to stderr or to the configured file.
	closeLog, err := setupLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to setup logging", "error", err)
		os.Exit(1)
	}
	defer closeLog()

	// Prepare the document store
	st := store.New(cfg.DataDir)
	if err := st.EnsureLayout(); err != nil {
		slog.Error("failed to prepare data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	// Select email delivery provider
	prov := selectProvider(cfg)

	srv := mcp.NewServer(mcp.ServerConfig{
		Name:         serverName,
		Version:      serverVersion,
		Instructions: serverInstructions,
		Service:      mailer.New(st, prov),
	})
	srv.Use(mcpgo.Recover(), mcpgo.RequestID())

	slog.Info("starting mcp-mailer",
		"version", serverVersion,
		"data_dir", cfg.DataDir,
		"provider", prov.Name(),
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		slog.Info("received signal, initiating shutdown", "signal", sig)
		cancel()
	}()

	// Serve until the context is cancelled
	if *httpAddr != "" {
		err = srv.ServeHTTP(ctx, *httpAddr)
	} else {
		err = srv.ServeStdio(ctx)
	}
	if err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("mcp-mailer stopped")
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// configured level. The returned func closes the log file, if any.
func setupLogger(cfg config.LoggingConfig) (func(), error) {
	var logLevel slog.Level

	switch cfg.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	out := os.Stderr
	closeLog := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		closeLog = func() { f.Close() }
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
	return closeLog, nil
}

// selectProvider chooses the email delivery backend based on configuration.
// The default is real SMTP delivery using the stored server configs; ses
// routes every send through one Amazon SES account, and stdout prints the
// message instead of delivering it.
func selectProvider(cfg *config.Config) provider.Provider {
	switch cfg.Provider {
	case "smtp", "":
		return smtp.New()

	case "ses":
		if !cfg.SESConfigured() {
			slog.Error("SES provider selected but SES_REGION and SES_SENDER are required")
			os.Exit(1)
		}
		slog.Info("using AWS SES provider",
			"region", cfg.SES.Region,
			"sender", cfg.SES.Sender,
		)
		p, err := ses.New(context.Background(), ses.ProviderConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
			Sender:          cfg.SES.Sender,
		})
		if err != nil {
			slog.Error("failed to create SES provider", "error", err)
			os.Exit(1)
		}
		return p

	case "stdout":
		slog.Info("using stdout provider, no mail will be delivered")
		return stdout.New()

	default:
		slog.Error("unknown provider", "provider", cfg.Provider)
		os.Exit(1)
		return nil
	}
}
