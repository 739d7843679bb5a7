// Package store persists SMTP server configurations, email templates, and
// send logs as plain JSON documents under a single data root. Every
// operation degrades to a safe fallback or a boolean failure signal instead
// of propagating errors: a transient disk problem must not take down the
// host process.
package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shineum/mcp-mailer/internal/email"
)

const (
	configFile   = "config.json"
	templatesDir = "templates"
	logFile      = "email-logs.json"

	// Bulk-send pacing defaults persisted in the config document.
	defaultBatchSize  = 10
	defaultBatchDelay = 1000
)

// RateLimit holds the bulk-send pacing settings stored alongside the SMTP
// server list in the configuration document.
type RateLimit struct {
	BatchSize           int `json:"batchSize"`
	DelayBetweenBatches int `json:"delayBetweenBatches"`
}

// configDocument is the on-disk shape of config.json.
type configDocument struct {
	SMTPServers []email.ServerConfig `json:"smtpServers"`
	RateLimit   RateLimit            `json:"rateLimit"`
}

// Store reads and writes the JSON documents under one data root. The root
// is passed in explicitly so tests can point at a temporary directory.
// logMu serializes access to the log document: unlike the other documents,
// the log is written from the concurrent per-recipient sends of a batch.
type Store struct {
	root  string
	logMu sync.Mutex
}

// New creates a Store rooted at dir. Call EnsureLayout before first use.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the data root directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureLayout creates the data root and templates directory, and seeds the
// configuration document and the built-in templates on first run.
func (s *Store) EnsureLayout() error {
	if err := os.MkdirAll(s.root, 0o700); err != nil {
		return err
	}
	if err := os.MkdirAll(s.templatesPath(), 0o700); err != nil {
		return err
	}

	if _, err := os.Stat(s.configPath()); os.IsNotExist(err) {
		doc := configDocument{
			SMTPServers: DefaultConfigs(),
			RateLimit:   RateLimit{BatchSize: defaultBatchSize, DelayBetweenBatches: defaultBatchDelay},
		}
		if !s.writeConfigDocument(doc) {
			slog.Warn("store: could not seed config document", "path", s.configPath())
		}
	}

	entries, err := os.ReadDir(s.templatesPath())
	if err == nil && len(entries) == 0 {
		for _, t := range DefaultTemplates() {
			if !s.WriteTemplate(t) {
				slog.Warn("store: could not seed template", "id", t.ID)
			}
		}
	}

	return nil
}

// ReadConfigs returns all SMTP server entries from the configuration
// document. On read or parse failure it returns the built-in fallback list,
// never an error.
func (s *Store) ReadConfigs() []email.ServerConfig {
	doc, ok := s.readConfigDocument()
	if !ok {
		return DefaultConfigs()
	}
	return doc.SMTPServers
}

// WriteConfigs overwrites the smtpServers field of the configuration
// document, preserving the other top-level fields. Returns false on failure.
func (s *Store) WriteConfigs(configs []email.ServerConfig) bool {
	raw := map[string]json.RawMessage{}
	if data, err := os.ReadFile(s.configPath()); err == nil {
		if err := json.Unmarshal(data, &raw); err != nil {
			slog.Warn("store: config document unreadable, rewriting", "error", err)
			raw = map[string]json.RawMessage{}
		}
	}

	servers, err := json.Marshal(configs)
	if err != nil {
		slog.Error("store: cannot encode smtp server list", "error", err)
		return false
	}
	raw["smtpServers"] = servers
	if _, ok := raw["rateLimit"]; !ok {
		limits, _ := json.Marshal(RateLimit{BatchSize: defaultBatchSize, DelayBetweenBatches: defaultBatchDelay})
		raw["rateLimit"] = limits
	}

	return s.writeJSON(s.configPath(), raw)
}

// RateLimitSettings returns the persisted bulk-send pacing, falling back to
// the built-in defaults when the document is missing or does not carry them.
func (s *Store) RateLimitSettings() RateLimit {
	limits := RateLimit{BatchSize: defaultBatchSize, DelayBetweenBatches: defaultBatchDelay}
	doc, ok := s.readConfigDocument()
	if !ok {
		return limits
	}
	if doc.RateLimit.BatchSize > 0 {
		limits.BatchSize = doc.RateLimit.BatchSize
	}
	if doc.RateLimit.DelayBetweenBatches > 0 {
		limits.DelayBetweenBatches = doc.RateLimit.DelayBetweenBatches
	}
	return limits
}

// ReadTemplates enumerates the templates directory, one document per
// template, in filename order. Malformed documents are skipped. On total
// enumeration failure the built-in template set is returned.
func (s *Store) ReadTemplates() []email.Template {
	entries, err := os.ReadDir(s.templatesPath())
	if err != nil {
		slog.Warn("store: cannot enumerate templates, using built-ins", "error", err)
		return DefaultTemplates()
	}

	templates := make([]email.Template, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.templatesPath(), e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("store: cannot read template document", "path", path, "error", err)
			continue
		}
		var t email.Template
		if err := json.Unmarshal(data, &t); err != nil {
			slog.Warn("store: skipping malformed template document", "path", path, "error", err)
			continue
		}
		templates = append(templates, t)
	}
	return templates
}

// WriteTemplate writes or overwrites the document named by the template id.
func (s *Store) WriteTemplate(t email.Template) bool {
	return s.writeJSON(s.templatePath(t.ID), t)
}

// DeleteTemplate removes the document named by id. Deleting a nonexistent
// id is not an error.
func (s *Store) DeleteTemplate(id string) bool {
	err := os.Remove(s.templatePath(id))
	if err != nil && !os.IsNotExist(err) {
		slog.Error("store: cannot delete template document", "id", id, "error", err)
		return false
	}
	return true
}

// AppendLog appends one entry to the log document. The whole document is
// read and rewritten per append, so concurrent appends from a batch must
// not interleave: each would rewrite from its own stale read and drop the
// entries of the others.
func (s *Store) AppendLog(entry email.LogEntry) bool {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	entries := s.readLogDocument()
	entries = append(entries, entry)
	return s.writeJSON(s.logPath(), entries)
}

// ReadLogs returns log entries newest-first. filterBySuccess, when non-nil,
// keeps only entries with a matching success flag. limit, when positive,
// caps the number of entries returned.
func (s *Store) ReadLogs(limit int, filterBySuccess *bool) []email.LogEntry {
	s.logMu.Lock()
	entries := s.readLogDocument()
	s.logMu.Unlock()

	out := make([]email.LogEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if filterBySuccess != nil && entries[i].Success != *filterBySuccess {
			continue
		}
		out = append(out, entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (s *Store) readConfigDocument() (configDocument, bool) {
	var doc configDocument
	data, err := os.ReadFile(s.configPath())
	if err != nil {
		slog.Warn("store: cannot read config document", "error", err)
		return doc, false
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("store: cannot parse config document", "error", err)
		return doc, false
	}
	return doc, true
}

func (s *Store) writeConfigDocument(doc configDocument) bool {
	return s.writeJSON(s.configPath(), doc)
}

func (s *Store) readLogDocument() []email.LogEntry {
	data, err := os.ReadFile(s.logPath())
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("store: cannot read log document, starting empty", "error", err)
		}
		return nil
	}
	var entries []email.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("store: log document corrupt, starting empty", "error", err)
		return nil
	}
	return entries
}

func (s *Store) writeJSON(path string, v any) bool {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("store: cannot encode document", "path", path, "error", err)
		return false
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		slog.Error("store: cannot write document", "path", path, "error", err)
		return false
	}
	return true
}

func (s *Store) configPath() string {
	return filepath.Join(s.root, configFile)
}

func (s *Store) templatesPath() string {
	return filepath.Join(s.root, templatesDir)
}

func (s *Store) templatePath(id string) string {
	return filepath.Join(s.templatesPath(), id+".json")
}

func (s *Store) logPath() string {
	return filepath.Join(s.root, logFile)
}
