package email

// UnknownConfig is the sentinel recorded in log entries when a send failed
// before an SMTP server configuration was resolved.
const UnknownConfig = "unknown"

// ServerConfig describes one SMTP server entry in the configuration document.
// At most one entry in the document carries IsDefault=true.
type ServerConfig struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Secure    bool   `json:"secure"`
	Auth      Auth   `json:"auth"`
	IsDefault bool   `json:"isDefault"`
}

// Auth holds SMTP credentials. User doubles as the fallback sender address
// when a send does not name an explicit from.
type Auth struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

// Redacted returns a copy safe to hand back over the tool surface.
func (c ServerConfig) Redacted() ServerConfig {
	if c.Auth.Pass != "" {
		c.Auth.Pass = "********"
	}
	return c
}

// Template is a stored email template. Subject and Body may contain
// {{key}} placeholders substituted at send time.
type Template struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	IsDefault bool   `json:"isDefault"`
}

// LogEntry is one append-only record of a single send attempt to a single
// recipient. Bulk sends of N recipients produce N entries.
type LogEntry struct {
	Timestamp  string `json:"timestamp"`
	SMTPConfig string `json:"smtpConfig"`
	TemplateID string `json:"templateId,omitempty"`
	Recipient  string `json:"recipient"`
	Subject    string `json:"subject"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
}

// Key implements the collection entry interface used by the single-default
// bookkeeping in the mailer package.
func (c *ServerConfig) Key() string           { return c.ID }
func (c *ServerConfig) DefaultFlag() bool     { return c.IsDefault }
func (c *ServerConfig) SetDefaultFlag(v bool) { c.IsDefault = v }

func (t *Template) Key() string           { return t.ID }
func (t *Template) DefaultFlag() bool     { return t.IsDefault }
func (t *Template) SetDefaultFlag(v bool) { t.IsDefault = v }
