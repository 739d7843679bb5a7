package store

import "github.com/shineum/mcp-mailer/internal/email"

// DefaultConfigs is the hard-coded fallback SMTP server list used when the
// configuration document is missing or unreadable, and as the first-run
// seed. The single entry is a placeholder the operator is expected to
// replace through the tool surface.
func DefaultConfigs() []email.ServerConfig {
	return []email.ServerConfig{
		{
			ID:     "default",
			Name:   "Default SMTP",
			Host:   "smtp.example.com",
			Port:   587,
			Secure: false,
			Auth: email.Auth{
				User: "user@example.com",
				Pass: "password",
			},
			IsDefault: true,
		},
	}
}

// DefaultTemplates is the built-in template set used when the templates
// directory cannot be enumerated, and as the first-run seed.
func DefaultTemplates() []email.Template {
	return []email.Template{
		{
			ID:      "welcome",
			Name:    "Welcome",
			Subject: "Welcome, {{name}}!",
			Body: "<h1>Welcome aboard, {{name}}!</h1>" +
				"<p>Thanks for joining. We sent this to {{email}}.</p>",
			IsDefault: true,
		},
		{
			ID:      "notification",
			Name:    "Notification",
			Subject: "{{subject}}",
			Body:    "<p>Hi {{name}},</p><p>{{message}}</p>",
		},
	}
}
