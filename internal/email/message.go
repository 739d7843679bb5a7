// Package email defines the core email data model shared by the send
// pipelines, the delivery providers, and the document store.
package email

import "fmt"

// Email represents a composed email message ready for delivery.
// Recipient addresses are fully formatted ("Name" <addr> or bare addr).
type Email struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	HTMLBody string
}

// Recipient is a single addressee with an optional display name. The name,
// when present, is also injected into per-recipient template data on bulk
// sends.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Format returns the RFC 5322 display form of the recipient:
// "Name" <addr> when a name is present, otherwise the bare address.
func (r Recipient) Format() string {
	if r.Name != "" {
		return fmt.Sprintf("%q <%s>", r.Name, r.Email)
	}
	return r.Email
}

// FormatAll formats a recipient list into addresses for a message header.
// A nil or empty list yields nil.
func FormatAll(recipients []Recipient) []string {
	if len(recipients) == 0 {
		return nil
	}
	out := make([]string, len(recipients))
	for i, r := range recipients {
		out[i] = r.Format()
	}
	return out
}
