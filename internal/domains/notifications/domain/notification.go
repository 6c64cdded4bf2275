package domain

import (
	"strings"
	"time"
)

const (
	// DefaultSenderID is the alphanumeric sender shown on the handset.
	DefaultSenderID = "Agizo"
	// NamePlaceholder is substituted with the recipient name when rendering a template.
	NamePlaceholder = "{name}"
	// DefaultTemplate is the order confirmation message.
	DefaultTemplate = "Hello {name}, your order has been received and processed."
)

// Recipient is the single addressee of a notification.
type Recipient struct {
	Name        string
	PhoneNumber string
	// Reference correlates the attempt log entry with the business event, e.g. "order:42".
	Reference string
}

// Receipt is what the SMS vendor reported for an accepted message.
type Receipt struct {
	Provider  string
	MessageID string
	Number    string
	Status    string
	Cost      string
}

// Render substitutes the recipient name into template, falling back to DefaultTemplate.
func Render(template string, recipient Recipient) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	return strings.ReplaceAll(template, NamePlaceholder, recipient.Name)
}

type AttemptStatus string

const (
	AttemptSent    AttemptStatus = "sent"
	AttemptFailed  AttemptStatus = "failed"
	AttemptRetried AttemptStatus = "retried"
	// AttemptSuperseded marks a failed attempt whose reference was later delivered.
	AttemptSuperseded AttemptStatus = "superseded"
)

// Attempt records one send through a vendor, successful or not.
type Attempt struct {
	ID         int64
	Provider   string
	SenderID   string
	Reference  string
	Message    string
	Recipients []string
	Status     AttemptStatus
	MessageID  string
	Cost       string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
