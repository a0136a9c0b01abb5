package domain

import (
	"context"
	"errors"
)

// ErrTemplateNotFound is returned for an unknown template ID.
var ErrTemplateNotFound = errors.New("template not found")

// Template is an outreach email with {first_name} and {customer_since}
// placeholders in Subject and Body.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body,omitempty"`
}

// Recipient is the customer a template is rendered for. CustomerSince is
// kept as received (RFC 3339 or a bare date) since clients echo back what
// the customer listing returned.
type Recipient struct {
	ID            string `json:"id,omitempty"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	CustomerSince string `json:"customer_since"`
}

// Message is a rendered template addressed to a recipient.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Service lists and renders templates.
type Service interface {
	List(ctx context.Context) []Template
	Get(ctx context.Context, id string) (Template, error)
	Render(ctx context.Context, id string, r Recipient) (Message, error)
}
