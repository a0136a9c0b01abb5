package domain

import (
	"context"
	"errors"

	tdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/domain"
)

// ErrAuthRequired means the provider's credentials are missing, invalid or
// revoked. Clients should re-run the OAuth setup.
var ErrAuthRequired = errors.New("gmail authentication required")

// Draft is a message waiting for the reviewer to send it.
type Draft struct {
	To       string
	Subject  string
	Body     string
	Reviewer string
}

// Drafter is a pluggable draft backend. Gmail stores a real draft in the
// reviewer's mailbox; mail backends deliver the draft to the reviewer.
type Drafter interface {
	// Check verifies the provider can be used before a batch starts.
	Check(ctx context.Context) error
	// Create stores one draft and returns its provider ID.
	Create(ctx context.Context, d Draft) (id string, err error)
	Name() string
}

// BatchRequest asks for one draft per customer.
type BatchRequest struct {
	TemplateID string              `json:"template_id" validate:"required"`
	Customers  []tdomain.Recipient `json:"customers"`
	BossEmail  string              `json:"boss_email" validate:"required,email"`
}

type Created struct {
	Customer string `json:"customer"`
	DraftID  string `json:"draft_id"`
}

type Failure struct {
	Customer string `json:"customer"`
	Error    string `json:"error"`
}

// BatchResult lists per-customer outcomes in request order.
type BatchResult struct {
	Provider string    `json:"provider"`
	Created  int       `json:"created"`
	Drafts   []Created `json:"drafts"`
	Errors   []Failure `json:"errors"`
}
