package service

import (
	"context"
	"strings"
	"time"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/domain"
)

const (
	defaultFirstName = "Valued Customer"
	unknownSince     = "N/A"
)

var sinceLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// Service renders a fixed template set.
type Service struct {
	order []string
	byID  map[string]domain.Template
}

var _ domain.Service = (*Service)(nil)

// New indexes templates by ID. Later duplicates replace earlier ones.
func New(templates []domain.Template) *Service {
	s := &Service{byID: make(map[string]domain.Template, len(templates))}
	for _, t := range templates {
		if _, dup := s.byID[t.ID]; !dup {
			s.order = append(s.order, t.ID)
		}
		s.byID[t.ID] = t
	}
	return s
}

// List returns the templates without bodies.
func (s *Service) List(context.Context) []domain.Template {
	out := make([]domain.Template, 0, len(s.order))
	for _, id := range s.order {
		t := s.byID[id]
		t.Body = ""
		out = append(out, t)
	}
	return out
}

func (s *Service) Get(_ context.Context, id string) (domain.Template, error) {
	t, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Template{}, domain.ErrTemplateNotFound
	}
	return t, nil
}

func (s *Service) Render(ctx context.Context, id string, r domain.Recipient) (domain.Message, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}
	rep := strings.NewReplacer(
		"{first_name}", FirstName(r),
		"{customer_since}", CustomerSince(r.CustomerSince),
	)
	return domain.Message{
		To:      strings.TrimSpace(r.Email),
		Subject: rep.Replace(t.Subject),
		Body:    rep.Replace(t.Body),
	}, nil
}

// FirstName is the greeting name, falling back to "Valued Customer".
func FirstName(r domain.Recipient) string {
	if n := strings.TrimSpace(r.FirstName); n != "" {
		return n
	}
	return defaultFirstName
}

// CustomerSince renders s as "January 2006", or "N/A" when it does not parse.
func CustomerSince(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownSince
	}
	for _, layout := range sinceLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2006")
		}
	}
	return unknownSince
}
