package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	ddomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/domain"
	evdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/events/domain"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/metrics"
	tdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/domain"
)

// DefaultParallelism bounds concurrent provider calls within a batch.
const DefaultParallelism = 4

type selector interface {
	For(ctx context.Context) ddomain.Drafter
}

// Service renders a template per customer and stores the drafts.
type Service struct {
	templates tdomain.Service
	drafter   ddomain.Drafter
	pub       evdomain.Publisher
	log       zerolog.Logger
	parallel  int
}

func New(templates tdomain.Service, drafter ddomain.Drafter) *Service {
	return &Service{templates: templates, drafter: drafter, log: zerolog.Nop(), parallel: DefaultParallelism}
}

// WithPublisher injects a publisher for batch events.
func (s *Service) WithPublisher(p evdomain.Publisher) *Service { s.pub = p; return s }

func (s *Service) SetLogger(l zerolog.Logger) { s.log = l }

// Check reports whether the current provider is usable.
func (s *Service) Check(ctx context.Context) error { return s.provider(ctx).Check(ctx) }

func (s *Service) provider(ctx context.Context) ddomain.Drafter {
	if sel, ok := s.drafter.(selector); ok {
		return sel.For(ctx)
	}
	return s.drafter
}

// CreateBatch returns tdomain.ErrTemplateNotFound or the provider's Check
// error before doing any work. After that, failures are per customer and
// reported in the result.
func (s *Service) CreateBatch(ctx context.Context, req ddomain.BatchRequest) (ddomain.BatchResult, error) {
	if _, err := s.templates.Get(ctx, req.TemplateID); err != nil {
		return ddomain.BatchResult{}, err
	}
	p := s.provider(ctx)
	if err := p.Check(ctx); err != nil {
		return ddomain.BatchResult{}, err
	}

	type outcome struct {
		id  string
		err error
	}
	outcomes := make([]outcome, len(req.Customers))
	var g errgroup.Group
	g.SetLimit(s.parallel)
	for i, cust := range req.Customers {
		g.Go(func() error {
			id, err := s.createOne(ctx, p, req, cust)
			outcomes[i] = outcome{id: id, err: err}
			return nil
		})
	}
	_ = g.Wait()

	res := ddomain.BatchResult{Provider: p.Name(), Drafts: []ddomain.Created{}, Errors: []ddomain.Failure{}}
	for i, o := range outcomes {
		email := strings.TrimSpace(req.Customers[i].Email)
		if o.err != nil {
			metrics.IncDraft(p.Name(), "failure")
			res.Errors = append(res.Errors, ddomain.Failure{Customer: email, Error: o.err.Error()})
			continue
		}
		metrics.IncDraft(p.Name(), "success")
		res.Drafts = append(res.Drafts, ddomain.Created{Customer: email, DraftID: o.id})
	}
	res.Created = len(res.Drafts)

	s.log.Info().
		Str("provider", res.Provider).
		Str("template_id", req.TemplateID).
		Int("created", res.Created).
		Int("failed", len(res.Errors)).
		Msg("draft batch finished")
	if s.pub != nil {
		_ = s.pub.Publish(ctx, evdomain.Event{
			ID:   uuid.New(),
			Type: "drafts.batch.created",
			Meta: map[string]string{
				"provider":    res.Provider,
				"template_id": req.TemplateID,
				"created":     fmt.Sprint(res.Created),
				"failed":      fmt.Sprint(len(res.Errors)),
			},
			Time: time.Now().UTC(),
		})
	}
	return res, nil
}

func (s *Service) createOne(ctx context.Context, p ddomain.Drafter, req ddomain.BatchRequest, r tdomain.Recipient) (string, error) {
	if strings.TrimSpace(r.Email) == "" {
		return "", fmt.Errorf("customer has no email address")
	}
	msg, err := s.templates.Render(ctx, req.TemplateID, r)
	if err != nil {
		return "", err
	}
	return p.Create(ctx, ddomain.Draft{To: msg.To, Subject: msg.Subject, Body: msg.Body, Reviewer: req.BossEmail})
}
