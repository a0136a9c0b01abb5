package service

import (
	"context"
	"strings"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	ddomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/domain"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
)

// Ensure Router implements domain.Drafter
var _ ddomain.Drafter = (*Router)(nil)

// Router picks the provider named by the drafts.provider setting on every
// call, so it can be switched at runtime.
type Router struct {
	cfg      config.Config
	settings sdomain.Service
	gmail    ddomain.Drafter
	smtp     ddomain.Drafter
	brevo    ddomain.Drafter
}

func NewRouter(settings sdomain.Service, cfg config.Config, gmail, smtp, brevo ddomain.Drafter) *Router {
	return &Router{cfg: cfg, settings: settings, gmail: gmail, smtp: smtp, brevo: brevo}
}

func (r *Router) pick(ctx context.Context) ddomain.Drafter {
	prov, _ := r.settings.GetString(ctx, sdomain.KeyDraftProvider, r.cfg.DraftProvider)
	switch strings.ToLower(prov) {
	case "smtp":
		return r.smtp
	case "brevo":
		return r.brevo
	default:
		return r.gmail
	}
}

func (r *Router) Name() string { return r.pick(context.Background()).Name() }

func (r *Router) Check(ctx context.Context) error { return r.pick(ctx).Check(ctx) }

func (r *Router) Create(ctx context.Context, d ddomain.Draft) (string, error) {
	return r.pick(ctx).Create(ctx, d)
}

// For returns the provider a batch should use for its whole run.
func (r *Router) For(ctx context.Context) ddomain.Drafter { return r.pick(ctx) }
