package customers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	ctrl "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/controller"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/domain"
	repo "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/repository"
	svc "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/service"
	evdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/events/domain"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/logger"
	rl "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/platform/ratelimit"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
)

// Module is the wired customer engine.
type Module struct {
	Cache    *svc.Cache
	Service  *svc.Service
	defaults svc.CriteriaDefaults
	log      zerolog.Logger
}

// New wires fetcher, aggregator, cache and query service from cfg.
func New(cfg config.Config, log zerolog.Logger, pub evdomain.Publisher) *Module {
	fetcher := repo.NewShopify(repo.OptionsFromConfig(cfg), &http.Client{Timeout: cfg.ShopifyTimeout})
	fetcher.SetLogger(logger.Component(log, "shopify"))
	return NewWithFetcher(cfg, fetcher, log, pub)
}

// NewWithFetcher wires the engine around an arbitrary fetcher.
func NewWithFetcher(cfg config.Config, f domain.Fetcher, log zerolog.Logger, pub evdomain.Publisher) *Module {
	loader := svc.NewLoader(f, svc.NewAggregator(cfg.GiftCardProductType))
	cache := svc.NewCache(loader, cfg.CustomerCacheTTL, domain.ParseGiftCardPolicy(cfg.GiftCardPolicy), svc.SystemClock)
	cache.SetLogger(logger.Component(log, "customer_cache"))
	if pub != nil {
		cache.WithPublisher(pub)
	}
	s := svc.New(cache, svc.SystemClock)
	s.SetLogger(logger.Component(log, "customers"))
	return &Module{
		Cache:   cache,
		Service: s,
		defaults: svc.CriteriaDefaults{
			WinbackGapDays: cfg.WinbackDefaultGapDays,
			RequireEmail:   cfg.RequireEmail,
		},
		log: log,
	}
}

// Register mounts the HTTP routes. settings and store may be nil.
func (m *Module) Register(e *echo.Echo, settings sdomain.Service, store rl.Store) {
	c := ctrl.New(m.Service, m.defaults).WithLogger(logger.Component(m.log, "customers_http"))
	if settings != nil {
		c.WithSettings(settings)
	}
	if store != nil {
		c.WithRateLimit(store)
	}
	c.Register(e)
}

// Warm forces a refresh and returns the number of aggregated customers.
func (m *Module) Warm(ctx context.Context) (int, error) {
	res, err := m.Cache.Get(ctx, svc.Request{ForceRefresh: true})
	if err != nil {
		return 0, err
	}
	return len(res.Snapshot.Records), nil
}
