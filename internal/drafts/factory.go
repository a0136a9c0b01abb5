package drafts

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	ctrl "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/controller"
	svc "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/service"
	evdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/events/domain"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/logger"
	rl "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/platform/ratelimit"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
	tdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/domain"
)

// Register wires the draft providers behind the router and mounts the
// HTTP routes. store and pub may be nil.
func Register(e *echo.Echo, cfg config.Config, settings sdomain.Service, templates tdomain.Service, store rl.Store, pub evdomain.Publisher, log zerolog.Logger) {
	router := svc.NewRouter(settings, cfg,
		svc.NewGmail(cfg, nil),
		svc.NewSMTP(settings, cfg),
		svc.NewBrevo(settings, cfg, nil),
	)
	s := svc.New(templates, router)
	s.SetLogger(logger.Component(log, "drafts"))
	if pub != nil {
		s.WithPublisher(pub)
	}
	c := ctrl.New(s).WithSettings(settings).WithLogger(logger.Component(log, "drafts_http"))
	if store != nil {
		c.WithRateLimit(store)
	}
	c.Register(e)
}
