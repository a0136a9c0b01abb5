package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers"
	cdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/domain"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts"
	evsvc "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/events/service"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/logger"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/metrics"
	rl "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/platform/ratelimit"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/platform/validation"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/version"
)

const metricsPath = "/metrics"

// deps are the outside connections the server is built around. Nil fields
// fall back to the production implementations (or to none, for redis).
type deps struct {
	fetcher cdomain.Fetcher
	redis   *redis.Client
}

type server struct {
	echo      *echo.Echo
	customers *customers.Module
}

func newServer(cfg config.Config, log zerolog.Logger, d deps) (*server, error) {
	sm, err := settings.Load(cfg.SettingsFile)
	if err != nil {
		return nil, err
	}
	pub := evsvc.NewLogger(logger.Component(log, "events"))

	var store rl.Store
	if d.redis != nil {
		store = rl.NewRedisStore(d.redis)
	}

	var cm *customers.Module
	if d.fetcher != nil {
		cm = customers.NewWithFetcher(cfg, d.fetcher, log, pub)
	} else {
		cm = customers.New(cfg, log, pub)
	}
	tpl := templates.New()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return matchCORSOrigin(origin, cfg.CORSAllowedOrigins), nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(metrics.HTTPMiddleware(metricsPath))

	e.Validator = validation.New()

	sm.Register(e, store, pub)
	cm.Register(e, sm.Service, store)
	templates.Register(e, tpl)
	drafts.Register(e, cfg, sm.Service, tpl, store, pub, log)

	s := &server{echo: e, customers: cm}
	e.GET("/health", s.health(cfg))
	e.GET("/healthz", s.healthz(d.redis))
	e.GET(metricsPath, metrics.Handler())
	return s, nil
}

// health is the liveness probe the frontend polls.
func (s *server) health(cfg config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := map[string]any{
			"status":             "ok",
			"success":            true,
			"version":            version.String(),
			"time":               time.Now().UTC().Format(time.RFC3339),
			"shopify_configured": cfg.ShopifyConfigured(),
			"cache_loaded":       false,
		}
		if snap := s.customers.Cache.Current(); snap != nil {
			resp["cache_loaded"] = true
			resp["cached_customers"] = len(snap.Records)
			resp["cache_age"] = int(time.Since(snap.BuiltAt).Seconds())
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// healthz pings the rate-limit store when one is configured.
func (s *server) healthz(rc *redis.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		cacheStatus := "disabled"
		if rc != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
			defer cancel()
			cacheStatus = "ok"
			if !pingRedis(ctx, rc) {
				cacheStatus = "down"
			}
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
			"cache":  cacheStatus,
		})
	}
}

func pingRedis(ctx context.Context, rc *redis.Client) bool {
	start := time.Now()
	_, err := rc.Ping(ctx).Result()
	metrics.ObserveRedisPing(time.Since(start).Seconds())
	metrics.SetRedisUp(err == nil)
	return err == nil
}
