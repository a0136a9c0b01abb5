package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/domain"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/customers/service"
	rl "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/platform/ratelimit"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
)

// Controller serves the customer query endpoint.
type Controller struct {
	svc      domain.Service
	defaults service.CriteriaDefaults
	settings sdomain.Service
	rlStore  rl.Store
	log      zerolog.Logger
}

func New(svc domain.Service, defaults service.CriteriaDefaults) *Controller {
	return &Controller{svc: svc, defaults: defaults, log: zerolog.Nop()}
}

// WithSettings lets rate limits be tuned at runtime.
func (h *Controller) WithSettings(s sdomain.Service) *Controller { h.settings = s; return h }

// WithRateLimit injects a shared Store for distributed rate limiting.
func (h *Controller) WithRateLimit(store rl.Store) *Controller { h.rlStore = store; return h }

// WithLogger sets the request logger.
func (h *Controller) WithLogger(l zerolog.Logger) *Controller { h.log = l; return h }

// Register mounts GET /api/customers. Forced refreshes are rate limited,
// 6/min per client by default.
func (h *Controller) Register(e *echo.Echo) {
	defWin := time.Minute
	defLim := 6
	policy := rl.Policy{
		Name:   "customers:refresh",
		Window: defWin,
		Limit:  defLim,
		Key:    rl.KeyIP("customers:refresh"),
		Skip:   func(c echo.Context) bool { return !isTrue(c.QueryParam("refresh")) },
	}
	if h.settings != nil {
		policy.WindowFunc = func(c echo.Context) time.Duration {
			d, _ := h.settings.GetDuration(c.Request().Context(), sdomain.KeyRLRefreshWindow, defWin)
			return d
		}
		policy.LimitFunc = func(c echo.Context) int {
			n, _ := h.settings.GetInt(c.Request().Context(), sdomain.KeyRLRefreshLimit, defLim)
			return n
		}
	}
	var mw echo.MiddlewareFunc
	if h.rlStore != nil {
		mw = rl.MiddlewareWithStore(policy, h.rlStore)
	} else {
		mw = rl.Middleware(policy)
	}
	e.GET("/api/customers", h.list, mw)
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

type listResponse struct {
	Customers      []domain.CustomerView `json:"customers"`
	Success        bool                  `json:"success"`
	Count          int                   `json:"count"`
	TotalCustomers int                   `json:"total_customers"`
	CacheInfo      domain.CacheInfo      `json:"cache_info"`

	// Flat copies of CacheInfo kept for existing dashboards.
	CacheAge       int            `json:"cache_age"`
	CacheTTL       int            `json:"cache_ttl"`
	FromCache      bool           `json:"from_cache"`
	FiltersApplied filtersApplied `json:"filters_applied"`
}

type filtersApplied struct {
	Search         string   `json:"search"`
	MinOrders      *float64 `json:"min_orders"`
	MaxOrders      *float64 `json:"max_orders"`
	MinSpent       *float64 `json:"min_spent"`
	MaxSpent       *float64 `json:"max_spent"`
	DaysSinceOrder *int     `json:"days_since_order"`
	Winback        bool     `json:"winback"`
	WinbackGapDays *int     `json:"winback_gap_days"`
	GiftCard       bool     `json:"gift_card"`
	SortBy         string   `json:"sort_by"`
	SortOrder      string   `json:"sort_order"`
}

func asFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func (h *Controller) list(c echo.Context) error {
	var raw domain.RawCriteria
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &raw); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid query", "success": false})
	}
	q := domain.Query{
		Criteria:      service.ParseCriteria(raw, h.defaults),
		SortKey:       service.ParseSortKey(c.QueryParam("sort_by")),
		SortDirection: service.ParseSortDirection(c.QueryParam("sort_order")),
		ForceRefresh:  isTrue(c.QueryParam("refresh")),
	}

	res, err := h.svc.Query(c.Request().Context(), q)
	if err != nil {
		return h.fail(c, err)
	}

	applied := filtersApplied{
		Search:         q.Criteria.Search,
		MinOrders:      asFloat(q.Criteria.MinOrders),
		MaxOrders:      asFloat(q.Criteria.MaxOrders),
		MinSpent:       asFloat(q.Criteria.MinSpent),
		MaxSpent:       asFloat(q.Criteria.MaxSpent),
		DaysSinceOrder: q.Criteria.DaysSinceOrder,
		Winback:        q.Criteria.Winback,
		GiftCard:       q.Criteria.GiftCardRequired,
		SortBy:         string(q.SortKey),
		SortOrder:      string(q.SortDirection),
	}
	if q.Criteria.Winback {
		gap := q.Criteria.WinbackGapDays
		applied.WinbackGapDays = &gap
	}
	customers := res.Customers
	if customers == nil {
		customers = []domain.CustomerView{}
	}
	return c.JSON(http.StatusOK, listResponse{
		Customers:      customers,
		Success:        true,
		Count:          len(customers),
		TotalCustomers: res.CacheInfo.TotalCustomers,
		CacheInfo:      res.CacheInfo,
		CacheAge:       res.CacheInfo.CacheAgeSeconds,
		CacheTTL:       res.CacheInfo.CacheTTLSeconds,
		FromCache:      res.CacheInfo.FromCache,
		FiltersApplied: applied,
	})
}

func (h *Controller) fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	var fe *domain.FetchError
	var ae *domain.AggregationError
	switch {
	case errors.As(err, &fe):
		status = http.StatusBadGateway
	case errors.As(err, &ae):
		status = http.StatusInternalServerError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	h.log.Error().Err(err).Int("status", status).Msg("customer query failed")
	return c.JSON(status, map[string]any{"error": err.Error(), "success": false})
}
