package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	ddomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/domain"
	rl "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/platform/ratelimit"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/platform/validation"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
	tdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/domain"
)

// Batcher is the draft service as seen by HTTP.
type Batcher interface {
	CreateBatch(ctx context.Context, req ddomain.BatchRequest) (ddomain.BatchResult, error)
	Check(ctx context.Context) error
}

type Controller struct {
	svc      Batcher
	settings sdomain.Service
	rlStore  rl.Store
	log      zerolog.Logger
}

func New(svc Batcher) *Controller { return &Controller{svc: svc, log: zerolog.Nop()} }

// WithSettings lets rate limits be tuned at runtime.
func (h *Controller) WithSettings(s sdomain.Service) *Controller { h.settings = s; return h }

// WithRateLimit injects a shared Store for distributed rate limiting.
func (h *Controller) WithRateLimit(store rl.Store) *Controller { h.rlStore = store; return h }

func (h *Controller) WithLogger(l zerolog.Logger) *Controller { h.log = l; return h }

// Register mounts the draft endpoints. Defaults: create 10/min.
func (h *Controller) Register(e *echo.Echo) {
	defWin := time.Minute
	defLim := 10
	policy := rl.Policy{Name: "drafts:create", Window: defWin, Limit: defLim, Key: rl.KeyIP("drafts:create")}
	if h.settings != nil {
		policy.WindowFunc = func(c echo.Context) time.Duration {
			d, _ := h.settings.GetDuration(c.Request().Context(), sdomain.KeyRLDraftsWindow, defWin)
			return d
		}
		policy.LimitFunc = func(c echo.Context) int {
			n, _ := h.settings.GetInt(c.Request().Context(), sdomain.KeyRLDraftsLimit, defLim)
			return n
		}
	}
	var mw echo.MiddlewareFunc
	if h.rlStore != nil {
		mw = rl.MiddlewareWithStore(policy, h.rlStore)
	} else {
		mw = rl.Middleware(policy)
	}
	e.POST("/api/create-drafts", h.create, mw)
	e.GET("/api/auth/gmail", h.gmailAuth)
}

type createResponse struct {
	Success bool `json:"success"`
	ddomain.BatchResult
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]any{"error": msg, "success": false})
}

func (h *Controller) create(c echo.Context) error {
	var req ddomain.BatchRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid json")
	}
	req.BossEmail = strings.TrimSpace(req.BossEmail)
	if req.BossEmail == "" {
		return fail(c, http.StatusBadRequest, "Boss email is required")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}

	res, err := h.svc.CreateBatch(c.Request().Context(), req)
	switch {
	case errors.Is(err, tdomain.ErrTemplateNotFound):
		return fail(c, http.StatusNotFound, "Template not found")
	case errors.Is(err, ddomain.ErrAuthRequired):
		return c.JSON(http.StatusUnauthorized, map[string]any{
			"error":         "Gmail authentication required. Please authenticate first.",
			"success":       false,
			"auth_required": true,
		})
	case err != nil:
		h.log.Error().Err(err).Str("template_id", req.TemplateID).Msg("draft batch failed")
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, createResponse{Success: true, BatchResult: res})
}

// gmailAuth reports whether the configured provider can create drafts.
// The OAuth consent flow itself runs out of band.
func (h *Controller) gmailAuth(c echo.Context) error {
	if err := h.svc.Check(c.Request().Context()); err != nil {
		return c.JSON(http.StatusOK, map[string]any{
			"message":       "Please configure Gmail OAuth",
			"success":       false,
			"auth_required": errors.Is(err, ddomain.ErrAuthRequired),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Draft provider is ready", "success": true})
}
