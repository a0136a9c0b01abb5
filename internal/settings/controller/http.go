package controller

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	evdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/events/domain"
	rl "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/platform/ratelimit"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
)

// Controller exposes the runtime settings the draft router and rate limits read.
// Only whitelisted keys can be changed.
type Controller struct {
	repo    sdomain.Repository
	service sdomain.Service
	rlStore rl.Store
	pub     evdomain.Publisher
}

func New(repo sdomain.Repository, service sdomain.Service) *Controller {
	return &Controller{repo: repo, service: service}
}

// Register mounts GET and PUT /api/settings.
func (h *Controller) Register(e *echo.Echo) {
	// Defaults: PUT 10/min
	putDefaultWin := time.Minute
	putDefaultLim := 10
	putPolicy := rl.Policy{
		Name:   "settings:put",
		Window: putDefaultWin,
		Limit:  putDefaultLim,
		Key:    rl.KeyIP("settings:put"),
		WindowFunc: func(c echo.Context) time.Duration {
			d, _ := h.service.GetDuration(c.Request().Context(), sdomain.KeyRLSettingsPutWindow, putDefaultWin)
			return d
		},
		LimitFunc: func(c echo.Context) int {
			n, _ := h.service.GetInt(c.Request().Context(), sdomain.KeyRLSettingsPutLimit, putDefaultLim)
			return n
		},
	}
	var putRL echo.MiddlewareFunc
	if h.rlStore != nil {
		putRL = rl.MiddlewareWithStore(putPolicy, h.rlStore)
	} else {
		putRL = rl.Middleware(putPolicy)
	}

	e.GET("/api/settings", h.getSettings)
	e.PUT("/api/settings", h.putSettings, putRL)
}

// WithRateLimit injects a shared Store for distributed rate limiting.
func (h *Controller) WithRateLimit(store rl.Store) *Controller { h.rlStore = store; return h }

// WithPublisher injects an audit event publisher.
func (h *Controller) WithPublisher(p evdomain.Publisher) *Controller { h.pub = p; return h }

type settingsResponse struct {
	DraftProvider  string `json:"draft_provider"`
	DraftSignature string `json:"draft_signature"`
	GmailSender    string `json:"gmail_sender,omitempty"`
	SMTPHost       string `json:"smtp_host,omitempty"`
	SMTPPort       string `json:"smtp_port,omitempty"`
	SMTPUsername   string `json:"smtp_username,omitempty"`
	SMTPPassword   string `json:"smtp_password,omitempty"` // masked
	SMTPFrom       string `json:"smtp_from,omitempty"`
	BrevoAPIKey    string `json:"brevo_api_key,omitempty"` // masked
	BrevoSender    string `json:"brevo_sender,omitempty"`
	// Rate limits
	RefreshLimit  string `json:"refresh_limit,omitempty"`
	RefreshWindow string `json:"refresh_window,omitempty"`
	DraftsLimit   string `json:"drafts_limit,omitempty"`
	DraftsWindow  string `json:"drafts_window,omitempty"`
}

type putSettingsRequest struct {
	DraftProvider  *string `json:"draft_provider"`
	DraftSignature *string `json:"draft_signature"`
	GmailSender    *string `json:"gmail_sender"`
	SMTPHost       *string `json:"smtp_host"`
	SMTPPort       *string `json:"smtp_port"`
	SMTPUsername   *string `json:"smtp_username"`
	SMTPPassword   *string `json:"smtp_password"`
	SMTPFrom       *string `json:"smtp_from"`
	BrevoAPIKey    *string `json:"brevo_api_key"`
	BrevoSender    *string `json:"brevo_sender"`
	RefreshLimit   *string `json:"refresh_limit"`
	RefreshWindow  *string `json:"refresh_window"`
	DraftsLimit    *string `json:"drafts_limit"`
	DraftsWindow   *string `json:"drafts_window"`
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func (h *Controller) getSettings(c echo.Context) error {
	ctx := c.Request().Context()
	get := func(key string) string {
		v, _ := h.service.GetString(ctx, key, "")
		return v
	}
	resp := settingsResponse{
		DraftProvider:  get(sdomain.KeyDraftProvider),
		DraftSignature: get(sdomain.KeyDraftSignature),
		GmailSender:    get(sdomain.KeyGmailSender),
		SMTPHost:       get(sdomain.KeySMTPHost),
		SMTPPort:       get(sdomain.KeySMTPPort),
		SMTPUsername:   get(sdomain.KeySMTPUsername),
		SMTPPassword:   mask(get(sdomain.KeySMTPPassword)),
		SMTPFrom:       get(sdomain.KeySMTPFrom),
		BrevoAPIKey:    mask(get(sdomain.KeyBrevoAPIKey)),
		BrevoSender:    get(sdomain.KeyBrevoSender),
		RefreshLimit:   get(sdomain.KeyRLRefreshLimit),
		RefreshWindow:  get(sdomain.KeyRLRefreshWindow),
		DraftsLimit:    get(sdomain.KeyRLDraftsLimit),
		DraftsWindow:   get(sdomain.KeyRLDraftsWindow),
	}
	return c.JSON(http.StatusOK, resp)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]any{"error": msg, "success": false})
}

var fieldValidator = validator.New()

func validEmail(s string) bool {
	return fieldValidator.Var(s, "email") == nil
}

func positiveInt(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n > 0
}

func positiveDuration(s string) bool {
	d, err := time.ParseDuration(s)
	return err == nil && d > 0
}

func (h *Controller) putSettings(c echo.Context) error {
	var req putSettingsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	ctx := c.Request().Context()

	type field struct {
		key    string
		val    *string
		secret bool
		valid  func(string) bool
		name   string
	}
	fields := []field{
		{sdomain.KeyDraftProvider, req.DraftProvider, false, func(s string) bool {
			switch strings.ToLower(s) {
			case "gmail", "smtp", "brevo":
				return true
			}
			return false
		}, "draft_provider"},
		{sdomain.KeyDraftSignature, req.DraftSignature, false, nil, "draft_signature"},
		{sdomain.KeyGmailSender, req.GmailSender, false, validEmail, "gmail_sender"},
		{sdomain.KeySMTPHost, req.SMTPHost, false, nil, "smtp_host"},
		{sdomain.KeySMTPPort, req.SMTPPort, false, positiveInt, "smtp_port"},
		{sdomain.KeySMTPUsername, req.SMTPUsername, false, nil, "smtp_username"},
		{sdomain.KeySMTPPassword, req.SMTPPassword, true, nil, "smtp_password"},
		{sdomain.KeySMTPFrom, req.SMTPFrom, false, validEmail, "smtp_from"},
		{sdomain.KeyBrevoAPIKey, req.BrevoAPIKey, true, nil, "brevo_api_key"},
		{sdomain.KeyBrevoSender, req.BrevoSender, false, validEmail, "brevo_sender"},
		{sdomain.KeyRLRefreshLimit, req.RefreshLimit, false, positiveInt, "refresh_limit"},
		{sdomain.KeyRLRefreshWindow, req.RefreshWindow, false, positiveDuration, "refresh_window"},
		{sdomain.KeyRLDraftsLimit, req.DraftsLimit, false, positiveInt, "drafts_limit"},
		{sdomain.KeyRLDraftsWindow, req.DraftsWindow, false, positiveDuration, "drafts_window"},
	}

	// Validate everything before writing anything.
	for _, f := range fields {
		if f.val == nil || f.valid == nil {
			continue
		}
		if v := strings.TrimSpace(*f.val); v != "" && !f.valid(v) {
			return badRequest(c, "invalid "+f.name)
		}
	}

	changed := make([]string, 0, len(fields))
	meta := map[string]string{}
	for _, f := range fields {
		if f.val == nil {
			continue
		}
		v := strings.TrimSpace(*f.val)
		if f.key == sdomain.KeyDraftProvider {
			v = strings.ToLower(v)
		}
		if err := h.repo.Upsert(ctx, f.key, v, f.secret); err != nil {
			return badRequest(c, err.Error())
		}
		changed = append(changed, f.key)
		if f.secret {
			meta[f.key] = "redacted"
		}
	}
	if h.pub != nil && len(changed) > 0 {
		meta["changed"] = strings.Join(changed, ",")
		_ = h.pub.Publish(ctx, evdomain.Event{ID: uuid.New(), Type: "settings.update.success", Meta: meta, Time: time.Now().UTC()})
	}
	return c.NoContent(http.StatusNoContent)
}
