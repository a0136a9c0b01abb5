package domain

import (
	"context"
	"time"
)

// Service provides typed access to runtime settings with defaults.
type Service interface {
	GetString(ctx context.Context, key string, def string) (string, error)
	GetDuration(ctx context.Context, key string, def time.Duration) (time.Duration, error)
	GetInt(ctx context.Context, key string, def int) (int, error)
	GetBool(ctx context.Context, key string, def bool) (bool, error)
}

// Repository abstracts storage of runtime settings.
type Repository interface {
	// Get returns (value, found, err) for an exact key.
	Get(ctx context.Context, key string) (string, bool, error)
	// Upsert stores a key. Secret values are masked when listed.
	Upsert(ctx context.Context, key string, value string, secret bool) error
	// IsSecret reports whether key holds a secret.
	IsSecret(key string) bool
}

// Draft provider keys
const (
	KeyDraftProvider  = "drafts.provider" // values: gmail | smtp | brevo
	KeySMTPHost       = "drafts.smtp.host"
	KeySMTPPort       = "drafts.smtp.port"
	KeySMTPUsername   = "drafts.smtp.username"
	KeySMTPPassword   = "drafts.smtp.password"
	KeySMTPFrom       = "drafts.smtp.from"
	KeyBrevoAPIKey    = "drafts.brevo.api_key"
	KeyBrevoSender    = "drafts.brevo.sender"
	KeyGmailSender    = "drafts.gmail.sender"
	KeyDraftSignature = "drafts.signature"
)

// Rate limiting keys. Windows use Go duration strings (e.g., "1m", "10s").
// Limits are integers.
const (
	// GET /api/customers?refresh=true
	KeyRLRefreshLimit  = "customers.ratelimit.refresh.limit"
	KeyRLRefreshWindow = "customers.ratelimit.refresh.window"
	// POST /api/create-drafts
	KeyRLDraftsLimit  = "drafts.ratelimit.create.limit"
	KeyRLDraftsWindow = "drafts.ratelimit.create.window"
	// PUT /api/settings
	KeyRLSettingsPutLimit  = "settings.ratelimit.put.limit"
	KeyRLSettingsPutWindow = "settings.ratelimit.put.window"
)
