package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Gift-card detail policies. See GiftCardPolicy.
const (
	GiftCardPolicyLazy  = "lazy"
	GiftCardPolicyEager = "eager"
	GiftCardPolicyOff   = "off"
)

type Config struct {
	AppEnv             string
	AppAddr            string
	CORSAllowedOrigins []string

	RedisAddr      string
	RedisDB        int
	RateLimitStore string // memory | redis

	ShopifyStoreURL    string
	ShopifyAccessToken string
	ShopifyAPIVersion  string
	ShopifyPageSize    int
	ShopifyMaxRetries  int
	ShopifyPageDelay   time.Duration
	ShopifyTimeout     time.Duration

	CustomerCacheTTL      time.Duration
	GiftCardPolicy        string // lazy | eager | off
	GiftCardProductType   string
	WinbackDefaultGapDays int
	RequireEmail          bool

	SettingsFile string

	DraftProvider    string // gmail | smtp | brevo
	GmailCredentials string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	SMTPFrom         string
	BrevoAPIKey      string
	BrevoSender      string
}

func Load() (Config, error) {
	c := Config{}

	c.AppEnv = getEnv("APP_ENV", "development")
	c.AppAddr = getEnv("APP_ADDR", ":5000")
	c.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))

	c.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	c.RedisDB = getInt("REDIS_DB", 0)
	c.RateLimitStore = strings.ToLower(getEnv("RATE_LIMIT_STORE", "memory"))

	c.ShopifyStoreURL = strings.TrimSuffix(getEnv("SHOPIFY_STORE_URL", ""), "/")
	// SHOPIFY_PASSWORD is the legacy private-app name for the admin token.
	c.ShopifyAccessToken = getEnv("SHOPIFY_ACCESS_TOKEN", getEnv("SHOPIFY_PASSWORD", ""))
	c.ShopifyAPIVersion = getEnv("SHOPIFY_API_VERSION", "2024-01")
	c.ShopifyPageSize = getInt("SHOPIFY_PAGE_SIZE", 250)
	if c.ShopifyPageSize <= 0 || c.ShopifyPageSize > 250 {
		c.ShopifyPageSize = 250
	}
	c.ShopifyMaxRetries = getInt("SHOPIFY_MAX_RETRIES", 5)
	if c.ShopifyMaxRetries <= 0 {
		c.ShopifyMaxRetries = 1
	}
	c.ShopifyPageDelay = getDuration("SHOPIFY_PAGE_DELAY", 500*time.Millisecond)
	c.ShopifyTimeout = getDuration("SHOPIFY_TIMEOUT", 30*time.Second)

	c.CustomerCacheTTL = getDuration("CUSTOMER_CACHE_TTL", 12*time.Hour)
	if c.CustomerCacheTTL <= 0 {
		c.CustomerCacheTTL = 12 * time.Hour
	}
	policy := strings.ToLower(getEnv("GIFT_CARD_DETAIL_POLICY", GiftCardPolicyLazy))
	switch policy {
	case GiftCardPolicyLazy, GiftCardPolicyEager, GiftCardPolicyOff:
	default:
		policy = GiftCardPolicyLazy
	}
	c.GiftCardPolicy = policy
	c.GiftCardProductType = getEnv("GIFT_CARD_PRODUCT_TYPE", "gift card")
	c.WinbackDefaultGapDays = getInt("WINBACK_DEFAULT_GAP_DAYS", 60)
	c.RequireEmail = getBool("REQUIRE_EMAIL", true)

	c.SettingsFile = getEnv("SETTINGS_FILE", "")

	c.DraftProvider = strings.ToLower(getEnv("DRAFT_PROVIDER", "gmail"))
	c.GmailCredentials = getEnv("GMAIL_CREDENTIALS", "")
	c.SMTPHost = getEnv("SMTP_HOST", "localhost")
	c.SMTPPort = getInt("SMTP_PORT", 1025)
	c.SMTPUsername = getEnv("SMTP_USERNAME", "")
	c.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	c.SMTPFrom = getEnv("SMTP_FROM", "no-reply@local.dev")
	c.BrevoAPIKey = getEnv("BREVO_API_KEY", "")
	c.BrevoSender = getEnv("BREVO_SENDER", c.SMTPFrom)

	return c, nil
}

// ShopifyConfigured reports whether the upstream store credentials are present.
func (c Config) ShopifyConfigured() bool {
	return c.ShopifyStoreURL != "" && c.ShopifyAccessToken != ""
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
		// bare integers are seconds, as CACHE_TTL was in the old backend
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	if len(res) == 0 {
		return []string{"*"}
	}
	return res
}

func (c Config) String() string {
	return fmt.Sprintf("env=%s addr=%s shop=%s cache_ttl=%s gift_card=%s redis=%s/%d",
		c.AppEnv, c.AppAddr, c.ShopifyStoreURL, c.CustomerCacheTTL, c.GiftCardPolicy, c.RedisAddr, c.RedisDB)
}
