package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CUSTOMER_CACHE_TTL", "")
	t.Setenv("GIFT_CARD_DETAIL_POLICY", "")
	t.Setenv("SHOPIFY_PAGE_SIZE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, cfg.CustomerCacheTTL)
	assert.Equal(t, GiftCardPolicyLazy, cfg.GiftCardPolicy)
	assert.Equal(t, 250, cfg.ShopifyPageSize)
	assert.Equal(t, 60, cfg.WinbackDefaultGapDays)
	assert.True(t, cfg.RequireEmail)
}

func TestLoad_CacheTTLAcceptsSeconds(t *testing.T) {
	t.Setenv("CUSTOMER_CACHE_TTL", "43200")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, cfg.CustomerCacheTTL)

	t.Setenv("CUSTOMER_CACHE_TTL", "15m")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.CustomerCacheTTL)
}

func TestLoad_InvalidPolicyFallsBackToLazy(t *testing.T) {
	t.Setenv("GIFT_CARD_DETAIL_POLICY", "sometimes")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, GiftCardPolicyLazy, cfg.GiftCardPolicy)

	t.Setenv("GIFT_CARD_DETAIL_POLICY", "EAGER")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, GiftCardPolicyEager, cfg.GiftCardPolicy)
}

func TestLoad_PageSizeClamped(t *testing.T) {
	t.Setenv("SHOPIFY_PAGE_SIZE", "1000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.ShopifyPageSize)
}

func TestLoad_LegacyShopifyPassword(t *testing.T) {
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "")
	t.Setenv("SHOPIFY_PASSWORD", "shpat_legacy")
	t.Setenv("SHOPIFY_STORE_URL", "demo.myshopify.com/")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "shpat_legacy", cfg.ShopifyAccessToken)
	assert.Equal(t, "demo.myshopify.com", cfg.ShopifyStoreURL)
	assert.True(t, cfg.ShopifyConfigured())
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitCSV(" a, ,b "))
	assert.Equal(t, []string{"*"}, splitCSV(" , "))
}
