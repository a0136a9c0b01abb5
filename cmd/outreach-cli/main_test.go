package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecipients(t *testing.T) {
	t.Run("list response", func(t *testing.T) {
		got, err := readRecipients(strings.NewReader(customersBody))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "7", got[0]["id"])
		assert.Equal(t, "Ann", got[0]["first_name"])
	})
	t.Run("yaml list", func(t *testing.T) {
		got, err := readRecipients(strings.NewReader("- email: a@x.io\n  first_name: A\n  customer_since: 2021-05-01\n- email: b@x.io\n"))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2021-05-01", got[0]["customer_since"])
		_, hasSince := got[1]["customer_since"]
		assert.False(t, hasSince)
	})
	t.Run("empty", func(t *testing.T) {
		got, err := readRecipients(strings.NewReader("  \n"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := readRecipients(strings.NewReader("just a string"))
		assert.Error(t, err)
	})
}

func TestInitializeConfig_WritesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".outreach-cli.yaml")
	var out strings.Builder
	in := strings.NewReader("\nsecret-token\nceo@shop.example\n")

	require.NoError(t, initializeConfig(in, &out, path))
	assert.Contains(t, out.String(), "Configuration saved to "+path)

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	assert.Equal(t, defaultAPIURL, v.GetString("api_url"))
	assert.Equal(t, "secret-token", v.GetString("api_token"))
	assert.Equal(t, "ceo@shop.example", v.GetString("boss_email"))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", maskToken(""))
	assert.Equal(t, "****", maskToken("abcd"))
	assert.Equal(t, "abcd****mnop", maskToken("abcdefghmnop"))
}

func TestCustomerFilters_Values(t *testing.T) {
	v := CustomerFilters{Search: "ann", GiftCard: true, Refresh: true, DaysSinceOrder: "90"}.values()
	assert.Equal(t, "days_since_order=90&gift_card=true&refresh=true&search=ann", v.Encode())
	assert.Empty(t, CustomerFilters{}.values().Encode())
}
