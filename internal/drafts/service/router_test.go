package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/config"
	ddomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/domain"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
)

func newTestRouter(provider string, cfgProvider string) (*Router, map[string]*captureDrafter) {
	vals := map[string]string{}
	if provider != "" {
		vals[sdomain.KeyDraftProvider] = provider
	}
	caps := map[string]*captureDrafter{
		"gmail": {name: "gmail"},
		"smtp":  {name: "smtp"},
		"brevo": {name: "brevo"},
	}
	r := NewRouter(mockSettings{vals: vals}, config.Config{DraftProvider: cfgProvider}, caps["gmail"], caps["smtp"], caps["brevo"])
	return r, caps
}

func TestRouter_Selection(t *testing.T) {
	tests := []struct {
		setting, cfg, want string
	}{
		{"smtp", "gmail", "smtp"},
		{"BREVO", "gmail", "brevo"},
		{"", "smtp", "smtp"},
		{"", "", "gmail"},
		{"carrier-pigeon", "smtp", "gmail"},
	}
	for _, tt := range tests {
		r, caps := newTestRouter(tt.setting, tt.cfg)
		_, err := r.Create(context.Background(), ddomain.Draft{To: "a@b.com", Reviewer: "boss@b.com"})
		require.NoError(t, err)
		assert.Equal(t, tt.want, r.Name())
		for name, c := range caps {
			assert.Equal(t, name == tt.want, len(c.created()) == 1, "setting=%q cfg=%q provider=%s", tt.setting, tt.cfg, name)
		}
	}
}

func TestRouter_ForPinsProvider(t *testing.T) {
	r, _ := newTestRouter("brevo", "")
	assert.Equal(t, "brevo", r.For(context.Background()).Name())
}
