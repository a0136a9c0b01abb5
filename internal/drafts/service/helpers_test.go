package service

import (
	"context"
	"sync"
	"time"

	ddomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/drafts/domain"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
)

type mockSettings struct{ vals map[string]string }

func (m mockSettings) GetString(_ context.Context, key string, def string) (string, error) {
	if v, ok := m.vals[key]; ok {
		return v, nil
	}
	return def, nil
}
func (m mockSettings) GetDuration(_ context.Context, _ string, def time.Duration) (time.Duration, error) {
	return def, nil
}
func (m mockSettings) GetInt(_ context.Context, _ string, def int) (int, error) { return def, nil }
func (m mockSettings) GetBool(_ context.Context, _ string, def bool) (bool, error) {
	return def, nil
}

var _ sdomain.Service = (*mockSettings)(nil)

type captureDrafter struct {
	name     string
	checkErr error
	failFor  map[string]error

	mu     sync.Mutex
	drafts []ddomain.Draft
}

func (c *captureDrafter) Name() string                { return c.name }
func (c *captureDrafter) Check(context.Context) error { return c.checkErr }

func (c *captureDrafter) Create(_ context.Context, d ddomain.Draft) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failFor[d.To]; err != nil {
		return "", err
	}
	c.drafts = append(c.drafts, d)
	return "d-" + d.To, nil
}

func (c *captureDrafter) created() []ddomain.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ddomain.Draft(nil), c.drafts...)
}
