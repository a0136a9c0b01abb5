package settings

import (
	"github.com/labstack/echo/v4"

	evdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/events/domain"
	rl "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/platform/ratelimit"
	ctrl "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/controller"
	sdomain "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/domain"
	repo "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/repository"
	svc "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/settings/service"
)

// Module is the wired settings slice. Other slices read Service.
type Module struct {
	Repo    sdomain.Repository
	Service sdomain.Service
}

// Load builds the settings repository from path (may be empty).
func Load(path string) (*Module, error) {
	r, err := repo.New(path)
	if err != nil {
		return nil, err
	}
	return &Module{Repo: r, Service: svc.New(r)}, nil
}

// Register mounts the settings routes. store may be nil.
func (m *Module) Register(e *echo.Echo, store rl.Store, pub evdomain.Publisher) {
	c := ctrl.New(m.Repo, m.Service)
	if store != nil {
		c.WithRateLimit(store)
	}
	if pub != nil {
		c.WithPublisher(pub)
	}
	c.Register(e)
}
