package templates

import (
	"github.com/labstack/echo/v4"

	ctrl "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/controller"
	"github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/domain"
	svc "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/service"
)

// New returns the service over the built-in templates.
func New() domain.Service { return svc.New(svc.Builtin()) }

// Register mounts the template routes on e.
func Register(e *echo.Echo, s domain.Service) {
	ctrl.New(s).Register(e)
}
