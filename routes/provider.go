package routes

import (
	"github.com/km-arc/go-payload/app"
	frameworkapp "github.com/km-arc/go-payload/framework/app"
	"github.com/km-arc/go-payload/framework/container"
)

// ServiceProvider mounts API on the application router at boot.
type ServiceProvider struct {
	container.BaseProvider
}

func (p *ServiceProvider) Register(_ *container.Container) {}

func (p *ServiceProvider) Boot(c *container.Container) {
	a := container.Resolve[*frameworkapp.Application](c, "app")
	API(a.Router(), app.NewValidationController(a))
}
