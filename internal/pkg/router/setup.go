package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs a group of routes on the fiber app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter wires every route group into the app.
func InstallRouter(app *fiber.App, deps *Deps) {
	setup(app, NewApiRouter(deps))
}

func setup(app *fiber.App, routers ...Router) {
	for _, r := range routers {
		r.InstallRouter(app)
	}
}
