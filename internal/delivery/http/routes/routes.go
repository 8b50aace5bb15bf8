package routes

import (
	"github.com/gofiber/fiber/v3"
)

// RouteRegistrar is implemented by every handler that owns a set of routes.
type RouteRegistrar interface {
	RegisterRoutes(r fiber.Router)
}

type Registry struct {
	registrars []RouteRegistrar
}

func NewRegistry(registrars ...RouteRegistrar) *Registry {
	return &Registry{registrars: registrars}
}

// Register mounts every handler at the application root. Paths are kept
// flat (/submit-form, /submissions, /skills) to match existing clients.
func (r *Registry) Register(app *fiber.App) {
	if app == nil || r == nil {
		return
	}

	for _, reg := range r.registrars {
		if reg == nil {
			continue
		}
		reg.RegisterRoutes(app)
	}
}
