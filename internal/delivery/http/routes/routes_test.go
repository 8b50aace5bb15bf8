package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

type pingRoute struct{ path string }

func (p pingRoute) RegisterRoutes(r fiber.Router) {
	r.Get(p.path, func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
}

func TestRegistry_MountsEveryRegistrar(t *testing.T) {
	app := fiber.New()
	NewRegistry(pingRoute{"/a"}, nil, pingRoute{"/b"}).Register(app)

	for _, path := range []string{"/a", "/b"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNoContent, resp.StatusCode, path)
	}
}
