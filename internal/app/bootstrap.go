package app

import (
	"fmt"
	"strings"

	"skill-intake/internal/config"
	"skill-intake/internal/delivery/http/middleware"
	"skill-intake/internal/delivery/http/routes"
	"skill-intake/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"go.uber.org/zap"
)

type App struct {
	Fiber *fiber.App
}

func New(cfg config.Config, logger *zap.Logger, registrars ...routes.RouteRegistrar) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	registerGlobalMiddleware(f, cfg, logger)
	routes.NewRegistry(registrars...).Register(f)

	return &App{Fiber: f}
}

func registerGlobalMiddleware(app *fiber.App, cfg config.Config, logger *zap.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger.Named("http")).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger.Named("http")).Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CORSAllowOrigins,
		AllowMethods:  []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions},
		AllowHeaders:  []string{fiber.HeaderContentType, middleware.HeaderRequestID},
		ExposeHeaders: append([]string{middleware.HeaderRequestID}, response.PageHeaders...),
	}))
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
