package handler

import (
	"context"
	"time"

	"skill-intake/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

const healthCheckTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

// NewHealthHandler reports the database as required and the cache as
// optional. A nil cache is reported as "disabled".
func NewHealthHandler(db Pinger, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

type healthResponse struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/health", h.Check)
}

func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthCheckTimeout)
	defer cancel()

	res := healthResponse{Database: "up", Cache: "disabled"}
	status := fiber.StatusOK

	if h.db == nil {
		res.Database = "down"
		status = fiber.StatusServiceUnavailable
	} else if err := h.db.Ping(ctx); err != nil {
		res.Database = "down"
		status = fiber.StatusServiceUnavailable
	}

	if h.cache != nil {
		res.Cache = "up"
		if err := h.cache.Ping(ctx); err != nil {
			// Degraded cache does not fail the check.
			res.Cache = "down"
		}
	}

	if status != fiber.StatusOK {
		return response.Error(c, status, response.MessageServiceUnavailable, res)
	}
	return response.Success(c, status, response.MessageOK, res)
}
