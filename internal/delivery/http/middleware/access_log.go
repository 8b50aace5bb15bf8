package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	logger *zap.Logger
}

func NewAccessLogMiddleware(logger *zap.Logger) *AccessLogMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessLogMiddleware{logger: logger}
}

// Middleware tags each request with an X-Request-ID (reusing the client's
// when present) and logs one line once the response is written.
func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		m.logger.Info("http access",
			zap.String("rid", rid),
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("req_bytes", c.Request().Header.ContentLength()),
			zap.Int("resp_bytes", len(c.Response().Body())),
			zap.String("ua", c.Get(fiber.HeaderUserAgent)),
		)

		return err
	}
}
