package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"skill-intake/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newApp(logger *zap.Logger, h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(NewAccessLogMiddleware(logger).Middleware())
	app.Use(NewErrorMiddleware(logger).Middleware())
	app.Get("/", h)
	return app
}

func decode(t *testing.T, resp *http.Response) response.SemanticResponse {
	t.Helper()
	defer resp.Body.Close()
	var out response.SemanticResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestErrorMiddleware_RendersAppError(t *testing.T) {
	app := newApp(nil, func(fiber.Ctx) error {
		return NewAppError(fiber.StatusConflict, "already there", map[string]string{"field": "email"}, errors.New("dup"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	body := decode(t, resp)
	require.Equal(t, "already there", body.Message)
	require.Equal(t, map[string]any{"field": "email"}, body.Data)
}

func TestErrorMiddleware_FallbackMessages(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"app error without message", NewAppError(fiber.StatusNotFound, "", nil, nil), fiber.StatusNotFound, response.MessageNotFound},
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "nope"), fiber.StatusBadRequest, "nope"},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError, response.MessageInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp(nil, func(fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			require.Equal(t, tc.message, decode(t, resp).Message)
		})
	}
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	app := newApp(zap.New(core), func(fiber.Ctx) error { panic("kaboom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestAccessLog_SetsAndReusesRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := newApp(zap.New(core), func(c fiber.Ctx) error {
		return response.Success(c, fiber.StatusOK, "", nil)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))

	entries := logs.FilterMessage("http access").All()
	require.Len(t, entries, 2)
	require.Equal(t, "abc-123", entries[1].ContextMap()["rid"])
	require.EqualValues(t, fiber.StatusOK, entries[1].ContextMap()["status"])
}
