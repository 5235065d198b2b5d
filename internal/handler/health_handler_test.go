package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// mockPinger implements Pinger for testing health checks.
type mockPinger struct {
	pingErr error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.pingErr
}

func setupHealthApp(pingErr error) *fiber.App {
	app := fiber.New()
	app.Get("/health", NewHealthHandler(&mockPinger{pingErr: pingErr}).Check)
	return app
}

func TestHealthHandler_Check_Healthy(t *testing.T) {
	status, env := doRequest(t, setupHealthApp(nil), http.MethodGet, "/health", "", nil)

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"healthy"}`, string(env.Data))
}

func TestHealthHandler_Check_Unhealthy(t *testing.T) {
	status, env := doRequest(t, setupHealthApp(errors.New("connection refused")), http.MethodGet, "/health", "", nil)

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.False(t, env.Success)
	assert.JSONEq(t, `{"status":"unhealthy"}`, string(env.Data))
	assert.Equal(t, "database connection failed", env.Message)
	assert.Equal(t, "INTERNAL_ERROR", env.Error)
}
