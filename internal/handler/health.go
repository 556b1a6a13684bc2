package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/go-commerce/internal/middleware"
	"github.com/deppfellow/go-commerce/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HealthCheckTimeout bounds each dependency ping.
const HealthCheckTimeout = 5 * time.Second

type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// check is the outcome of one dependency ping.
type check struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// CheckHealth pings PostgreSQL and Redis. Both are required: flash
// messages and the job queue live in Redis. Any failure answers 503.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := map[string]check{}
	isHealthy := true

	pings := []struct {
		name string
		ping func(ctx context.Context) error
	}{
		{"database", h.server.DB.Pool.Ping},
		{"redis", func(ctx context.Context) error { return h.server.Redis.Ping(ctx).Err() }},
	}

	for _, p := range pings {
		result := h.ping(c.Request().Context(), &logger, p.name, p.ping)
		if result.Status != "healthy" {
			isHealthy = false
		}
		checks[p.name] = result
	}

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordError(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) ping(parent context.Context, logger *zerolog.Logger, name string, ping func(ctx context.Context) error) check {
	ctx, cancel := context.WithTimeout(parent, HealthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error().
			Err(err).
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.recordError(map[string]interface{}{
			"check_type":       name,
			"operation":        "health_check",
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})

		return check{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}
	}

	return check{Status: "healthy", ResponseTime: elapsed.String()}
}

func (h *HealthHandler) recordError(attrs map[string]interface{}) {
	if h.server.LoggerService != nil && h.server.LoggerService.GetApplication() != nil {
		h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", attrs)
	}
}
