package router

import (
	"github.com/deppfellow/go-commerce/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints outside the business API:
// the health check, the docs page and its static assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.Static("/static", "static")
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
