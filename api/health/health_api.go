package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
)

func init() {
	api.RegisterRoute(RegisterHealthRoutes)
}

// RegisterHealthRoutes mounts GET /health. DB failure is 503; Redis failure only degrades.
func RegisterHealthRoutes(e *echo.Echo, deps *api.Deps) {
	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := echo.Map{"status": "ok", "database": "ok", "redis": "disabled"}
		code := http.StatusOK

		if deps == nil || deps.DB == nil {
			status["database"] = "disabled"
		} else if sqldb, err := deps.DB.DB(); err != nil || sqldb.PingContext(ctx) != nil {
			status["status"], status["database"] = "unavailable", "down"
			code = http.StatusServiceUnavailable
		}
		if deps != nil && deps.Redis != nil {
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				status["redis"] = "down"
				if code == http.StatusOK {
					status["status"] = "degraded"
				}
			} else {
				status["redis"] = "ok"
			}
		}
		if deps != nil && deps.Search != nil && deps.Search.Enabled() {
			status["search"] = "elasticsearch"
		} else {
			status["search"] = "sql"
		}
		return c.JSON(code, status)
	})
}
