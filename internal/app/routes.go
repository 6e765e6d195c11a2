package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printhaus/postershelf/internal/posters"
)

// RegisterRoutes attaches every route to the Echo instance.
func (a *App) RegisterRoutes() {
	e := a.Echo

	e.GET("/", a.landing)
	e.GET("/healthz", a.healthz)

	posterRepo := posters.NewPosterRepository(a.DB)
	mediaRepo := posters.NewMediaPropertyRepository(a.DB)
	tagRepo := posters.NewTagRepository(a.DB)
	service := posters.NewPosterService(posterRepo, mediaRepo, tagRepo)
	posters.RegisterRoutes(e, posters.NewHandler(service, a.Sessions))
}

// landing renders the home page.
func (a *App) landing(c echo.Context) error {
	return c.Render(http.StatusOK, "landing", map[string]any{})
}

// healthz reports liveness plus dependency health, for container orchestration.
func (a *App) healthz(c echo.Context) error {
	ctx := c.Request().Context()

	status := http.StatusOK
	checks := map[string]string{"database": "ok", "redis": "ok"}

	if err := a.DB.PingContext(ctx); err != nil {
		checks["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, checks)
}
