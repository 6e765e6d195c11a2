// Package app wires the application together: Echo instance, middleware
// stack, rendering, sessions, and the feature routes. main() stays thin and
// tests can assemble an App from fakes.
package app

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/printhaus/postershelf/internal/apperror"
	"github.com/printhaus/postershelf/internal/config"
	"github.com/printhaus/postershelf/internal/middleware"
	"github.com/printhaus/postershelf/internal/session"
	"github.com/printhaus/postershelf/internal/web"
)

// App holds the application's shared dependencies.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Redis    *redis.Client
	Sessions *session.Manager
	Echo     *echo.Echo
}

// New assembles the Echo server with the full middleware stack and the HTML
// renderer. Routes are registered separately via RegisterRoutes.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) (*App, error) {
	sessions := session.NewManager(rdb, cfg.Session.TTL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer, err := web.NewRenderer("views", sessions)
	if err != nil {
		return nil, fmt.Errorf("building renderer: %w", err)
	}
	e.Renderer = renderer

	app := &App{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Sessions: sessions,
		Echo:     e,
	}
	e.HTTPErrorHandler = app.errorHandler

	// Order matters: recovery outermost so panics anywhere below become 500s,
	// logging next so every request is recorded, then headers and CSRF.
	e.Use(middleware.Recovery())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.CSRF())

	return app, nil
}

// Start begins serving on the configured port.
func (a *App) Start() error {
	return a.Echo.Start(fmt.Sprintf(":%d", a.Config.Port))
}

// errorHandler maps errors to responses. Domain errors render the error page
// with their safe message; a failed CSRF check becomes a flash message plus a
// redirect back to the submitting form, since the usual cause is a form left
// open past its session.
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if errors.Is(err, middleware.ErrCSRF) {
		a.Sessions.AddFlash(c, session.FlashError, "The form has expired. Please try again")
		back := c.Request().Referer()
		if back == "" {
			back = "/posters"
		}
		if err := c.Redirect(http.StatusSeeOther, back); err != nil {
			slog.Error("redirecting after csrf failure", slog.Any("error", err))
		}
		return
	}

	code := http.StatusInternalServerError
	message := "An unexpected error occurred. Please try again."

	var appErr *apperror.AppError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		if appErr.Internal != nil {
			slog.Error("request failed",
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", code),
				slog.Any("error", appErr.Internal),
			)
		}
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	default:
		slog.Error("unhandled error",
			slog.String("path", c.Request().URL.Path),
			slog.Any("error", err),
		)
	}

	renderErr := c.Render(code, "error", map[string]any{
		"Code":    code,
		"Message": message,
	})
	if renderErr != nil {
		// Last resort: the error page itself failed to render.
		_ = c.String(code, message)
	}
}
