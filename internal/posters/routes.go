package posters

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the poster CRUD routes. Forms submit as plain
// POSTs, so update and delete use POST rather than PUT/DELETE verbs.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/posters")

	g.GET("", h.Index)
	g.GET("/create", h.NewForm)
	g.POST("/create", h.Create)
	g.GET("/:poster_id/update", h.EditForm)
	g.POST("/:poster_id/update", h.Update)
	g.GET("/:poster_id/delete", h.ConfirmDelete)
	g.POST("/:poster_id/delete", h.Delete)
}
