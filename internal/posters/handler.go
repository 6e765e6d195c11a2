package posters

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/printhaus/postershelf/internal/apperror"
	"github.com/printhaus/postershelf/internal/session"
)

// Handler handles HTTP requests for the poster workflow. Handlers are
// thin: parse the request, run the form gate, call the service, then
// render or redirect. No business logic lives here.
type Handler struct {
	service  PosterService
	sessions *session.Manager
}

// NewHandler creates a poster handler.
func NewHandler(service PosterService, sessions *session.Manager) *Handler {
	return &Handler{service: service, sessions: sessions}
}

// Index renders the poster list (GET /posters).
func (h *Handler) Index(c echo.Context) error {
	posters, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posters/index", map[string]any{
		"Posters": posters,
	})
}

// NewForm renders the empty create form (GET /posters/create).
func (h *Handler) NewForm(c echo.Context) error {
	media, tags, err := h.service.Choices(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posters/create", formData(media, tags, nil, nil))
}

// Create processes the create form (POST /posters/create). Field errors
// re-render the form with the user's values echoed back; a clean
// submission creates the poster, attaches its tags, and redirects.
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	media, tags, err := h.service.Choices(ctx)
	if err != nil {
		return err
	}

	values, err := c.FormParams()
	if err != nil {
		return apperror.NewBadRequest("could not parse form submission")
	}

	input, fieldErrs := NewPosterForm(media, tags).Parse(values)
	if fieldErrs != nil {
		return c.Render(http.StatusUnprocessableEntity, "posters/create",
			formData(media, tags, flatten(values), fieldErrs))
	}

	poster, err := h.service.Create(ctx, *input)
	if err != nil {
		return err
	}

	h.sessions.AddFlash(c, session.FlashSuccess,
		fmt.Sprintf("New Poster %s has been created", poster.DisplayTitle()))
	return c.Redirect(http.StatusSeeOther, "/posters")
}

// EditForm renders the update form pre-populated with the poster's current
// fields and tag set (GET /posters/:poster_id/update). A missing poster is
// fatal to the request: 404, no partial render.
func (h *Handler) EditForm(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := posterID(c)
	if err != nil {
		return err
	}
	poster, err := h.service.Get(ctx, id)
	if err != nil {
		return err
	}

	media, tags, err := h.service.Choices(ctx)
	if err != nil {
		return err
	}

	data := formData(media, tags, FormValues(poster), nil)
	data["Poster"] = poster
	return c.Render(http.StatusOK, "posters/update", data)
}

// Update processes the update form (POST /posters/:poster_id/update). The
// poster is re-fetched rather than trusting anything client-supplied; on
// field errors the form re-renders with the submitted (not the stored)
// values.
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := posterID(c)
	if err != nil {
		return err
	}
	poster, err := h.service.Get(ctx, id)
	if err != nil {
		return err
	}

	media, tags, err := h.service.Choices(ctx)
	if err != nil {
		return err
	}

	values, err := c.FormParams()
	if err != nil {
		return apperror.NewBadRequest("could not parse form submission")
	}

	input, fieldErrs := NewPosterForm(media, tags).Parse(values)
	if fieldErrs != nil {
		data := formData(media, tags, flatten(values), fieldErrs)
		data["Poster"] = poster
		return c.Render(http.StatusUnprocessableEntity, "posters/update", data)
	}

	if err := h.service.Update(ctx, id, *input); err != nil {
		return err
	}

	// Flash the submitted title, not the stored one: a rename should
	// announce the poster's new name.
	updated := Poster{Title: input.Title}
	h.sessions.AddFlash(c, session.FlashSuccess,
		fmt.Sprintf("Poster %s has been updated", updated.DisplayTitle()))
	return c.Redirect(http.StatusSeeOther, "/posters")
}

// ConfirmDelete renders the delete confirmation page
// (GET /posters/:poster_id/delete).
func (h *Handler) ConfirmDelete(c echo.Context) error {
	id, err := posterID(c)
	if err != nil {
		return err
	}
	poster, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posters/delete", map[string]any{
		"Poster": poster,
	})
}

// Delete removes the poster (POST /posters/:poster_id/delete).
func (h *Handler) Delete(c echo.Context) error {
	id, err := posterID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	h.sessions.AddFlash(c, session.FlashSuccess, "Poster has been deleted")
	return c.Redirect(http.StatusSeeOther, "/posters")
}

// posterID parses the :poster_id route parameter. A malformed id is a 404,
// same as a well-formed id that matches nothing.
func posterID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("poster_id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NewNotFound("poster not found")
	}
	return id, nil
}

// formData assembles the template context shared by the create and update
// forms: choice lists, echoed field values, and field errors.
func formData(media []MediaProperty, tags []Tag, values map[string]string, errs FieldErrors) map[string]any {
	if values == nil {
		values = map[string]string{}
	}
	if errs == nil {
		errs = FieldErrors{}
	}
	return map[string]any{
		"MediaProperties": media,
		"Tags":            tags,
		"Values":          values,
		"Errors":          errs,
	}
}

// flatten reduces parsed form values to the single-valued map the
// templates echo back into inputs.
func flatten(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for key := range values {
		out[key] = values.Get(key)
	}
	return out
}
