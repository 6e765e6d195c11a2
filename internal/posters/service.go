package posters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/printhaus/postershelf/internal/apperror"
)

// PosterService sequences the poster workflows: it is the only component
// that turns store errors into user-facing outcomes, and validated input is
// the only thing that ever reaches it — handlers run the form gate first,
// so validation errors never touch persistence.
type PosterService interface {
	List(ctx context.Context) ([]Poster, error)
	Get(ctx context.Context, id int64) (*Poster, error)

	// Choices returns the current media property and tag lists used both
	// to populate form selects and to validate submissions.
	Choices(ctx context.Context) ([]MediaProperty, []Tag, error)

	Create(ctx context.Context, input PosterInput) (*Poster, error)
	Update(ctx context.Context, id int64, input PosterInput) error
	Delete(ctx context.Context, id int64) error
}

type posterService struct {
	posters PosterRepository
	media   MediaPropertyRepository
	tags    TagRepository
}

// NewPosterService creates a poster service with the given repositories.
func NewPosterService(posters PosterRepository, media MediaPropertyRepository, tags TagRepository) PosterService {
	return &posterService{posters: posters, media: media, tags: tags}
}

// List returns all posters hydrated with their media property and tags.
func (s *posterService) List(ctx context.Context) ([]Poster, error) {
	list, err := s.posters.List(ctx, true)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing posters: %w", err))
	}
	return list, nil
}

// Get returns one poster with relations. NotFound propagates untouched.
func (s *posterService) Get(ctx context.Context, id int64) (*Poster, error) {
	return s.posters.FindByID(ctx, id, true)
}

// Choices loads the allowed-choice lists for the poster form.
func (s *posterService) Choices(ctx context.Context) ([]MediaProperty, []Tag, error) {
	media, err := s.media.List(ctx)
	if err != nil {
		return nil, nil, apperror.NewInternal(fmt.Errorf("listing media properties: %w", err))
	}
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, nil, apperror.NewInternal(fmt.Errorf("listing tags: %w", err))
	}
	return media, tags, nil
}

// Create inserts the poster, then attaches any submitted tags. The remove
// set is empty by construction on a fresh poster.
func (s *posterService) Create(ctx context.Context, input PosterInput) (*Poster, error) {
	poster, err := s.posters.Create(ctx, input)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating poster: %w", err))
	}

	if len(input.TagIDs) > 0 {
		if err := s.posters.AttachTags(ctx, poster.ID, input.TagIDs); err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("attaching tags to poster %d: %w", poster.ID, err))
		}
	}

	slog.Info("poster created",
		slog.Int64("poster_id", poster.ID),
		slog.String("title", poster.DisplayTitle()),
		slog.Int("tags", len(input.TagIDs)),
	)
	return poster, nil
}

// Update re-reads the poster, diffs its persisted tag set against the
// submitted one, and applies the field update plus the attach/detach sets
// in one repository transaction. The diff is computed from the association
// set read before the field write, so the field update cannot skew it.
func (s *posterService) Update(ctx context.Context, id int64, input PosterInput) error {
	current, err := s.posters.FindByID(ctx, id, true)
	if err != nil {
		return err
	}

	toAdd, toRemove := DiffTagIDs(current.TagIDs(), input.TagIDs)

	if err := s.posters.UpdateWithTags(ctx, id, input, toAdd, toRemove); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("updating poster %d: %w", id, err))
	}

	slog.Info("poster updated",
		slog.Int64("poster_id", id),
		slog.Int("tags_added", len(toAdd)),
		slog.Int("tags_removed", len(toRemove)),
	)
	return nil
}

// Delete removes the poster and its association rows. Deleting an already
// deleted poster surfaces the repository's NotFound.
func (s *posterService) Delete(ctx context.Context, id int64) error {
	if err := s.posters.Delete(ctx, id); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("deleting poster %d: %w", id, err))
	}

	slog.Info("poster deleted", slog.Int64("poster_id", id))
	return nil
}
