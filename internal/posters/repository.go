package posters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/printhaus/postershelf/internal/apperror"
)

// posterColumns are the scan targets shared by every poster query.
const posterColumns = `p.id, p.title, p.cost, p.description, p.date, p.stock, p.height, p.width, p.media_property_id`

// PosterRepository defines the data access contract for posters and their
// tag associations.
type PosterRepository interface {
	// FindByID returns the poster, hydrated with its media property and
	// tags when withRelations is set. Missing rows are a NotFound error,
	// never a nil poster.
	FindByID(ctx context.Context, id int64, withRelations bool) (*Poster, error)

	// List returns all posters in insertion order, optionally hydrated.
	List(ctx context.Context, withRelations bool) ([]Poster, error)

	// Create inserts a new poster. Absent fields are stored as NULL.
	Create(ctx context.Context, input PosterInput) (*Poster, error)

	// UpdateWithTags writes the poster's fields and applies the tag
	// attach/detach sets in a single transaction, so a poster deleted by a
	// concurrent request aborts before any tag write commits.
	UpdateWithTags(ctx context.Context, id int64, input PosterInput, toAdd, toRemove []int64) error

	// AttachTags idempotently adds tag associations (create flow: the
	// remove set is empty by construction).
	AttachTags(ctx context.Context, posterID int64, tagIDs []int64) error

	// Delete removes the poster and all of its tag association rows in one
	// transaction. Tags and media properties themselves are untouched.
	Delete(ctx context.Context, id int64) error
}

// MediaPropertyRepository lists media properties for form choices.
// Read-only: this workflow never mutates media properties.
type MediaPropertyRepository interface {
	List(ctx context.Context) ([]MediaProperty, error)
}

// TagRepository lists tags for form choices. Read-only.
type TagRepository interface {
	List(ctx context.Context) ([]Tag, error)
}

// --- MariaDB implementations ---

type posterRepository struct {
	db *sql.DB
}

// NewPosterRepository creates a MariaDB-backed poster repository.
func NewPosterRepository(db *sql.DB) PosterRepository {
	return &posterRepository{db: db}
}

func (r *posterRepository) FindByID(ctx context.Context, id int64, withRelations bool) (*Poster, error) {
	query := fmt.Sprintf(`SELECT %s FROM posters p WHERE p.id = ?`, posterColumns)

	p := &Poster{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Cost, &p.Description, &p.Date,
		&p.Stock, &p.Height, &p.Width, &p.MediaPropertyID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("poster not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying poster by id: %w", err)
	}

	if withRelations {
		if err := r.hydrate(ctx, []*Poster{p}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *posterRepository) List(ctx context.Context, withRelations bool) ([]Poster, error) {
	// ORDER BY id keeps insertion order (auto-increment key).
	query := fmt.Sprintf(`SELECT %s FROM posters p ORDER BY p.id`, posterColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing posters: %w", err)
	}
	defer rows.Close()

	var posters []Poster
	for rows.Next() {
		var p Poster
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Cost, &p.Description, &p.Date,
			&p.Stock, &p.Height, &p.Width, &p.MediaPropertyID,
		); err != nil {
			return nil, fmt.Errorf("scanning poster row: %w", err)
		}
		posters = append(posters, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if withRelations && len(posters) > 0 {
		refs := make([]*Poster, len(posters))
		for i := range posters {
			refs[i] = &posters[i]
		}
		if err := r.hydrate(ctx, refs); err != nil {
			return nil, err
		}
	}
	return posters, nil
}

// hydrate fills in the media property and tag list for the given posters
// with two grouped queries instead of per-poster lookups.
func (r *posterRepository) hydrate(ctx context.Context, posters []*Poster) error {
	byID := make(map[int64]*Poster, len(posters))
	ids := make([]int64, 0, len(posters))
	for _, p := range posters {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	// Media properties.
	mpQuery := fmt.Sprintf(
		`SELECT p.id, mp.id, mp.name
		 FROM posters p
		 INNER JOIN media_properties mp ON mp.id = p.media_property_id
		 WHERE p.id IN (%s)`, placeholders(len(ids)))
	rows, err := r.db.QueryContext(ctx, mpQuery, args(ids)...)
	if err != nil {
		return fmt.Errorf("loading media properties: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var posterID int64
		var mp MediaProperty
		if err := rows.Scan(&posterID, &mp.ID, &mp.Name); err != nil {
			return fmt.Errorf("scanning media property row: %w", err)
		}
		if p, ok := byID[posterID]; ok {
			p.MediaProperty = &mp
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Tags, ordered so hydrated id lists are deterministic.
	tagQuery := fmt.Sprintf(
		`SELECT pt.poster_id, t.id, t.name
		 FROM posters_tags pt
		 INNER JOIN tags t ON t.id = pt.tag_id
		 WHERE pt.poster_id IN (%s)
		 ORDER BY pt.poster_id, t.id`, placeholders(len(ids)))
	tagRows, err := r.db.QueryContext(ctx, tagQuery, args(ids)...)
	if err != nil {
		return fmt.Errorf("loading poster tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var posterID int64
		var t Tag
		if err := tagRows.Scan(&posterID, &t.ID, &t.Name); err != nil {
			return fmt.Errorf("scanning tag row: %w", err)
		}
		if p, ok := byID[posterID]; ok {
			p.Tags = append(p.Tags, t)
		}
	}
	return tagRows.Err()
}

func (r *posterRepository) Create(ctx context.Context, input PosterInput) (*Poster, error) {
	query := `INSERT INTO posters (title, cost, description, date, stock, height, width, media_property_id)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		input.Title, input.Cost, input.Description, input.Date,
		input.Stock, input.Height, input.Width, input.MediaPropertyID,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting poster: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting poster id: %w", err)
	}

	return &Poster{
		ID:              id,
		Title:           input.Title,
		Cost:            input.Cost,
		Description:     input.Description,
		Date:            input.Date,
		Stock:           input.Stock,
		Height:          input.Height,
		Width:           input.Width,
		MediaPropertyID: input.MediaPropertyID,
	}, nil
}

func (r *posterRepository) UpdateWithTags(ctx context.Context, id int64, input PosterInput, toAdd, toRemove []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning update tx: %w", err)
	}
	defer tx.Rollback()

	// Lock the row first. An UPDATE's RowsAffected is 0 both for a missing
	// row and for an unchanged one, so existence is checked explicitly.
	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM posters WHERE id = ? FOR UPDATE`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NewNotFound("poster not found")
	}
	if err != nil {
		return fmt.Errorf("locking poster row: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE posters SET title = ?, cost = ?, description = ?, date = ?,
		 stock = ?, height = ?, width = ?, media_property_id = ?
		 WHERE id = ?`,
		input.Title, input.Cost, input.Description, input.Date,
		input.Stock, input.Height, input.Width, input.MediaPropertyID,
		id,
	)
	if err != nil {
		return fmt.Errorf("updating poster: %w", err)
	}

	if err := attachTagsTx(ctx, tx, id, toAdd); err != nil {
		return err
	}
	if err := detachTagsTx(ctx, tx, id, toRemove); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *posterRepository) AttachTags(ctx context.Context, posterID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning attach tx: %w", err)
	}
	defer tx.Rollback()

	if err := attachTagsTx(ctx, tx, posterID, tagIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *posterRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete tx: %w", err)
	}
	defer tx.Rollback()

	// Explicit cascade: association rows go first so no orphaned join rows
	// remain even if the schema-level FK cascade is ever dropped.
	if _, err := tx.ExecContext(ctx, `DELETE FROM posters_tags WHERE poster_id = ?`, id); err != nil {
		return fmt.Errorf("deleting poster tag rows: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM posters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting poster: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("poster not found")
	}

	return tx.Commit()
}

// attachTagsTx inserts association rows, skipping pairs that already exist.
// INSERT IGNORE makes re-adding a present tag a no-op, which tolerates
// double form submits.
func attachTagsTx(ctx context.Context, tx *sql.Tx, posterID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT IGNORE INTO posters_tags (poster_id, tag_id) VALUES (?, ?)`,
			posterID, tagID,
		)
		if err != nil {
			return fmt.Errorf("attaching tag %d: %w", tagID, err)
		}
	}
	return nil
}

// detachTagsTx removes association rows. Removing an absent pair affects
// zero rows, which is fine: detach is idempotent by contract.
func detachTagsTx(ctx context.Context, tx *sql.Tx, posterID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(
		`DELETE FROM posters_tags WHERE poster_id = ? AND tag_id IN (%s)`,
		placeholders(len(tagIDs)))
	params := append([]any{posterID}, args(tagIDs)...)
	if _, err := tx.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("detaching tags: %w", err)
	}
	return nil
}

// placeholders returns "?, ?, ..." for n parameters.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// args converts an id slice to the []any that QueryContext expects.
func args(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// --- Choice list repositories ---

type mediaPropertyRepository struct {
	db *sql.DB
}

// NewMediaPropertyRepository creates a MariaDB-backed media property repository.
func NewMediaPropertyRepository(db *sql.DB) MediaPropertyRepository {
	return &mediaPropertyRepository{db: db}
}

func (r *mediaPropertyRepository) List(ctx context.Context) ([]MediaProperty, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM media_properties ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing media properties: %w", err)
	}
	defer rows.Close()

	var props []MediaProperty
	for rows.Next() {
		var mp MediaProperty
		if err := rows.Scan(&mp.ID, &mp.Name); err != nil {
			return nil, fmt.Errorf("scanning media property: %w", err)
		}
		props = append(props, mp)
	}
	return props, rows.Err()
}

type tagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a MariaDB-backed tag repository.
func NewTagRepository(db *sql.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
