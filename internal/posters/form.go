package posters

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxTitleLen matches the VARCHAR(100) title column.
const maxTitleLen = 100

// maxSmallint is the upper bound of the unsigned SMALLINT columns
// (stock, height, width).
const maxSmallint = 65535

// dateLayout is the expected format of the date field.
const dateLayout = "2006-01-02"

// FieldErrors maps a form field name to a human-readable error message.
// A nil/empty map means the submission validated cleanly.
type FieldErrors map[string]string

// PosterForm validates raw submitted values into a PosterInput. It holds
// the currently valid choice sets so foreign-key selections are checked at
// validation time rather than deferred to the database. The form never
// writes to storage.
type PosterForm struct {
	mediaProperties map[int64]struct{}
	tags            map[int64]struct{}
}

// NewPosterForm builds a form gate from the current choice lists.
func NewPosterForm(mediaProperties []MediaProperty, tags []Tag) *PosterForm {
	f := &PosterForm{
		mediaProperties: make(map[int64]struct{}, len(mediaProperties)),
		tags:            make(map[int64]struct{}, len(tags)),
	}
	for _, mp := range mediaProperties {
		f.mediaProperties[mp.ID] = struct{}{}
	}
	for _, t := range tags {
		f.tags[t.ID] = struct{}{}
	}
	return f
}

// Parse validates the raw form values and returns either a clean input or
// a field→message error map, never both. Empty or absent fields are
// optional and yield nil pointers (stored as NULL), never zero values.
func (f *PosterForm) Parse(values url.Values) (*PosterInput, FieldErrors) {
	errs := FieldErrors{}
	input := &PosterInput{}

	input.Title = optionalText(values.Get("title"))
	if input.Title != nil && len(*input.Title) > maxTitleLen {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLen)
	}

	input.Description = optionalText(values.Get("description"))

	input.Cost = parseNonNegative("cost", values.Get("cost"), 1<<31-1, errs)
	input.Stock = parseNonNegative("stock", values.Get("stock"), maxSmallint, errs)
	input.Height = parseNonNegative("height", values.Get("height"), maxSmallint, errs)
	input.Width = parseNonNegative("width", values.Get("width"), maxSmallint, errs)

	if raw := strings.TrimSpace(values.Get("date")); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			errs["date"] = "date must be in YYYY-MM-DD format"
		} else {
			input.Date = &d
		}
	}

	if raw := strings.TrimSpace(values.Get("media_property_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs["media_property_id"] = "select a valid media property"
		} else if _, ok := f.mediaProperties[id]; !ok {
			errs["media_property_id"] = "select a valid media property"
		} else {
			input.MediaPropertyID = &id
		}
	}

	input.TagIDs = f.parseTags(values.Get("tags"), errs)

	if len(errs) > 0 {
		return nil, errs
	}
	return input, nil
}

// parseTags turns the comma-delimited tags string into a validated id set.
// Empty string and absence both mean the empty set. Unknown or malformed
// ids error on the tags field rather than being silently dropped.
func (f *PosterForm) parseTags(raw string, errs FieldErrors) []int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	seen := make(map[int64]struct{})
	var ids []int64
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			errs["tags"] = fmt.Sprintf("%q is not a valid tag id", token)
			return nil
		}
		if _, ok := f.tags[id]; !ok {
			errs["tags"] = fmt.Sprintf("tag %d does not exist", id)
			return nil
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// optionalText trims a text field, mapping blank to absent.
func optionalText(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseNonNegative parses an optional non-negative integer field, recording
// a field error for anything that does not parse or is out of range.
func parseNonNegative(field, raw string, max int64, errs FieldErrors) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		errs[field] = field + " must be a non-negative whole number"
		return nil
	}
	if n > max {
		errs[field] = fmt.Sprintf("%s must be at most %d", field, max)
		return nil
	}
	return &n
}
