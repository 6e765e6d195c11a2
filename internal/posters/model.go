// Package posters manages the poster catalog — the core content of
// Postershelf. A poster optionally belongs to one media property and
// carries any number of tags through a join table. The package owns the
// form validation gate, the tag-set differ, persistence, and the
// create/update/delete workflow; HTML rendering and session plumbing are
// collaborators it reaches through Echo.
package posters

import (
	"strconv"
	"strings"
	"time"
)

// --- Domain Models ---

// Poster is a catalog entry. Every column except the identifier is
// optional; pointer fields distinguish "absent" (NULL) from a zero value.
type Poster struct {
	ID              int64      `json:"id"`
	Title           *string    `json:"title,omitempty"`
	Cost            *int64     `json:"cost,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
	Stock           *int64     `json:"stock,omitempty"`
	Height          *int64     `json:"height,omitempty"`
	Width           *int64     `json:"width,omitempty"`
	MediaPropertyID *int64     `json:"media_property_id,omitempty"`

	// Hydrated relations (populated by repository queries on request).
	MediaProperty *MediaProperty `json:"media_property,omitempty"`
	Tags          []Tag          `json:"tags,omitempty"`
}

// TagIDs returns the ids of the poster's hydrated tags. This is the
// "current set" the differ reconciles a submission against.
func (p *Poster) TagIDs() []int64 {
	ids := make([]int64, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// DisplayTitle returns the title or a placeholder for untitled posters.
func (p *Poster) DisplayTitle() string {
	if p.Title != nil && *p.Title != "" {
		return *p.Title
	}
	return "(untitled)"
}

// MediaProperty is a franchise or brand a poster can belong to. Read-only
// from this package's perspective: listed for form choices, never mutated.
type MediaProperty struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tag labels posters across media properties. Read-only here; the poster
// workflow creates and removes associations, never tag rows themselves.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// --- Validated Input ---

// PosterInput is the clean, typed data bag produced by the form gate.
// It is immutable by convention: handlers pass it to the service, which
// passes it to the repository; nothing mutates it along the way.
type PosterInput struct {
	Title           *string
	Cost            *int64
	Description     *string
	Date            *time.Time
	Stock           *int64
	Height          *int64
	Width           *int64
	MediaPropertyID *int64
	TagIDs          []int64
}

// FormValues flattens a poster into the raw string map the form templates
// render, so the update form pre-populates through the same path that
// echoes a failed submission back to the user.
func FormValues(p *Poster) map[string]string {
	v := map[string]string{}
	if p.Title != nil {
		v["title"] = *p.Title
	}
	if p.Cost != nil {
		v["cost"] = strconv.FormatInt(*p.Cost, 10)
	}
	if p.Description != nil {
		v["description"] = *p.Description
	}
	if p.Date != nil {
		v["date"] = p.Date.Format("2006-01-02")
	}
	if p.Stock != nil {
		v["stock"] = strconv.FormatInt(*p.Stock, 10)
	}
	if p.Height != nil {
		v["height"] = strconv.FormatInt(*p.Height, 10)
	}
	if p.Width != nil {
		v["width"] = strconv.FormatInt(*p.Width, 10)
	}
	if p.MediaPropertyID != nil {
		v["media_property_id"] = strconv.FormatInt(*p.MediaPropertyID, 10)
	}
	if ids := p.TagIDs(); len(ids) > 0 {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatInt(id, 10)
		}
		v["tags"] = strings.Join(parts, ",")
	}
	return v
}
