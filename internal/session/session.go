// Package session provides Redis-backed browser sessions for Postershelf.
// Sessions currently carry only flash messages: one-shot notifications set
// by a form handler and shown on the next rendered page. The session token
// is a random value stored in a cookie; the payload lives in Redis under a
// prefixed key with a TTL.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// cookieName is the name of the session cookie.
const cookieName = "postershelf_session"

// keyPrefix is the Redis key prefix for session data.
const keyPrefix = "session:"

// tokenBytes is the number of random bytes in a session token.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
const tokenBytes = 32

// Flash kinds shown with different styling by the layout template.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notification surfaced on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// sessionData is the JSON payload stored in Redis per session.
type sessionData struct {
	Flashes []Flash `json:"flashes,omitempty"`
}

// Manager reads and writes session data in Redis. Created once at startup
// and shared via dependency injection.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager creates a session manager with the given Redis client and TTL.
func NewManager(rdb *redis.Client, ttl time.Duration) *Manager {
	return &Manager{redis: rdb, ttl: ttl}
}

// AddFlash queues a flash message for the current browser session. It is
// fire-and-forget: failures are logged, never surfaced, so a broken flash
// cannot turn a successful save into a user-visible error.
func (m *Manager) AddFlash(c echo.Context, kind, message string) {
	ctx := c.Request().Context()

	token, err := m.ensureToken(c)
	if err != nil {
		slog.Error("creating session token", slog.Any("error", err))
		return
	}

	data, err := m.load(ctx, token)
	if err != nil {
		slog.Error("loading session", slog.Any("error", err))
		return
	}

	data.Flashes = append(data.Flashes, Flash{Kind: kind, Message: message})
	if err := m.save(ctx, token, data); err != nil {
		slog.Error("saving session", slog.Any("error", err))
	}
}

// PopFlashes returns all queued flash messages for the current session and
// clears them, so each message is shown exactly once. Returns nil when the
// request has no session or no pending messages.
func (m *Manager) PopFlashes(c echo.Context) []Flash {
	cookie, err := c.Request().Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	ctx := c.Request().Context()
	data, err := m.load(ctx, cookie.Value)
	if err != nil {
		slog.Error("loading session", slog.Any("error", err))
		return nil
	}
	if len(data.Flashes) == 0 {
		return nil
	}

	flashes := data.Flashes
	data.Flashes = nil
	if err := m.save(ctx, cookie.Value, data); err != nil {
		slog.Error("clearing flashes", slog.Any("error", err))
	}
	return flashes
}

// ensureToken returns the request's session token, creating the cookie and
// token when the request has none yet.
func (m *Manager) ensureToken(c echo.Context) (string, error) {
	if cookie, err := c.Request().Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)

	req := c.Request()
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// load reads and decodes the session payload for a token. A missing key is
// an empty session, not an error.
func (m *Manager) load(ctx context.Context, token string) (*sessionData, error) {
	raw, err := m.redis.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return &sessionData{}, nil
	}
	if err != nil {
		return nil, err
	}

	var data sessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		// Corrupt payload: start fresh rather than wedge the session.
		return &sessionData{}, nil
	}
	return &data, nil
}

// save encodes and stores the session payload, refreshing the TTL.
func (m *Manager) save(ctx context.Context, token string, data *sessionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return m.redis.Set(ctx, keyPrefix+token, raw, m.ttl).Err()
}
