package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// newTestManager spins up an in-process Redis and returns a manager backed
// by it along with the server handle for TTL assertions.
func newTestManager(t *testing.T, ttl time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewManager(rdb, ttl), srv
}

// newTestContext builds an Echo context for a plain GET request, optionally
// carrying the session cookie from a previous response.
func newTestContext(cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// sessionCookie extracts the session cookie set on a response.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieName {
			return ck
		}
	}
	t.Fatal("expected a session cookie to be set")
	return nil
}

func TestAddFlash_RoundTrip(t *testing.T) {
	mgr, _ := newTestManager(t, time.Hour)

	c, rec := newTestContext()
	mgr.AddFlash(c, FlashSuccess, "New Poster Starry Night has been created")

	ck := sessionCookie(t, rec)
	c2, _ := newTestContext(ck)
	flashes := mgr.PopFlashes(c2)

	if len(flashes) != 1 {
		t.Fatalf("expected 1 flash, got %d", len(flashes))
	}
	if flashes[0].Kind != FlashSuccess {
		t.Errorf("expected kind %q, got %q", FlashSuccess, flashes[0].Kind)
	}
	if flashes[0].Message != "New Poster Starry Night has been created" {
		t.Errorf("unexpected message %q", flashes[0].Message)
	}
}

func TestPopFlashes_ClearsMessages(t *testing.T) {
	mgr, _ := newTestManager(t, time.Hour)

	c, rec := newTestContext()
	mgr.AddFlash(c, FlashError, "The form has expired. Please try again")
	ck := sessionCookie(t, rec)

	c2, _ := newTestContext(ck)
	if got := mgr.PopFlashes(c2); len(got) != 1 {
		t.Fatalf("expected 1 flash on first pop, got %d", len(got))
	}

	c3, _ := newTestContext(ck)
	if got := mgr.PopFlashes(c3); got != nil {
		t.Errorf("expected no flashes on second pop, got %v", got)
	}
}

func TestPopFlashes_NoSession(t *testing.T) {
	mgr, _ := newTestManager(t, time.Hour)

	c, _ := newTestContext()
	if got := mgr.PopFlashes(c); got != nil {
		t.Errorf("expected nil for a request without a session, got %v", got)
	}
}

func TestAddFlash_AppendsInOrder(t *testing.T) {
	mgr, _ := newTestManager(t, time.Hour)

	c, rec := newTestContext()
	mgr.AddFlash(c, FlashSuccess, "first")
	ck := sessionCookie(t, rec)

	// Second flash arrives on a later request in the same session.
	c2, _ := newTestContext(ck)
	mgr.AddFlash(c2, FlashError, "second")

	c3, _ := newTestContext(ck)
	flashes := mgr.PopFlashes(c3)
	if len(flashes) != 2 {
		t.Fatalf("expected 2 flashes, got %d", len(flashes))
	}
	if flashes[0].Message != "first" || flashes[1].Message != "second" {
		t.Errorf("flashes out of order: %v", flashes)
	}
}

func TestAddFlash_SetsTTL(t *testing.T) {
	mgr, srv := newTestManager(t, 30*time.Minute)

	c, rec := newTestContext()
	mgr.AddFlash(c, FlashSuccess, "hello")
	ck := sessionCookie(t, rec)

	ttl := srv.TTL(keyPrefix + ck.Value)
	if ttl != 30*time.Minute {
		t.Errorf("expected TTL 30m, got %v", ttl)
	}
}
