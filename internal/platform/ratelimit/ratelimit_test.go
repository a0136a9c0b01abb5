package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func do(e *echo.Echo, target, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_FixedWindow(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	e := echo.New()
	e.GET("/x", ok, MiddlewareWithStore(Policy{Name: "test", Window: time.Minute, Limit: 2, Key: KeyIP("x")}, store))

	assert.Equal(t, http.StatusOK, do(e, "/x", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do(e, "/x", "10.0.0.1").Code)

	now = now.Add(15 * time.Second)
	rec := do(e, "/x", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "45", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded","success":false}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, do(e, "/x", "10.0.0.2").Code, "buckets are per client")

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, do(e, "/x", "10.0.0.1").Code, "window resets")
}

func TestMiddleware_SkipAndDynamicLimit(t *testing.T) {
	e := echo.New()
	e.GET("/x", ok, Middleware(Policy{
		Name:      "test",
		Limit:     5,
		LimitFunc: func(echo.Context) int { return 1 },
		Skip:      func(c echo.Context) bool { return c.QueryParam("refresh") != "true" },
	}))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(e, "/x", "10.0.0.1").Code)
	}
	assert.Equal(t, http.StatusOK, do(e, "/x?refresh=true", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(e, "/x?refresh=true", "10.0.0.1").Code)
}

func TestMiddleware_RedisStoreFailsOpen(t *testing.T) {
	rc := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rc.Close() })

	e := echo.New()
	e.GET("/x", ok, MiddlewareWithStore(Policy{Name: "test", Limit: 1}, NewRedisStore(rc)))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, do(e, "/x", "10.0.0.1").Code)
	}
}
