package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vented/internal/api/middleware"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSessionMintsAndKeepsIdentity(t *testing.T) {
	m, err := middleware.NewSessionMiddleware(testSecret)
	require.NoError(t, err)

	var seen []string
	handler := m.WithIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, middleware.GetUserID(r))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest("GET", "/", nil))
	require.Len(t, seen, 1)
	assert.NotEmpty(t, seen[0])
	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies)

	second := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		second.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), second)
	require.Len(t, seen, 2)
	assert.Equal(t, seen[0], seen[1])
}

func TestSessionReplacesTamperedCookie(t *testing.T) {
	m, err := middleware.NewSessionMiddleware(testSecret)
	require.NoError(t, err)

	var got string
	handler := m.WithIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.GetUserID(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "vented_session", Value: "garbage"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, got)
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestSessionRejectsShortSecret(t *testing.T) {
	_, err := middleware.NewSessionMiddleware("short")
	assert.Error(t, err)
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(2, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterKeysByClient(t *testing.T) {
	rl := middleware.NewRateLimiter(1, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, addr)
	}
}

func TestClientIPFromForwardedHeader(t *testing.T) {
	rl := middleware.NewRateLimiter(1, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	// Same forwarded client behind two proxy addresses shares one window.
	for i, remote := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = remote
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if i == 0 {
			assert.Equal(t, http.StatusOK, rec.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}
}
