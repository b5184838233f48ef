package httpx

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSMiddleware_AllowedOrigin(t *testing.T) {
	handler := CORSMiddleware([]string{"http://localhost:3000", "http://localhost:5173"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "X-Request-Id", w.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	methods := w.Header().Get("Access-Control-Allow-Methods")
	assert.True(t, strings.Contains(methods, "PATCH") && strings.Contains(methods, "DELETE"), methods)
}

func TestCORSMiddleware_DisallowedOrigin(t *testing.T) {
	handler := CORSMiddleware([]string{"http://localhost:3000"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	req.Header.Set("Origin", "http://evil.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	handler := CORSMiddleware([]string{"http://localhost:3000"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/v1/books", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	t.Run("hsts enabled", func(t *testing.T) {
		w := httptest.NewRecorder()
		SecurityHeadersMiddleware(true)(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("hsts disabled", func(t *testing.T) {
		w := httptest.NewRecorder()
		SecurityHeadersMiddleware(false)(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
		assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	})
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(1024)(okHandler())

	t.Run("under limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/books", bytes.NewBuffer(make([]byte, 512))))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/books", bytes.NewBuffer(make([]byte, 2048))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r)
	}))

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-Id"))
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "req-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
	})

	t.Run("replaces unsafe id", func(t *testing.T) {
		for _, id := range []string{"has space", strings.Repeat("a", 129), "tab\tid"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-Id", id)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.NotEqual(t, id, seen)
			assert.Len(t, seen, 36)
		}
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := AccessLogMiddleware(RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func hitFrom(handler http.Handler, remoteAddr, forwarded string) int {
	req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	req.RemoteAddr = remoteAddr
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("burst per host", func(t *testing.T) {
		rl := NewRateLimitMiddleware(1, 2)
		t.Cleanup(rl.Close)
		handler := rl.Middleware(okHandler())

		codes := []int{
			hitFrom(handler, "10.0.0.1:1234", ""),
			hitFrom(handler, "10.0.0.1:1234", ""),
			hitFrom(handler, "10.0.0.1:1234", ""),
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("new source port shares the host bucket", func(t *testing.T) {
		rl := NewRateLimitMiddleware(1, 1)
		t.Cleanup(rl.Close)
		handler := rl.Middleware(okHandler())

		assert.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.2:40001", ""))
		assert.Equal(t, http.StatusTooManyRequests, hitFrom(handler, "10.0.0.2:40002", ""))
		assert.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.3:40002", ""))
	})

	t.Run("forwarded header ignored without trusted proxy", func(t *testing.T) {
		rl := NewRateLimitMiddleware(1, 1)
		t.Cleanup(rl.Close)
		handler := rl.Middleware(okHandler())

		assert.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.4:1000", "203.0.113.1"))
		assert.Equal(t, http.StatusTooManyRequests, hitFrom(handler, "10.0.0.4:1001", "203.0.113.2"))
	})

	t.Run("trusted proxy keys on the appended hop", func(t *testing.T) {
		rl := NewRateLimitMiddleware(1, 1, WithTrustedProxy(true))
		t.Cleanup(rl.Close)
		handler := rl.Middleware(okHandler())

		assert.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.5:1000", "198.51.100.9, 203.0.113.1"))
		assert.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.5:1000", "203.0.113.2"))
		assert.Equal(t, http.StatusTooManyRequests, hitFrom(handler, "10.0.0.5:1001", "spoofed, 203.0.113.1"))
	})
}

func TestRateLimitMiddleware_CloseAndEviction(t *testing.T) {
	rl := NewRateLimitMiddleware(1, 1, WithIdleTTL(time.Minute))
	rl.Close()
	rl.Close()

	rl.limiterFor("10.0.0.9")
	rl.evictIdle(time.Now().Add(2 * time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.clients)
}
