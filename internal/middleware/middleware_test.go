package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gearguard/internal/config"
)

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		RateLimitRPS:    1,
		RateLimitBurst:  2,
		RequestTimeout:  50 * time.Millisecond,
		ShutdownTimeout: time.Second,
		EnableCORS:      true,
		AllowedOrigins:  []string{"http://app.example"},
		TrustedProxies:  []string{"10.0.0.1"},
	}
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimit(t *testing.T) {
	sm := NewSecurityMiddleware(testSecurityConfig())
	handler := sm.RateLimit(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/equipment", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Other clients have their own bucket
	req := httptest.NewRequest(http.MethodGet, "/api/equipment", nil)
	req.RemoteAddr = "192.0.2.11:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimit_ResponseBody(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.RateLimitBurst = 1
	handler := NewSecurityMiddleware(cfg).RateLimit(okHandler)

	var rr *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	}

	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMIT_ERROR", body["code"])
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		origin         string
		expectedStatus int
		expectedOrigin string
	}{
		{name: "allowed origin", method: http.MethodGet, origin: "http://app.example", expectedStatus: http.StatusOK, expectedOrigin: "http://app.example"},
		{name: "foreign origin", method: http.MethodGet, origin: "http://evil.example", expectedStatus: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, origin: "http://app.example", expectedStatus: http.StatusNoContent, expectedOrigin: "http://app.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSecurityMiddleware(testSecurityConfig()).CORS(okHandler)
			req := httptest.NewRequest(tt.method, "/api/maintenance-requests/1", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		})
	}
}

func TestCORS_Disabled(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.EnableCORS = false
	handler := NewSecurityMiddleware(cfg).CORS(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://app.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestTimeout(t *testing.T) {
	sm := NewSecurityMiddleware(testSecurityConfig())

	t.Run("handler that waits out the deadline gets 408", func(t *testing.T) {
		handler := sm.RequestTimeout(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusRequestTimeout, rr.Code)
		assert.Contains(t, rr.Body.String(), "TIMEOUT_ERROR")
	})

	t.Run("fast handler is untouched", func(t *testing.T) {
		var deadlineSet bool
		handler := sm.RequestTimeout(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, deadlineSet = r.Context().Deadline()
			w.WriteHeader(http.StatusCreated)
		}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.True(t, deadlineSet)
	})
}

func TestTrustedProxy(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		expected   string
	}{
		{name: "direct client", remoteAddr: "192.0.2.1:5555", expected: "192.0.2.1"},
		{name: "trusted proxy forwards", remoteAddr: "10.0.0.1:80", xff: "198.51.100.7, 10.0.0.1", expected: "198.51.100.7"},
		{name: "untrusted proxy ignored", remoteAddr: "192.0.2.9:80", xff: "198.51.100.7", expected: "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := NewSecurityMiddleware(testSecurityConfig()).TrustedProxy(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIP(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	NewSecurityMiddleware(testSecurityConfig()).SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestRequestID(t *testing.T) {
	lm := NewLoggingMiddleware(zap.NewNop())

	t.Run("generated when absent", func(t *testing.T) {
		var inCtx string
		handler := lm.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inCtx = RequestID(r.Context())
		}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, inCtx, 36)
		assert.Equal(t, inCtx, rr.Header().Get(RequestIDHeader))
	})

	t.Run("caller id is kept", func(t *testing.T) {
		handler := lm.RequestID(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
	})
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	lm := NewLoggingMiddleware(zap.New(core))

	handler := lm.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("store exploded")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/board", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, rr.Body.String(), "store exploded")

	entries := logs.FilterMessage("HTTP handler panic").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "store exploded", entries[0].ContextMap()["error"])
	assert.NotEmpty(t, entries[0].ContextMap()["stack"])
}

func TestLogRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	lm := NewLoggingMiddleware(zap.New(core))

	handler := lm.LogRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/equipment", nil)
	req = req.WithContext(context.WithValue(req.Context(), clientIPKey, "198.51.100.7"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "198.51.100.7", fields["client_ip"])
	assert.Equal(t, int64(http.StatusTooManyRequests), fields["status"])
}

func TestRateLimit_IdleClientsAreEvicted(t *testing.T) {
	sm := NewSecurityMiddleware(testSecurityConfig())
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return now }
	sm.lastSweep = now
	handler := sm.RateLimit(okHandler)

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
		req.RemoteAddr = remoteAddr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	send("192.0.2.20:1000")
	now = now.Add(clientIdleTTL / 2)
	send("192.0.2.21:1000")
	require.Len(t, sm.clients, 2)

	// First client has been idle for the full TTL, second only for half of it
	now = now.Add(clientIdleTTL / 2)
	assert.Equal(t, http.StatusOK, send("192.0.2.22:1000"))

	assert.Len(t, sm.clients, 2)
	assert.NotContains(t, sm.clients, "192.0.2.20")
	assert.Contains(t, sm.clients, "192.0.2.21")
	assert.Contains(t, sm.clients, "192.0.2.22")
}
