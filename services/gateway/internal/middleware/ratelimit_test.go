package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func TestRateLimit_WithinLimit_Passes(t *testing.T) {
	handler := RateLimit(10, 5, newTestLogger())(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stalls", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "request %d", i)
	}
}

func TestRateLimit_BurstExceeded_Returns429(t *testing.T) {
	handler := RateLimit(1, 3, newTestLogger())(okHandler())

	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stalls", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Contains(t, last.Body.String(), "RATE_LIMITED")
}

func TestRateLimit_DifferentIPs_Independent(t *testing.T) {
	handler := RateLimit(1, 1, newTestLogger())(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/api/v1/stalls", nil)
	first.RemoteAddr = "10.0.0.1:12345"
	rr1 := httptest.NewRecorder()
	handler.ServeHTTP(rr1, first)
	assert.Equal(t, http.StatusOK, rr1.Code)

	// First IP's bucket is now empty but the second IP has its own.
	second := httptest.NewRequest(http.MethodGet, "/api/v1/stalls", nil)
	second.RemoteAddr = "10.0.0.2:12345"
	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, second)
	assert.Equal(t, http.StatusOK, rr2.Code)
}

func TestRateLimit_XForwardedFor_UsedForBucketing(t *testing.T) {
	handler := RateLimit(1, 1, newTestLogger())(okHandler())

	for i, xff := range []string{"203.0.113.7", "203.0.113.7, 10.0.0.1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stalls", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		// Both requests resolve to the same client IP, so the second one
		// drains an already-empty bucket.
		if i == 0 {
			assert.Equal(t, http.StatusOK, rr.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		}
	}
}

func TestVisitorStore_CleanupEvictsStaleEntries(t *testing.T) {
	now := time.Now()
	store := &visitorStore{
		visitors: make(map[string]*visitor),
		rps:      10,
		burst:    10,
		ttl:      time.Minute,
		nowFunc:  func() time.Time { return now },
	}

	store.getVisitor("10.0.0.1")
	store.getVisitor("10.0.0.2")
	assert.Equal(t, 2, store.len())

	// Advance the clock past the TTL for one visitor only.
	now = now.Add(2 * time.Minute)
	store.getVisitor("10.0.0.1")
	store.cleanup()

	assert.Equal(t, 1, store.len())
}
