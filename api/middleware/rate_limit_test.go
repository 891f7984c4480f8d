package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type stubLimiterStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newStubLimiterStore() *stubLimiterStore {
	return &stubLimiterStore{counts: map[string]int64{}}
}

func (s *stubLimiterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.counts[key]++
	return s.counts[key], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitBlocksIPOverLimit(t *testing.T) {
	store := newStubLimiterStore()
	policy := NewRateLimitPolicy("checkout", time.Minute, 2, 0)
	handler := RateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d should pass but got %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 but got %d", rec.Code)
	}
}

func TestRateLimitCountsPerUser(t *testing.T) {
	store := newStubLimiterStore()
	policy := NewRateLimitPolicy("checkout", time.Minute, 0, 1)
	handler := RateLimit(policy, store, nil)(okHandler())

	request := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req = req.WithContext(WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := request("user-a"); code != http.StatusNoContent {
		t.Fatalf("first request should pass but got %d", code)
	}
	if code := request("user-a"); code != http.StatusTooManyRequests {
		t.Fatalf("second request for same user should block but got %d", code)
	}
	if code := request("user-b"); code != http.StatusNoContent {
		t.Fatalf("other user should pass but got %d", code)
	}
}

func TestRateLimitUsesForwardedForHeader(t *testing.T) {
	store := newStubLimiterStore()
	policy := NewRateLimitPolicy("checkout", time.Minute, 1, 0)
	handler := RateLimit(policy, store, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first request should pass but got %d", rec.Code)
	}

	if _, ok := store.counts["rl:ip:checkout:203.0.113.7"]; !ok {
		t.Fatalf("expected counter keyed on forwarded ip, got %v", store.counts)
	}
}

func TestRateLimitStoreFailureIsDependencyError(t *testing.T) {
	store := newStubLimiterStore()
	store.err = errors.New("redis down")
	policy := NewRateLimitPolicy("checkout", time.Minute, 1, 0)
	handler := RateLimit(policy, store, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 but got %d", rec.Code)
	}
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler := RateLimit(RateLimitPolicy{}, newStubLimiterStore(), nil)(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d should pass but got %d", i+1, rec.Code)
		}
	}
}
