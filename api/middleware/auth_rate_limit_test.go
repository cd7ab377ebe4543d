package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func loginRequest(email, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
	req.RemoteAddr = ip + ":5678"
	return req
}

func TestAuthRateLimitPreservesBody(t *testing.T) {
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 2, 2), newFakeRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"email":"tester@example.com"`) {
			t.Fatalf("unexpected body: %s", body)
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("tester@example.com", "1.2.3.4"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRateLimitEmailLimitIsCaseInsensitive(t *testing.T) {
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 0, 2), newFakeRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	emails := []string{"blocked@example.com", "Blocked@Example.com", " BLOCKED@example.com"}
	var last *httptest.ResponseRecorder
	for i, email := range emails {
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, loginRequest(email, "10.0.0."+string(rune('1'+i))))
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", last.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(last.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeRateLimit) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if last.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", last.Header().Get("Retry-After"))
	}
}

func TestAuthRateLimitIPLimit(t *testing.T) {
	handler := AuthRateLimit(NewAuthRateLimitPolicy("register", time.Minute, 1, 0), newFakeRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, loginRequest("a@example.com", "9.9.9.9"))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, loginRequest("b@example.com", "9.9.9.9"))
	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 200 then 429, got %d then %d", first.Code, second.Code)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := newFakeRateStore()
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", 0, 5, 5), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("a@example.com", "1.1.1.1"))
	if rec.Code != http.StatusOK || len(store.counts) != 0 {
		t.Fatalf("expected untouched pass-through, got %d with %d counters", rec.Code, len(store.counts))
	}
}
