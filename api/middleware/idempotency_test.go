package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/expresskart/expresskart-backend/pkg/enums"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "fake:" + scope + ":" + id
}

type orderHandler struct {
	calls  int
	status int
}

func (h *orderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	_, _ = io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.status)
	_, _ = fmt.Fprintf(w, `{"call":%d}`, h.calls)
}

func postOrder(h http.Handler, userID uuid.UUID, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	req = req.WithContext(WithPrincipal(req.Context(), userID, enums.RoleUser))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyReplaysFirstResponse(t *testing.T) {
	next := &orderHandler{status: http.StatusCreated}
	h := Idempotency(newFakeStore(), time.Hour, nil)(next)
	user := uuid.New()

	first := postOrder(h, user, "k-1", `{"items":[1]}`)
	second := postOrder(h, user, "k-1", `{"items":[1]}`)

	if next.calls != 1 {
		t.Fatalf("handler ran %d times", next.calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Fatalf("replay mismatch: %d %q vs %q", second.Code, second.Body.String(), first.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("replay header missing")
	}
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	next := &orderHandler{status: http.StatusCreated}
	h := Idempotency(newFakeStore(), time.Hour, nil)(next)
	user := uuid.New()

	postOrder(h, user, "k-1", `{"items":[1]}`)
	rec := postOrder(h, user, "k-1", `{"items":[2]}`)
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "IDEMPOTENCY_KEY_REUSED") {
		t.Fatalf("expected IDEMPOTENCY_KEY_REUSED, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	next := &orderHandler{status: http.StatusCreated}
	h := Idempotency(newFakeStore(), time.Hour, nil)(next)

	postOrder(h, uuid.New(), "shared", `{}`)
	postOrder(h, uuid.New(), "shared", `{}`)
	if next.calls != 2 {
		t.Fatalf("expected two executions, got %d", next.calls)
	}
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	next := &orderHandler{status: http.StatusCreated}
	store := newFakeStore()
	h := Idempotency(store, time.Hour, nil)(next)
	user := uuid.New()

	postOrder(h, user, "", `{}`)
	postOrder(h, user, "", `{}`)
	if next.calls != 2 || len(store.data) != 0 {
		t.Fatalf("expected pass-through, calls=%d stored=%d", next.calls, len(store.data))
	}
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	next := &orderHandler{status: http.StatusInternalServerError}
	store := newFakeStore()
	h := Idempotency(store, time.Hour, nil)(next)
	user := uuid.New()

	postOrder(h, user, "k-err", `{}`)
	if len(store.data) != 0 {
		t.Fatalf("failed attempt left %d keys", len(store.data))
	}
	next.status = http.StatusCreated
	rec := postOrder(h, user, "k-err", `{}`)
	if rec.Code != http.StatusCreated || next.calls != 2 {
		t.Fatalf("retry not executed: %d calls=%d", rec.Code, next.calls)
	}
}

func TestIdempotencyInFlightIsConflict(t *testing.T) {
	store := newFakeStore()
	user := uuid.New()
	key := store.IdempotencyKey(user.String()+"|POST|/api/orders", "k-busy")
	store.data[key] = idempotencyInFlight + ":" + hashBody([]byte(`{}`))

	next := &orderHandler{status: http.StatusCreated}
	rec := postOrder(Idempotency(store, time.Hour, nil)(next), user, "k-busy", `{}`)
	if rec.Code != http.StatusConflict || next.calls != 0 {
		t.Fatalf("expected 409 without executing, got %d calls=%d", rec.Code, next.calls)
	}
}
