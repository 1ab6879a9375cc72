package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"reqtrace/internal/domain"
	"reqtrace/internal/gateway"
	"reqtrace/internal/gateway/middleware"
)

var requestIDPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestRequestIDSetsHeader(t *testing.T) {
	var captured domain.RequestID
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := gateway.RequestIDFromContext(r.Context())
		if !ok {
			t.Error("expected request ID in context")
		}
		captured = id
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	got := rec.Header().Get("X-Request-Id")
	if got != captured.String() {
		t.Errorf("expected X-Request-Id header %q, got %q", captured, got)
	}
	if !requestIDPattern.MatchString(got) {
		t.Errorf("header %q is not a canonical identifier", got)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
}

func TestRequestIDHandlerNeverWrites(t *testing.T) {
	var captured domain.RequestID
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = gateway.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Request-Id") != captured.String() {
		t.Errorf("expected header %q, got %q", captured, rec.Header().Get("X-Request-Id"))
	}
}

func TestRequestIDImplicitWrite(t *testing.T) {
	var captured domain.RequestID
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = gateway.RequestIDFromContext(r.Context())
		w.Write([]byte("body"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// httptest.ResponseRecorder snapshots headers on first write.
	if got := rec.Result().Header.Get("X-Request-Id"); got != captured.String() {
		t.Errorf("expected committed header %q, got %q", captured, got)
	}
}

func TestRequestIDOverwritesExisting(t *testing.T) {
	var captured domain.RequestID
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = gateway.RequestIDFromContext(r.Context())
		w.Header().Set("X-Request-Id", "handler-chosen")
		w.Header().Add("X-Request-Id", "second")
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "client-chosen")
	handler.ServeHTTP(rec, req)

	got := rec.Result().Header.Values("X-Request-Id")
	if len(got) != 1 || got[0] != captured.String() {
		t.Errorf("expected single header %q, got %v", captured, got)
	}
	if captured.String() == "client-chosen" {
		t.Error("client-supplied request ID must not be reused")
	}
}

func TestRequestIDFlush(t *testing.T) {
	var captured domain.RequestID
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = gateway.RequestIDFromContext(r.Context())
		if err := http.NewResponseController(w).Flush(); err != nil {
			t.Errorf("flush: %v", err)
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !rec.Flushed {
		t.Error("expected flush to reach the recorder")
	}
	if got := rec.Result().Header.Get("X-Request-Id"); got != captured.String() {
		t.Errorf("expected header %q, got %q", captured, got)
	}
}

func TestRequestIDUniqueAcrossConcurrentRequests(t *testing.T) {
	const n = 200
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			ids[i] = rec.Header().Get("X-Request-Id")
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate request ID %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestRequestIDPanicPassesThrough(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	defer func() {
		if v := recover(); v != "boom" {
			t.Errorf("expected original panic value, got %v", v)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Fatal("expected panic")
}
