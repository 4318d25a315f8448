package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.5:1234"
	if got := RealIP(r); got != "10.0.0.5" {
		t.Errorf("RealIP = %q, want %q", got, "10.0.0.5")
	}

	r.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	if got := RealIP(r); got != "203.0.113.7" {
		t.Errorf("RealIP with XFF = %q, want %q", got, "203.0.113.7")
	}
}

func TestThrottleAllow(t *testing.T) {
	th := NewThrottle(3, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	th.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if ok, _ := th.Allow("a"); !ok {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}
	ok, wait := th.Allow("a")
	if ok {
		t.Fatal("4th hit should be denied")
	}
	if wait != time.Minute {
		t.Errorf("wait = %v, want 1m", wait)
	}

	if ok, _ := th.Allow("b"); !ok {
		t.Error("other keys are independent")
	}

	now = now.Add(time.Minute)
	if ok, _ := th.Allow("a"); !ok {
		t.Error("window should reset")
	}
}

func TestThrottlePrune(t *testing.T) {
	th := NewThrottle(1, time.Second)
	now := time.Now()
	th.now = func() time.Time { return now }

	th.Allow("old")
	now = now.Add(2 * time.Second)
	th.Allow("new")
	th.Prune()

	th.mu.Lock()
	defer th.mu.Unlock()
	if _, ok := th.windows["old"]; ok {
		t.Error("expired window should be pruned")
	}
	if _, ok := th.windows["new"]; !ok {
		t.Error("live window should be kept")
	}
}

func TestThrottleWrap(t *testing.T) {
	th := NewThrottle(1, time.Minute)
	h := th.Wrap(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	first := httptest.NewRecorder()
	h(first, httptest.NewRequest("POST", "/api/import", nil))
	if first.Code != http.StatusAccepted {
		t.Fatalf("first status = %d, want 202", first.Code)
	}

	second := httptest.NewRecorder()
	h(second, httptest.NewRequest("POST", "/api/import", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if seen == "" {
		t.Fatal("expected generated request id")
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header = %q, want %q", rec.Header().Get(RequestIDHeader), seen)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc-123" {
		t.Errorf("client id not reused, got %q", seen)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))
	req := httptest.NewRequest("GET", "/api/items/9", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{"level=WARN", "status=404", "path=/api/items/9", "request_id=rid-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}
