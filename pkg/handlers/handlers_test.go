package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"wiki_server/pkg/logger"
)

func TestWithSafetyNetConfinesPanics(t *testing.T) {
	log := logger.NewStdLogger("", "")
	defer log.Release()

	handler := WithSafetyNet(log, func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected a 500, got %d", w.Code)
	}
}

func TestWithSafetyNetPassesThrough(t *testing.T) {
	log := logger.NewStdLogger("", "")
	defer log.Release()

	handler := WithSafetyNet(log, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusTeapot {
		t.Fatalf("Expected the wrapped status, got %d", w.Code)
	}
}

func TestWithRateLimitThrottlesPerClient(t *testing.T) {
	log := logger.NewStdLogger("", "")
	defer log.Release()

	handler := WithRateLimit(log, 2, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(remoteAddr string) int {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = remoteAddr
		handler(w, r)
		return w.Code
	}

	// The burst allows the first two requests through, the third
	// one is throttled.
	if code := send("10.0.0.1:1111"); code != http.StatusOK {
		t.Fatalf("Expected a 200 on the first request, got %d", code)
	}
	if code := send("10.0.0.1:1111"); code != http.StatusOK {
		t.Fatalf("Expected a 200 on the second request, got %d", code)
	}
	if code := send("10.0.0.1:1111"); code != http.StatusTooManyRequests {
		t.Fatalf("Expected a 429 on the third request, got %d", code)
	}

	// Another client has its own allowance. The port does not
	// participate in the identity.
	if code := send("10.0.0.2:2222"); code != http.StatusOK {
		t.Fatalf("Expected a 200 for another client, got %d", code)
	}
	if code := send("10.0.0.1:3333"); code != http.StatusTooManyRequests {
		t.Fatalf("Expected a 429 for the same host on another port, got %d", code)
	}
}
