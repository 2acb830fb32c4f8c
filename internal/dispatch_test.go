package internal

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"wiki_server/pkg/arguments"
	"wiki_server/pkg/dispatcher"
)

func TestWritesRequireCsrfHeader(t *testing.T) {
	server := newTestServer(t, nil)
	auth := &stubAuthenticator{username: "alice"}
	server.RegisterAuthenticator(auth)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("PUT", "/recipes/default/tiddlers/hello", strings.NewReader("{}"))
	server.RequestHandler(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected a 403, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "'X-Requested-With' header required to login to 'Test Wiki'") {
		t.Fatalf("Unexpected rejection message %q", w.Body.String())
	}

	// The gate fires before authentication.
	if auth.calls != 0 {
		t.Fatalf("Expected the authenticator to not run, got %d calls", auth.calls)
	}
}

func TestCsrfGateSkipsReadsAndDisabledServers(t *testing.T) {
	server := newTestServer(t, nil)
	for _, route := range DefaultRoutes() {
		server.AddRoute(route)
	}

	// Reads never need the header.
	w := httptest.NewRecorder()
	server.RequestHandler(w, httptest.NewRequest("GET", "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected a 200 on a read, got %d", w.Code)
	}

	// Disabling the gate lets writes through without the header.
	server = newTestServer(t, map[string]string{"csrf-disable": "yes"})
	server.AddRoute(&dispatcher.Route{
		Method: "PUT",
		Path:   regexp.MustCompile(`^/echo$`),
		Handler: func(w http.ResponseWriter, r *http.Request, state *dispatcher.State) {
			w.WriteHeader(http.StatusNoContent)
		},
	})

	w = httptest.NewRecorder()
	server.RequestHandler(w, httptest.NewRequest("PUT", "/echo", strings.NewReader("data")))
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected a 204 with the gate disabled, got %d", w.Code)
	}
}

func TestUnauthorizedIdentityGetsNamed(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"readers": "(anon)",
		"writers": "alice",
	})
	server.RegisterAuthenticator(&stubAuthenticator{username: "mallory"})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("PUT", "/recipes/default/tiddlers/hello", strings.NewReader("{}"))
	r.Header.Set("X-Requested-With", "TiddlyWiki")
	server.RequestHandler(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected a 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "'mallory' is not authorized to access 'Test Wiki'") {
		t.Fatalf("Unexpected rejection message %q", w.Body.String())
	}
}

func TestUnknownPathYieldsNotFound(t *testing.T) {
	server := newTestServer(t, nil)

	w := httptest.NewRecorder()
	server.RequestHandler(w, httptest.NewRequest("GET", "/no/such/route", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected a 404, got %d", w.Code)
	}
}

func TestStringFramingAccumulatesBody(t *testing.T) {
	server := newTestServer(t, map[string]string{"csrf-disable": "yes"})

	var received []byte
	server.AddRoute(&dispatcher.Route{
		Method:     "PUT",
		Path:       regexp.MustCompile(`^/echo$`),
		BodyFormat: dispatcher.BodyString,
		Handler: func(w http.ResponseWriter, r *http.Request, state *dispatcher.State) {
			received = state.Data
			w.WriteHeader(http.StatusNoContent)
		},
	})

	w := httptest.NewRecorder()
	server.RequestHandler(w, httptest.NewRequest("PUT", "/echo", strings.NewReader("hello body")))

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected a 204, got %d", w.Code)
	}
	if string(received) != "hello body" {
		t.Fatalf("Expected the accumulated body, got %q", received)
	}
}

func TestStreamFramingLeavesBodyUntouched(t *testing.T) {
	server := newTestServer(t, map[string]string{"csrf-disable": "yes"})

	server.AddRoute(&dispatcher.Route{
		Method:     "PUT",
		Path:       regexp.MustCompile(`^/upload$`),
		BodyFormat: dispatcher.BodyStream,
		Handler: func(w http.ResponseWriter, r *http.Request, state *dispatcher.State) {
			if state.Data != nil {
				t.Errorf("Expected no accumulated body for a stream route")
			}
			w.WriteHeader(http.StatusNoContent)
		},
	})

	w := httptest.NewRecorder()
	server.RequestHandler(w, httptest.NewRequest("PUT", "/upload", strings.NewReader("raw stream")))

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected a 204, got %d", w.Code)
	}
}

func TestInvalidBodyFormatIsRejected(t *testing.T) {
	server := newTestServer(t, map[string]string{"csrf-disable": "yes"})

	server.AddRoute(&dispatcher.Route{
		Method:     "PUT",
		Path:       regexp.MustCompile(`^/weird$`),
		BodyFormat: "weird",
		Handler: func(w http.ResponseWriter, r *http.Request, state *dispatcher.State) {
			t.Errorf("Expected the handler to not run")
		},
	})

	w := httptest.NewRecorder()
	server.RequestHandler(w, httptest.NewRequest("PUT", "/weird", strings.NewReader("data")))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected a 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid bodyFormat weird") {
		t.Fatalf("Unexpected rejection message %q", w.Body.String())
	}
}

func TestOversizedBodyIsRejected(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"csrf-disable":  "yes",
		"max-body-size": "8",
	})

	invoked := false
	server.AddRoute(&dispatcher.Route{
		Method:     "PUT",
		Path:       regexp.MustCompile(`^/echo$`),
		BodyFormat: dispatcher.BodyString,
		Handler: func(w http.ResponseWriter, r *http.Request, state *dispatcher.State) {
			invoked = true
			w.WriteHeader(http.StatusNoContent)
		},
	})

	// A body within the cap reaches the handler.
	w := httptest.NewRecorder()
	server.RequestHandler(w, httptest.NewRequest("PUT", "/echo", strings.NewReader("12345678")))
	if w.Code != http.StatusNoContent || !invoked {
		t.Fatalf("Expected a 204 for a body within the cap, got %d", w.Code)
	}

	// A body above the cap is refused before the handler.
	invoked = false
	w = httptest.NewRecorder()
	server.RequestHandler(w, httptest.NewRequest("PUT", "/echo", strings.NewReader("123456789")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected a 413, got %d", w.Code)
	}
	if invoked {
		t.Fatalf("Expected the handler to not run")
	}
}

func TestInvalidServerConfigurationIsReported(t *testing.T) {
	reference := newTestServer(t, nil)

	for _, overrides := range []map[string]string{
		{"max-body-size": "not a number"},
		{"read-timeout": "not a duration"},
		{"write-timeout": "not a duration"},
	} {
		variables := arguments.DefaultVariables()
		variables.Merge(overrides)

		if _, err := NewServer(reference.store, reference.boot, variables, reference.log); err == nil {
			t.Errorf("Expected an error for %v", overrides)
		}
	}
}
