package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wiki_server/pkg/dispatcher"
)

func TestAuthorizationTypeDefaultsToReaders(t *testing.T) {
	cases := map[string]string{
		"GET":     authReaders,
		"HEAD":    authReaders,
		"OPTIONS": authReaders,
		"PUT":     authWriters,
		"POST":    authWriters,
		"DELETE":  authWriters,
		"PATCH":   authReaders,
		"TRACE":   authReaders,
	}

	for method, expected := range cases {
		if kind := authorizationType(method); kind != expected {
			t.Errorf("Expected %q for method %q, got %q", expected, method, kind)
		}
	}
}

func TestIsAuthorized(t *testing.T) {
	cases := []struct {
		name     string
		readers  string
		username string
		granted  bool
	}{
		{"anon sentinel grants anonymous", "(anon)", "", true},
		{"anon sentinel grants everyone", "(anon),alice", "mallory", true},
		{"anonymous refused without sentinel", "alice", "", false},
		{"authenticated sentinel needs an identity", "(authenticated)", "", false},
		{"authenticated sentinel grants any identity", "(authenticated)", "mallory", true},
		{"verbatim principal match", "alice,bob", "bob", true},
		{"verbatim principal mismatch", "alice,bob", "mallory", false},
		{"spaces around principals are trimmed", "alice, bob", "bob", true},
	}

	for _, tc := range cases {
		server := newTestServer(t, map[string]string{"readers": tc.readers})

		if granted := server.isAuthorized(authReaders, tc.username); granted != tc.granted {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.granted, granted)
		}
	}
}

func TestPrincipalsDefaultToConfiguredUser(t *testing.T) {
	// With credentials configured and no explicit lists, only
	// the configured user holds both classes.
	server := newTestServer(t, map[string]string{
		"username": "alice",
		"password": "secret",
	})

	if !server.isAuthorized(authReaders, "alice") || !server.isAuthorized(authWriters, "alice") {
		t.Fatalf("Expected the configured user to hold both classes")
	}
	if server.isAuthorized(authReaders, "") || server.isAuthorized(authWriters, "mallory") {
		t.Fatalf("Expected anonymous and unknown identities to be refused")
	}

	// Without credentials both classes default to anonymous.
	server = newTestServer(t, nil)

	if !server.isAuthorized(authReaders, "") || !server.isAuthorized(authWriters, "") {
		t.Fatalf("Expected anonymous access by default")
	}
}

func TestRegisterAuthenticatorSkipsInactive(t *testing.T) {
	server := newTestServer(t, nil)

	// The basic authenticator reports inactive without creds.
	server.RegisterAuthenticator(NewBasicAuthenticator(server))
	if len(server.authenticators) != 0 {
		t.Fatalf("Expected no active authenticator")
	}

	server.RegisterAuthenticator(&stubAuthenticator{username: "alice"})
	if len(server.authenticators) != 1 {
		t.Fatalf("Expected a single active authenticator")
	}
}

func TestBasicAuthenticator(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"username": "alice",
		"password": "secret",
	})
	auth := NewBasicAuthenticator(server)

	if active, err := auth.Init(); !active || err != nil {
		t.Fatalf("Expected the authenticator to be active (err: %v)", err)
	}

	// Valid credentials resolve the identity.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r.SetBasicAuth("alice", "secret")
	state := &dispatcher.State{}
	if !auth.AuthenticateRequest(w, r, state) {
		t.Fatalf("Expected valid credentials to pass")
	}
	if state.AuthenticatedUsername != "alice" {
		t.Fatalf("Expected username \"alice\", got %q", state.AuthenticatedUsername)
	}

	// Wrong credentials trigger a login challenge.
	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/", nil)
	r.SetBasicAuth("alice", "wrong")
	if auth.AuthenticateRequest(w, r, &dispatcher.State{}) {
		t.Fatalf("Expected wrong credentials to fail")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected a 401, got %d", w.Code)
	}
	if challenge := w.Header().Get("WWW-Authenticate"); !strings.Contains(challenge, "Test Wiki") {
		t.Fatalf("Expected the realm to name the server, got %q", challenge)
	}

	// Missing credentials pass through only when anonymous
	// access is allowed.
	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/", nil)
	state = &dispatcher.State{AllowAnon: true}
	if !auth.AuthenticateRequest(w, r, state) {
		t.Fatalf("Expected anonymous access to pass")
	}
	if len(state.AuthenticatedUsername) != 0 {
		t.Fatalf("Expected an anonymous identity, got %q", state.AuthenticatedUsername)
	}

	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/", nil)
	if auth.AuthenticateRequest(w, r, &dispatcher.State{}) {
		t.Fatalf("Expected anonymous access to be challenged")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected a 401, got %d", w.Code)
	}
}

func TestHeaderAuthenticator(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"authenticated-user-header": "X-Forwarded-User",
	})
	auth := NewHeaderAuthenticator(server)

	if active, err := auth.Init(); !active || err != nil {
		t.Fatalf("Expected the authenticator to be active (err: %v)", err)
	}

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-User", "jos%C3%A9")
	state := &dispatcher.State{}
	if !auth.AuthenticateRequest(httptest.NewRecorder(), r, state) {
		t.Fatalf("Expected the header authenticator to pass")
	}
	if state.AuthenticatedUsername != "josé" {
		t.Fatalf("Expected the decoded username, got %q", state.AuthenticatedUsername)
	}

	// Without the header the request stays anonymous.
	r = httptest.NewRequest("GET", "/", nil)
	state = &dispatcher.State{}
	if !auth.AuthenticateRequest(httptest.NewRecorder(), r, state) {
		t.Fatalf("Expected the header authenticator to pass")
	}
	if len(state.AuthenticatedUsername) != 0 {
		t.Fatalf("Expected an anonymous identity, got %q", state.AuthenticatedUsername)
	}
}
