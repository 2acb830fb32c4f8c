package internal

import (
	"fmt"
	"net/http"

	"wiki_server/pkg/dispatcher"
	"wiki_server/pkg/logger"
)

// Definition of the authorization classes a request can
// require. Every HTTP verb maps to exactly one class.
const (
	authReaders = "readers"
	authWriters = "writers"
)

// methodMappings :
// Maps each HTTP verb to the authorization class required to
// perform it. Verbs absent from this map default to `readers`.
// This fail-open default mirrors the behavior of the classic
// wiki server; routes for unlisted verbs have to be registered
// explicitly anyway before such a request can reach a handler.
var methodMappings = map[string]string{
	"GET":     authReaders,
	"OPTIONS": authReaders,
	"HEAD":    authReaders,
	"PUT":     authWriters,
	"POST":    authWriters,
	"DELETE":  authWriters,
}

// authorizationType :
// Resolves the authorization class required by the input
// method.
//
// The `method` defines the HTTP verb of the request.
//
// Returns the required authorization class.
func authorizationType(method string) string {
	if kind, ok := methodMappings[method]; ok {
		return kind
	}

	return authReaders
}

// Authenticator :
// Describes a pluggable component able to derive a request's
// authenticated identity. The server owns an ordered list of
// authenticators but only ever consults the first registered
// one for a given request.
type Authenticator interface {
	// Init prepares the authenticator. It returns whether the
	// authenticator is active: inactive authenticators are
	// skipped at registration. An error is logged and excludes
	// the authenticator, but never prevents the server from
	// starting.
	Init() (bool, error)

	// AuthenticateRequest derives the identity of the input
	// request into `state.AuthenticatedUsername` (left empty
	// for anonymous access) and returns `true`. When it
	// returns `false` the authenticator has already written a
	// response (typically a login challenge) and the caller
	// must perform no further writes.
	AuthenticateRequest(w http.ResponseWriter, r *http.Request, state *dispatcher.State) bool
}

// RegisterAuthenticator :
// Initialises the input authenticator and appends it to the
// server's list if it reported itself active. A failing
// initialisation is logged and the authenticator is simply
// excluded; the server continues without it.
//
// The `a` defines the authenticator to register.
func (s *Server) RegisterAuthenticator(a Authenticator) {
	active, err := a.Init()
	if err != nil {
		s.log.Trace(logger.Error, module, fmt.Sprintf("Error: %v", err))
		return
	}

	if active {
		s.authenticators = append(s.authenticators, a)
	}
}

// isAuthorized :
// Evaluates whether the input identity holds the input
// authorization class. Access is granted when the class
// allows anonymous access through the `(anon)` sentinel, or
// when the identity is set and either the `(authenticated)`
// sentinel or the identity itself appears in the configured
// principals.
//
// The `kind` defines the authorization class to check.
//
// The `username` defines the identity to check. An empty
// string stands for anonymous access.
//
// Returns `true` if the identity is authorized.
func (s *Server) isAuthorized(kind string, username string) bool {
	principals := s.principals[kind]

	for _, principal := range principals {
		if principal == "(anon)" {
			return true
		}
	}

	if len(username) == 0 {
		return false
	}

	for _, principal := range principals {
		if principal == "(authenticated)" || principal == username {
			return true
		}
	}

	return false
}
