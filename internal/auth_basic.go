package internal

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"wiki_server/pkg/dispatcher"
)

// BasicAuthenticator :
// An authenticator deriving the request identity from HTTP
// basic credentials checked against the `username` and
// `password` variables. Anonymous requests pass through when
// the authorization class of the request allows anonymous
// access; otherwise the client is challenged.
//
// The `username` and `password` hold the configured
// credentials.
//
// The `servername` shows up in the login challenge.
type BasicAuthenticator struct {
	username   string
	password   string
	servername string
}

// NewBasicAuthenticator :
// Creates a basic authenticator bound to the credentials
// configured on the input server.
//
// The `server` defines the server the authenticator is
// attached to.
//
// Returns the created authenticator.
func NewBasicAuthenticator(server *Server) *BasicAuthenticator {
	return &BasicAuthenticator{
		username:   server.Get("username"),
		password:   server.Get("password"),
		servername: server.servername,
	}
}

// Init :
// Implementation of the `Authenticator` interface. The
// authenticator is only active when both credentials are
// configured.
func (a *BasicAuthenticator) Init() (bool, error) {
	return len(a.username) > 0 && len(a.password) > 0, nil
}

// AuthenticateRequest :
// Implementation of the `Authenticator` interface. Requests
// without an `Authorization` header are let through as
// anonymous when anonymous access is allowed; anything else
// must carry the configured credentials or gets a login
// challenge.
func (a *BasicAuthenticator) AuthenticateRequest(w http.ResponseWriter, r *http.Request, state *dispatcher.State) bool {
	username, password, ok := r.BasicAuth()

	if !ok {
		if state.AllowAnon {
			// No credentials supplied and none needed.
			return true
		}

		a.challenge(w)
		return false
	}

	// Constant time comparison so that the response time does
	// not leak how much of the credentials matched.
	userMatches := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passMatches := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1

	if !userMatches || !passMatches {
		a.challenge(w)
		return false
	}

	state.AuthenticatedUsername = username

	return true
}

// challenge :
// Writes the login challenge for this realm. The caller must
// perform no further writes afterwards.
//
// The `w` represents the response writer of the request.
func (a *BasicAuthenticator) challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", a.servername))
	http.Error(w, fmt.Sprintf("Login required to access '%s'", a.servername), http.StatusUnauthorized)
}
