package internal

import (
	"net/http"
	"net/url"

	"wiki_server/pkg/dispatcher"
)

// HeaderAuthenticator :
// An authenticator trusting a header set by a reverse proxy
// in front of the server. The name of the header is taken
// from the `authenticated-user-header` variable; requests
// without the header are treated as anonymous.
//
// The `header` names the trusted header.
type HeaderAuthenticator struct {
	header string
}

// NewHeaderAuthenticator :
// Creates a header authenticator bound to the input server's
// configuration.
//
// The `server` defines the server the authenticator is
// attached to.
//
// Returns the created authenticator.
func NewHeaderAuthenticator(server *Server) *HeaderAuthenticator {
	return &HeaderAuthenticator{
		header: server.Get("authenticated-user-header"),
	}
}

// Init :
// Implementation of the `Authenticator` interface. The
// authenticator is only active when a trusted header was
// configured.
func (a *HeaderAuthenticator) Init() (bool, error) {
	return len(a.header) > 0, nil
}

// AuthenticateRequest :
// Implementation of the `Authenticator` interface. The value
// of the trusted header (URI decoded to allow non-ASCII user
// names) becomes the authenticated username; its absence
// means anonymous access. This authenticator never writes a
// response itself.
func (a *HeaderAuthenticator) AuthenticateRequest(w http.ResponseWriter, r *http.Request, state *dispatcher.State) bool {
	value := r.Header.Get(a.header)
	if len(value) > 0 {
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}

		state.AuthenticatedUsername = value
	}

	return true
}
