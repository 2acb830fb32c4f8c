package internal

import (
	"net/http"
	"testing"

	"wiki_server/pkg/arguments"
	"wiki_server/pkg/dispatcher"
	"wiki_server/pkg/logger"
	"wiki_server/pkg/wiki"
)

// newTestServer :
// Assembles a server around an in-memory store for the tests of
// this package. The site title is seeded so that the messages
// embedding the server name are predictable.
//
// The `overrides` are applied on top of the default variables.
func newTestServer(t *testing.T, overrides map[string]string) *Server {
	t.Helper()

	store := wiki.NewMemoryStore()
	store.SetTiddler(wiki.NewTiddler("$:/SiteTitle", "Test Wiki"))

	variables := arguments.DefaultVariables()
	variables.Merge(overrides)

	log := logger.NewStdLogger("", "")
	t.Cleanup(log.Release)

	server, err := NewServer(store, wiki.Boot{WikiPath: "."}, variables, log)
	if err != nil {
		t.Fatalf("Could not create server (err: %v)", err)
	}

	return server
}

// stubAuthenticator :
// An authenticator resolving every request to a fixed identity
// while counting its invocations.
type stubAuthenticator struct {
	username string
	calls    int
}

func (a *stubAuthenticator) Init() (bool, error) {
	return true, nil
}

func (a *stubAuthenticator) AuthenticateRequest(w http.ResponseWriter, r *http.Request, state *dispatcher.State) bool {
	a.calls++
	state.AuthenticatedUsername = a.username

	return true
}
