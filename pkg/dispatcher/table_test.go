package dispatcher

import (
	"net/http"
	"net/url"
	"regexp"
	"testing"

	"wiki_server/pkg/logger"
)

func newTestState(rawURL string, prefix string) *State {
	parsed, _ := url.Parse(rawURL)

	return &State{
		URL:             parsed,
		QueryParameters: parsed.Query(),
		PathPrefix:      prefix,
	}
}

func noOpHandler(w http.ResponseWriter, r *http.Request, state *State) {}

func TestAddRouteRefusesInvalidRoutes(t *testing.T) {
	log := logger.NewStdLogger("", "")
	defer log.Release()

	table := NewTable(log)

	table.AddRoute(nil)
	table.AddRoute(&Route{Method: "GET", Handler: noOpHandler})
	table.AddRoute(&Route{Method: "GET", Path: regexp.MustCompile(`^/$`)})

	if len(table.routes) != 0 {
		t.Fatalf("Expected no registered route, got %d", len(table.routes))
	}
}

func TestFindMatchingRouteHonorsRegistrationOrder(t *testing.T) {
	log := logger.NewStdLogger("", "")
	defer log.Release()

	table := NewTable(log)
	first := &Route{Method: "GET", Path: regexp.MustCompile(`^/items/(.+)$`), Handler: noOpHandler}
	second := &Route{Method: "GET", Path: regexp.MustCompile(`^/items/special$`), Handler: noOpHandler}
	table.AddRoute(first)
	table.AddRoute(second)

	state := newTestState("/items/special", "")
	req, _ := http.NewRequest("GET", "/items/special", nil)

	if route := table.FindMatchingRoute(req, state); route != first {
		t.Fatalf("Expected the first registered route to win")
	}
	if len(state.Params) != 1 || state.Params[0] != "special" {
		t.Fatalf("Expected captured parameter \"special\", got %v", state.Params)
	}
}

func TestFindMatchingRouteChecksMethod(t *testing.T) {
	log := logger.NewStdLogger("", "")
	defer log.Release()

	table := NewTable(log)
	table.AddRoute(&Route{Method: "GET", Path: regexp.MustCompile(`^/status$`), Handler: noOpHandler})

	state := newTestState("/status", "")
	req, _ := http.NewRequest("POST", "/status", nil)

	if route := table.FindMatchingRoute(req, state); route != nil {
		t.Fatalf("Expected no route for a method mismatch")
	}
}

func TestFindMatchingRouteStripsPrefix(t *testing.T) {
	log := logger.NewStdLogger("", "")
	defer log.Release()

	table := NewTable(log)
	root := &Route{Method: "GET", Path: regexp.MustCompile(`^/$`), Handler: noOpHandler}
	status := &Route{Method: "GET", Path: regexp.MustCompile(`^/status$`), Handler: noOpHandler}
	table.AddRoute(root)
	table.AddRoute(status)

	// The prefix is stripped before matching.
	state := newTestState("/wiki/status", "/wiki")
	req, _ := http.NewRequest("GET", "/wiki/status", nil)
	if route := table.FindMatchingRoute(req, state); route != status {
		t.Fatalf("Expected the status route after prefix stripping")
	}

	// A path equal to the prefix resolves to the root route.
	state = newTestState("/wiki", "/wiki")
	req, _ = http.NewRequest("GET", "/wiki", nil)
	if route := table.FindMatchingRoute(req, state); route != root {
		t.Fatalf("Expected the root route for the bare prefix")
	}

	// A path outside of the prefix matches nothing, even when
	// a pattern would accept the raw path.
	state = newTestState("/status", "/wiki")
	req, _ = http.NewRequest("GET", "/status", nil)
	if route := table.FindMatchingRoute(req, state); route != nil {
		t.Fatalf("Expected no route for a path outside of the prefix")
	}
}

func TestFindMatchingRouteCapturesEmptyGroups(t *testing.T) {
	log := logger.NewStdLogger("", "")
	defer log.Release()

	table := NewTable(log)
	table.AddRoute(&Route{Method: "GET", Path: regexp.MustCompile(`^/files(/.*)?$`), Handler: noOpHandler})

	state := newTestState("/files", "")
	req, _ := http.NewRequest("GET", "/files", nil)

	if route := table.FindMatchingRoute(req, state); route == nil {
		t.Fatalf("Expected the files route to match")
	}
	if len(state.Params) != 1 || state.Params[0] != "" {
		t.Fatalf("Expected a single empty capture, got %v", state.Params)
	}
}
