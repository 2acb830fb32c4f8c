package dispatcher

import (
	"net/http"
	"strings"

	"wiki_server/pkg/logger"
)

// Module name to use in log messages produced by this package.
const module = "dispatcher"

// Table :
// Defines the ordered route table used to resolve requests to
// handlers. Routes are kept in registration order and matching
// stops at the first route whose pattern and method both match.
// The table is populated during server construction and is
// read-only once the server starts listening, so no locking is
// needed at request time.
//
// The `routes` register all the routes defined for this table
// so far.
//
// The `log` allows to notify the user of registration issues.
type Table struct {
	routes []*Route
	log    logger.Logger
}

// NewTable :
// Creates an empty route table.
//
// The `log` will be used to report invalid registrations.
//
// Returns the created table.
func NewTable(log logger.Logger) *Table {
	return &Table{
		routes: make([]*Route, 0),
		log:    log,
	}
}

// AddRoute :
// Appends the input route to the table. No deduplication is
// performed: a route whose pattern shadows a later one simply
// wins by registration order. Routes without a pattern or a
// handler are refused as they could never be served.
//
// The `route` defines the binding to register.
func (t *Table) AddRoute(route *Route) {
	if route == nil || route.Path == nil || route.Handler == nil {
		t.log.Trace(logger.Error, module, "Ignoring route with no pattern or handler")
		return
	}

	t.routes = append(t.routes, route)
}

// FindMatchingRoute :
// Resolves the route matching the input request. The configured
// path prefix is stripped from the URL path first; if the prefix
// is set but the path does not start with it, no route can match.
// The (prefix stripped) path is then tried against each route
// pattern in registration order and the first route whose
// pattern matches and whose method equals the request method is
// selected. Its capture groups (not including group 0) populate
// `state.Params` in order.
//
// The `req` defines the input request.
//
// The `state` receives the positional parameters of the match.
//
// Returns the matched route, or `nil` if no route qualifies.
func (t *Table) FindMatchingRoute(req *http.Request, state *State) *Route {
	pathname := state.URL.Path

	if len(state.PathPrefix) > 0 {
		if !strings.HasPrefix(pathname, state.PathPrefix) {
			// The prefix does not match, no route can be served.
			return nil
		}

		pathname = strings.TrimPrefix(pathname, state.PathPrefix)
		if len(pathname) == 0 {
			pathname = "/"
		}
	}

	for _, route := range t.routes {
		match := route.Path.FindStringSubmatch(pathname)

		if match != nil && req.Method == route.Method {
			state.Params = make([]string, 0, len(match)-1)
			for p := 1; p < len(match); p++ {
				state.Params = append(state.Params, match[p])
			}

			return route
		}
	}

	return nil
}
