package internal

import (
	"regexp"

	"wiki_server/pkg/dispatcher"
)

// DefaultRoutes :
// Produces the ordered list of routes served by a standard
// wiki server. The composition step registers them on the
// server; nothing here is discovered at runtime. The order
// matters as routes are matched first-come first-served.
//
// Returns the assembled routes.
func DefaultRoutes() []*dispatcher.Route {
	return []*dispatcher.Route{
		{
			Method:  "GET",
			Path:    regexp.MustCompile(`^/$`),
			Handler: serveRoot,
		},
		{
			Method:  "GET",
			Path:    regexp.MustCompile(`^/status$`),
			Handler: serveStatus,
		},
		{
			Method:  "GET",
			Path:    regexp.MustCompile(`^/recipes/default/tiddlers\.json$`),
			Handler: listTiddlers,
		},
		{
			Method:  "GET",
			Path:    regexp.MustCompile(`^/recipes/default/tiddlers/(.+)$`),
			Handler: serveTiddler,
		},
		{
			Method:     "PUT",
			Path:       regexp.MustCompile(`^/recipes/default/tiddlers/(.+)$`),
			BodyFormat: dispatcher.BodyString,
			Handler:    saveTiddler,
		},
		{
			Method:  "DELETE",
			Path:    regexp.MustCompile(`^/bags/default/tiddlers/(.+)$`),
			Handler: removeTiddler,
		},
	}
}
