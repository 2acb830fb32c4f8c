package dispatcher

import (
	"net/http"
	"regexp"
)

// BodyFormat :
// Describes how the body of a request should be framed before
// the handler of a route is invoked. Routes declare the format
// they expect; the dispatcher performs the accumulation.
type BodyFormat string

// Definition of the possible body formats for a route. An empty
// format is equivalent to `BodyString`.
const (
	// BodyStream hands the raw request stream directly to the
	// handler which reads it if it needs to.
	BodyStream BodyFormat = "stream"

	// BodyString accumulates all body chunks decoded as UTF-8
	// text before invoking the handler.
	BodyString BodyFormat = "string"

	// BodyBuffer accumulates all body chunks as raw bytes
	// before invoking the handler.
	BodyBuffer BodyFormat = "buffer"
)

// HandlerFunc :
// Defines the processing unit attached to a route. On top of
// the classical request and response pair the handler receives
// the per-request state assembled by the dispatcher, which
// carries the route captures, the query parameters, the wiki
// reference and the response sender.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, state *State)

// Route :
// Defines a binding from a HTTP verb and a path pattern to a
// handler. The path is a regular expression over the URL path
// whose capture groups become the positional parameters of the
// matched request. Routes are matched in registration order and
// the first match wins; there is no specificity ranking.
//
// The `Method` defines the HTTP verb associated to this route.
// A request whose method differs will not be directed towards
// this route even if the path matches.
//
// The `Path` defines the pattern to match against the (prefix
// stripped) URL path. Patterns are expected to anchor themselves
// (`^...$`); no implicit anchoring is performed.
//
// The `BodyFormat` declares how the request body should be
// framed before invoking the handler. An empty value defaults
// to `BodyString`.
//
// The `Handler` defines the actual processing to call in case
// this route is matched.
type Route struct {
	Method     string
	Path       *regexp.Regexp
	BodyFormat BodyFormat
	Handler    HandlerFunc
}
