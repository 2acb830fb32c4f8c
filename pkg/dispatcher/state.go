package dispatcher

import (
	"net/url"

	"wiki_server/pkg/arguments"
	"wiki_server/pkg/wiki"
)

// SendResponseFunc :
// The response sender exposed to handlers, bound to the current
// request and response pair. It finalizes the bytes written to
// the socket, applying conditional caching and compression when
// the server is configured to do so.
//
// The `statusCode` defines the HTTP status to send.
//
// The `headers` define the response headers. They may be
// augmented with `Etag`, `Cache-Control` and `Content-Encoding`
// headers by the sender.
//
// The `data` defines the body to send.
//
// The `encoding` names the encoding of the data, if relevant.
// It participates in the cache fingerprint.
type SendResponseFunc func(statusCode int, headers map[string]string, data []byte, encoding string)

// State :
// Gathers the per-request values assembled by the dispatcher
// before a handler is invoked. A fresh state is created for
// each request, owned solely by the dispatcher for the
// request's lifetime, and never shared across requests.
//
// The `URL` holds the parsed request URL.
//
// The `QueryParameters` hold the parsed query string.
//
// The `PathPrefix` is the configured prefix stripped from the
// path before route matching.
//
// The `Params` hold the positional captures of the matched
// route pattern, in order. Unmatched optional groups yield
// empty strings.
//
// The `AuthenticatedUsername` holds the identity derived by
// the authenticator, or the empty string for anonymous access.
//
// The `AllowAnon` indicates whether anonymous access would be
// granted for the authorization class of this request. Some
// authenticators use it to decide whether to challenge.
//
// The `ReadOnly` indicates whether the derived identity lacks
// write authorization. The status route reports it so that
// clients can disable their editing surface.
//
// The `Wiki` references the content store.
//
// The `Boot` references the boot context of the hosting
// process.
//
// The `Variables` expose the server configuration to the
// handler.
//
// The `SendResponse` is the response sender bound to this
// request.
//
// The `Data` holds the accumulated request body when the route
// declared a `string` or `buffer` body format. Handlers of
// `string` routes interpret it as UTF-8 text.
type State struct {
	URL                   *url.URL
	QueryParameters       url.Values
	PathPrefix            string
	Params                []string
	AuthenticatedUsername string
	AllowAnon             bool
	ReadOnly              bool
	Wiki                  wiki.Store
	Boot                  wiki.Boot
	Variables             arguments.Variables
	SendResponse          SendResponseFunc
	Data                  []byte
}
