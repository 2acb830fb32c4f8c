package internal

import (
	"fmt"
	"io"
	"net/http"

	"wiki_server/pkg/dispatcher"
	"wiki_server/pkg/logger"
)

// RequestHandler :
// The entry point of the dispatch pipeline, invoked for every
// request accepted by the listener. The pipeline runs its
// stages strictly in sequence: the URL is parsed, the CSRF
// policy is enforced, the first authenticator resolves the
// identity, the authorization policy gates the request, the
// route table resolves a handler, the body is framed per the
// route's declared format and the handler finally executes.
// Any gate can terminate the request with the matching status
// code, in which case no further stage runs.
// Note that no body bytes are read before authentication and
// authorization succeed, so rejected requests never buffer
// attacker-controlled payloads.
//
// The `w` represents the response writer of the request.
//
// The `r` defines the input request.
func (s *Server) RequestHandler(w http.ResponseWriter, r *http.Request) {
	// Compose the per-request state. It is owned by this
	// pipeline for the lifetime of the request and never
	// shared with another one.
	state := &dispatcher.State{
		URL:             r.URL,
		QueryParameters: r.URL.Query(),
		PathPrefix:      s.Get("path-prefix"),
		Wiki:            s.store,
		Boot:            s.boot,
		Variables:       s.variables,
	}
	state.SendResponse = func(statusCode int, headers map[string]string, data []byte, encoding string) {
		s.sendResponse(w, r, statusCode, headers, data, encoding)
	}

	// Get the authorization class required by this method.
	kind := authorizationType(r.Method)

	// Check for the CSRF header if this is a write. This is
	// the cheapest gate so it runs before authentication.
	if !s.csrfDisable && kind == authWriters && r.Header.Get("X-Requested-With") != "TiddlyWiki" {
		http.Error(w, fmt.Sprintf("'X-Requested-With' header required to login to '%s'", s.servername), http.StatusForbidden)
		return
	}

	// Check whether anonymous access is granted.
	state.AllowAnon = s.isAuthorized(kind, "")

	// Authenticate with the first active authenticator. A
	// `false` return means the authenticator already sent a
	// response, so we must bail without any further write.
	if len(s.authenticators) > 0 {
		if !s.authenticators[0].AuthenticateRequest(w, r, state) {
			return
		}
	}

	// Authorize with the authenticated username.
	if !s.isAuthorized(kind, state.AuthenticatedUsername) {
		http.Error(w, fmt.Sprintf("'%s' is not authorized to access '%s'", state.AuthenticatedUsername, s.servername), http.StatusUnauthorized)
		return
	}

	// Expose whether this identity could also write: reads are
	// served either way but clients use this to disable their
	// editing surface.
	state.ReadOnly = !s.isAuthorized(authWriters, state.AuthenticatedUsername)

	// Find the route that matches this path.
	route := s.routes.FindMatchingRoute(r, state)

	// Optionally output debug info.
	if s.Get("debug-level") != "none" {
		s.log.Trace(logger.Debug, module, fmt.Sprintf("Request path: %q", r.URL.String()))
		s.log.Trace(logger.Debug, module, fmt.Sprintf("Request headers: %v", r.Header))
		s.log.Trace(logger.Debug, module, fmt.Sprintf("authenticatedUsername: %q", state.AuthenticatedUsername))
	}

	// Return a 404 if we didn't find a route.
	if route == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	// Receive the request body if necessary and hand off to
	// the route handler.
	switch {
	case route.BodyFormat == dispatcher.BodyStream || r.Method == "GET" || r.Method == "HEAD":
		// Let the route handle the request stream itself.
		route.Handler(w, r, state)

	case route.BodyFormat == dispatcher.BodyString || route.BodyFormat == "" || route.BodyFormat == dispatcher.BodyBuffer:
		// Accumulate the whole body before invoking the
		// handler. The `string` and `buffer` formats only
		// differ in how the handler interprets the bytes.
		data, ok := s.receiveBody(w, r)
		if !ok {
			return
		}

		state.Data = data
		route.Handler(w, r, state)

	default:
		http.Error(w, fmt.Sprintf("Invalid bodyFormat %s in route %s %s", route.BodyFormat, route.Method, route.Path.String()), http.StatusBadRequest)
	}
}

// receiveBody :
// Accumulates the whole request body, honoring the configured
// size cap. When the cap is exceeded the request is terminated
// with a 413 status; when the client disconnects mid-read the
// accumulation never completes and the handler is not invoked.
//
// The `w` represents the response writer of the request.
//
// The `r` defines the input request.
//
// Returns the accumulated body and whether the handler should
// be invoked.
func (s *Server) receiveBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := r.Body
	if s.maxBodySize > 0 {
		body = http.MaxBytesReader(w, body, s.maxBodySize)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		if _, tooLarge := err.(*http.MaxBytesError); tooLarge {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		} else {
			s.log.Trace(logger.Warning, module, fmt.Sprintf("Could not receive request body (err: %v)", err))
		}

		return nil, false
	}

	return data, true
}
