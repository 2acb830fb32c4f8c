package internal

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	ghandlers "github.com/gorilla/handlers"

	"wiki_server/pkg/handlers"
	"wiki_server/pkg/logger"
)

// Listen :
// Binds the listening socket and serves requests until the
// listener fails. The transport is plain TCP unless TLS
// credentials were supplied at construction. The resolved
// protocol, host and port are logged once the socket is
// actually listening, so a port of 0 is reported as the
// assigned port rather than 0.
//
// The `port` defines the port to listen on. An empty value
// falls back to the `port` variable; a non-numeric value is
// treated as the name of an environment variable to look up,
// falling back to 8080 when unset.
//
// The `host` defines the address to bind. An empty value
// falls back to the `host` variable.
//
// The `prefix` defines the path prefix to report in the
// startup log. An empty value falls back to the
// `path-prefix` variable.
//
// Returns an error in case something went wrong while
// listening.
func (s *Server) Listen(port string, host string, prefix string) error {
	// Handle defaults for port, host and prefix.
	if len(port) == 0 {
		port = s.Get("port")
	}
	if len(host) == 0 {
		host = s.Get("host")
	}
	if len(prefix) == 0 {
		prefix = s.Get("path-prefix")
	}

	// Check for the port being a non-numeric string and look
	// it up as an environment variable.
	if value, err := strconv.Atoi(port); err != nil || strconv.Itoa(value) != port {
		port = os.Getenv(port)
		if len(port) == 0 {
			port = "8080"
		}
	}

	// Assemble the handler chain around the dispatch pipeline.
	// The safety net confines handler panics to a 500 response
	// instead of taking the listener down.
	handler := handlers.WithSafetyNet(s.log, s.RequestHandler)

	if limit, err := strconv.Atoi(s.Get("rate-limit")); err == nil && limit > 0 {
		handler = handlers.WithRateLimit(s.log, limit, handler)
	}

	var chain http.Handler = handler
	if s.Get("debug-level") != "none" {
		chain = ghandlers.CombinedLoggingHandler(os.Stdout, chain)
	}

	// Bind the socket, wrapping it with TLS when credentials
	// were supplied at construction.
	listener, err := net.Listen("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return err
	}

	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}

	// Display the bound address after we've started listening:
	// the port might have been specified as zero and the host
	// left empty, in which case we only now know the assigned
	// values.
	boundHost, boundPort := resolvedAddress(listener, host, port)
	s.log.Trace(logger.Info, module, fmt.Sprintf("Serving on %s://%s:%s%s", s.protocol, boundHost, boundPort, prefix))
	s.log.Trace(logger.Info, module, "(press ctrl-C to exit)")

	server := http.Server{
		Handler:      chain,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	return server.Serve(listener)
}

// resolvedAddress :
// Extracts the host and port actually bound by the input
// listener, falling back to the requested values when the
// listener does not expose a TCP address.
//
// The `listener` defines the bound listener.
//
// The `host` and `port` define the requested values.
//
// Returns the bound host and port.
func resolvedAddress(listener net.Listener, host string, port string) (string, string) {
	addr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		return host, port
	}

	return addr.IP.String(), strconv.Itoa(addr.Port)
}
