package internal

import (
	"crypto/tls"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wiki_server/pkg/arguments"
	"wiki_server/pkg/dispatcher"
	"wiki_server/pkg/logger"
	"wiki_server/pkg/wiki"
)

// Module name to use in log messages produced by this package.
const module = "server"

// Server :
// Defines the wiki server gathering the route table, the
// authorization configuration and the authenticators around
// a content store. The server is assembled once by an outer
// composition step (routes and authenticators are injected
// through `AddRoute` and `RegisterAuthenticator`) and is
// read-only once `Listen` is called: per-request values all
// live in the request state, never in the server.
//
// The `variables` hold the flat configuration of the server.
// They are read once here for the flags that gate behavior
// on every request.
//
// The `routes` define the ordered route table used to
// resolve requests.
//
// The `authenticators` hold the registered authenticators.
// Only the first one runs for any given request.
//
// The `principals` map an authorization class (`readers` or
// `writers`) to the identities granted that class.
//
// The `store` references the wiki content.
//
// The `boot` carries the boot context of the process.
//
// The `servername` is derived from the site title and shows
// up in the authorization failure messages.
//
// The `csrfDisable`, `enableGzip` and `enableBrowserCache`
// flags are read once at construction from the variables.
//
// The `maxBodySize` caps the accumulated request body size
// for the `string` and `buffer` framing modes. A value of
// zero keeps the accumulation unbounded.
//
// The `readTimeout` and `writeTimeout` are applied to the
// underlying HTTP server when listening.
//
// The `tlsConfig` is populated when both a TLS key and a
// certificate were supplied; the credentials are loaded
// eagerly at construction and never reloaded.
//
// The `protocol` is the scheme reported in the startup log.
//
// The `log` allows to perform most of the logging on any
// action done by the server.
type Server struct {
	variables          arguments.Variables
	routes             *dispatcher.Table
	authenticators     []Authenticator
	principals         map[string][]string
	store              wiki.Store
	boot               wiki.Boot
	servername         string
	csrfDisable        bool
	enableGzip         bool
	enableBrowserCache bool
	maxBodySize        int64
	readTimeout        time.Duration
	writeTimeout       time.Duration
	tlsConfig          *tls.Config
	protocol           string
	log                logger.Logger
}

// NewServer :
// Create a new server serving the input store with the input
// configuration. The behavior flags, the authorization
// principals and the TLS credentials are all resolved here,
// once; routes and authenticators are registered afterwards
// by the composition step.
// In case the store is not valid a panic is issued to
// indicate the failure.
//
// The `store` defines the wiki content to serve.
//
// The `boot` defines the boot context of the process.
//
// The `variables` define the configuration of the server.
//
// The `log` is used to notify from various processes in the
// server and keep track of the activity.
//
// Returns the created server along with any error (typically
// when the TLS credentials cannot be loaded).
func NewServer(store wiki.Store, boot wiki.Boot, variables arguments.Variables, log logger.Logger) (*Server, error) {
	if store == nil {
		panic(fmt.Errorf("cannot create server from empty store"))
	}
	if variables == nil {
		variables = arguments.DefaultVariables()
	}

	s := Server{
		variables:      variables,
		routes:         dispatcher.NewTable(log),
		authenticators: make([]Authenticator, 0),
		store:          store,
		boot:           boot,
		servername:     transliterateToSafeASCII(store.GetTiddlerText("$:/SiteTitle", "TiddlyWiki5")),
		protocol:       "http",
		log:            log,
	}

	// Initialise CSRF, gzip and browser-caching from the
	// variables. These flags are not re-read per request.
	s.csrfDisable = s.Get("csrf-disable") == "yes"
	s.enableGzip = s.Get("gzip") == "yes"
	s.enableBrowserCache = s.Get("use-browser-cache") == "yes"

	// Initialise the authorization principals. When explicit
	// readers/writers are not configured, access defaults to
	// the configured user or to anonymous when no credentials
	// were provided.
	authorizedUserName := "(anon)"
	if len(s.Get("username")) > 0 && len(s.Get("password")) > 0 {
		authorizedUserName = s.Get("username")
	}
	s.principals = map[string][]string{
		authReaders: splitPrincipals(s.Get("readers"), authorizedUserName),
		authWriters: splitPrincipals(s.Get("writers"), authorizedUserName),
	}

	// Parse the request body cap and the socket timeouts.
	if size := s.Get("max-body-size"); len(size) > 0 {
		parsed, err := strconv.ParseInt(size, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid max-body-size \"%s\" (err: %v)", size, err)
		}
		s.maxBodySize = parsed
	}

	var err error
	if s.readTimeout, err = parseTimeout(s.Get("read-timeout")); err != nil {
		return nil, fmt.Errorf("invalid read-timeout \"%s\" (err: %v)", s.Get("read-timeout"), err)
	}
	if s.writeTimeout, err = parseTimeout(s.Get("write-timeout")); err != nil {
		return nil, fmt.Errorf("invalid write-timeout \"%s\" (err: %v)", s.Get("write-timeout"), err)
	}

	// Initialise the http vs https transport. The credentials
	// are loaded now: this is the one filesystem dependency of
	// the server and it is not revisited at request time.
	tlsKey := s.Get("tls-key")
	tlsCert := s.Get("tls-cert")
	if len(tlsKey) > 0 && len(tlsCert) > 0 {
		cert, err := tls.LoadX509KeyPair(
			resolveWikiPath(boot.WikiPath, tlsCert),
			resolveWikiPath(boot.WikiPath, tlsKey),
		)
		if err != nil {
			return nil, fmt.Errorf("could not load TLS credentials (err: %v)", err)
		}

		s.tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
		}
		s.protocol = "https"
	}

	return &s, nil
}

// Get :
// Fetches the value of the input configuration variable.
//
// The `name` defines the variable to fetch.
//
// Returns the value, or an empty string for unset variables.
func (s *Server) Get(name string) string {
	return s.variables.Get(name)
}

// AddRoute :
// Appends the input route to the route table. Routes are
// matched in registration order so the order of the calls
// matters.
//
// The `route` defines the binding to register.
func (s *Server) AddRoute(route *dispatcher.Route) {
	s.routes.AddRoute(route)
}

// splitPrincipals :
// Parses a comma separated list of principals, trimming the
// surrounding spaces of each entry. An empty list falls back
// to the single input default principal.
//
// The `list` defines the configured principals.
//
// The `fallback` defines the principal to assume when the
// list is empty.
//
// Returns the parsed principals.
func splitPrincipals(list string, fallback string) []string {
	if len(list) == 0 {
		list = fallback
	}

	parts := strings.Split(list, ",")
	principals := make([]string, 0, len(parts))
	for _, part := range parts {
		principals = append(principals, strings.TrimSpace(part))
	}

	return principals
}

// parseTimeout :
// Parses a timeout variable expressed with the standard
// duration syntax. Empty values mean no timeout.
//
// The `value` defines the variable to parse.
//
// Returns the parsed duration along with any error.
func parseTimeout(value string) (time.Duration, error) {
	if len(value) == 0 {
		return 0, nil
	}

	return time.ParseDuration(value)
}

// resolveWikiPath :
// Resolves a configured path relative to the wiki folder. An
// absolute path wins over the wiki folder.
//
// The `wikiPath` defines the folder holding the wiki.
//
// The `path` defines the configured path to resolve.
//
// Returns the resolved path.
func resolveWikiPath(wikiPath string, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(wikiPath, path)
}

// transliterateToSafeASCII :
// Reduces the input string to its printable ASCII characters
// so that it can safely appear in HTTP level messages.
//
// The `str` defines the string to reduce.
//
// Returns the reduced string.
func transliterateToSafeASCII(str string) string {
	out := make([]rune, 0, len(str))
	for _, r := range str {
		if r >= 32 && r < 127 {
			out = append(out, r)
		}
	}

	return string(out)
}
