package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"wiki_server/internal"
	"wiki_server/pkg/arguments"
	"wiki_server/pkg/db"
	"wiki_server/pkg/logger"
	"wiki_server/pkg/wiki"
)

// usage :
// Displays the usage of the server. Typically requires a
// configuration file to be able to fetch the configuration
// variables to use during the execution of the server.
func usage() {
	fmt.Println("Usage:")
	fmt.Println("-config=[file] for configuration file to use (local/master/staging/production)")
	fmt.Println("-port=[port] to override the configured listen port")
	fmt.Println("-host=[host] to override the configured listen host")
	fmt.Println("-prefix=[prefix] to override the configured path prefix")
	fmt.Println("-wiki=[folder] for the folder holding the wiki")
}

// createStore :
// Builds the tiddler store described by the configuration,
// either the in-memory backend or the postgres one.
//
// The `variables` define the server configuration.
//
// The `log` defines the logger to use.
//
// Returns the created store.
func createStore(variables arguments.Variables, log logger.Logger) wiki.Store {
	if variables.Get("store") == "postgres" {
		return wiki.NewDBStore(db.NewPool(log))
	}

	store := wiki.NewMemoryStore()

	// Seed the minimal content a fresh wiki needs to answer
	// something on its root route.
	store.SetTiddler(wiki.NewTiddler("$:/SiteTitle", "My TiddlyWiki"))
	store.SetTiddler(wiki.NewTiddler(variables.Get("root-tiddler"), "Welcome to the wiki server"))

	return store
}

// main :
// Start the server and perform http listening.
func main() {
	// Define and parse the command line flags.
	help := flag.Bool("h", false, "Print usage")
	config := flag.String("config", "local", "Configuration file to customize the server")
	port := flag.String("port", "", "Listen port, overrides the configuration")
	host := flag.String("host", "", "Listen host, overrides the configuration")
	prefix := flag.String("prefix", "", "Path prefix, overrides the configuration")
	wikiPath := flag.String("wiki", ".", "Folder holding the wiki")

	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	// Parse the configuration and create the logger.
	metadata := arguments.Parse(*config)
	log := logger.NewStdLogger(metadata.InstanceID, metadata.PublicIPv4)
	defer log.Release()

	// Build the server variables, applying the command line
	// overrides on top of the configuration file.
	variables := arguments.ParseVariables()
	variables.Merge(map[string]string{
		"port":        *port,
		"host":        *host,
		"path-prefix": *prefix,
	})

	boot := wiki.Boot{
		WikiPath:    *wikiPath,
		StartupTime: time.Now(),
	}

	// Create the server around its store.
	server, err := internal.NewServer(createStore(variables, log), boot, variables, log)
	if err != nil {
		log.Trace(logger.Fatal, "main", fmt.Sprintf("Could not create server (err: %v)", err))
		os.Exit(1)
	}

	// Register the routes and the authenticators. The order
	// of both registrations is meaningful: routes match first
	// come first served and only the first active
	// authenticator runs.
	for _, route := range internal.DefaultRoutes() {
		server.AddRoute(route)
	}

	server.RegisterAuthenticator(internal.NewHeaderAuthenticator(server))
	server.RegisterAuthenticator(internal.NewBasicAuthenticator(server))

	// Serve until the listener fails.
	if err := server.Listen("", "", ""); err != nil {
		log.Trace(logger.Fatal, "main", fmt.Sprintf("Server stopped listening (err: %v)", err))
		os.Exit(1)
	}
}
