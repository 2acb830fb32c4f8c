package arguments

import "github.com/spf13/viper"

// Variables :
// A flat string-keyed configuration describing the behavior of
// the wiki server. Keys that are absent fall back to documented
// defaults so that a server can be created with an empty map.
// The map is built once at startup and never mutated afterwards.
type Variables map[string]string

// configurableKeys :
// The list of variables that can be overriden from the
// configuration file under the `Server` section. Keys not in
// this list are ignored when parsing the configuration.
var configurableKeys = []string{
	"port",
	"host",
	"root-tiddler",
	"root-render-type",
	"root-serve-type",
	"tiddler-render-type",
	"tiddler-render-template",
	"system-tiddler-render-type",
	"system-tiddler-render-template",
	"debug-level",
	"gzip",
	"use-browser-cache",
	"csrf-disable",
	"username",
	"password",
	"readers",
	"writers",
	"path-prefix",
	"tls-key",
	"tls-cert",
	"authenticated-user-header",
	"max-body-size",
	"read-timeout",
	"write-timeout",
	"rate-limit",
	"store",
}

// DefaultVariables :
// Produces the set of variables assumed by the server when no
// override is provided. Variables absent from this map default
// to the empty string.
//
// Returns the default configuration.
func DefaultVariables() Variables {
	return Variables{
		"port":                           "8080",
		"host":                           "127.0.0.1",
		"root-tiddler":                   "$:/core/save/all",
		"root-render-type":               "text/plain",
		"root-serve-type":                "text/html",
		"tiddler-render-type":            "text/html",
		"tiddler-render-template":        "$:/core/templates/server/static.tiddler.html",
		"system-tiddler-render-type":     "text/plain",
		"system-tiddler-render-template": "$:/core/templates/wikified-tiddler",
		"debug-level":                    "none",
		"gzip":                           "no",
		"use-browser-cache":              "no",
		"max-body-size":                  "0",
		"read-timeout":                   "0s",
		"write-timeout":                  "0s",
		"rate-limit":                     "0",
		"store":                          "memory",
	}
}

// ParseVariables :
// Builds the server variables by overlaying the values found in
// the configuration file on top of the defaults. The values are
// fetched from the `Server` section of the configuration, so a
// `Server.port` key overrides the `port` variable.
//
// Returns the consolidated variables.
func ParseVariables() Variables {
	variables := DefaultVariables()

	for _, key := range configurableKeys {
		configKey := "Server." + key
		if viper.IsSet(configKey) {
			variables[key] = viper.GetString(configKey)
		}
	}

	return variables
}

// Get :
// Fetches the value of the input variable. Missing keys yield
// an empty string which callers treat as an unset variable.
//
// The `name` defines the variable to fetch.
//
// Returns the value associated to the variable.
func (v Variables) Get(name string) string {
	return v[name]
}

// Merge :
// Overlays the non-empty values of the input map on top of this
// set of variables. This is used to apply explicit construction
// options over the values parsed from the configuration.
//
// The `overrides` define the values to apply.
func (v Variables) Merge(overrides map[string]string) {
	for key, value := range overrides {
		if len(value) > 0 {
			v[key] = value
		}
	}
}
