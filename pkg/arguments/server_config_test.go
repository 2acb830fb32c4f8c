package arguments

import "testing"

func TestDefaultVariables(t *testing.T) {
	variables := DefaultVariables()

	checks := map[string]string{
		"port":              "8080",
		"host":              "127.0.0.1",
		"root-tiddler":      "$:/core/save/all",
		"root-serve-type":   "text/html",
		"debug-level":       "none",
		"gzip":              "no",
		"use-browser-cache": "no",
		"store":             "memory",
	}

	for key, expected := range checks {
		if value := variables.Get(key); value != expected {
			t.Errorf("Expected %q for variable %q, got %q", expected, key, value)
		}
	}

	// Unset variables read as empty strings.
	if value := variables.Get("username"); value != "" {
		t.Errorf("Expected empty username, got %q", value)
	}
}

func TestMergeSkipsEmptyValues(t *testing.T) {
	variables := DefaultVariables()

	variables.Merge(map[string]string{
		"port": "9090",
		"host": "",
	})

	if value := variables.Get("port"); value != "9090" {
		t.Errorf("Expected overriden port \"9090\", got %q", value)
	}
	if value := variables.Get("host"); value != "127.0.0.1" {
		t.Errorf("Expected empty override to be ignored, got %q", value)
	}
}
