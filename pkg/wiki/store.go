package wiki

import (
	"fmt"
	"time"
)

// ErrUnknownTiddler :
// Indicates that the requested tiddler does not exist in the
// store.
var ErrUnknownTiddler = fmt.Errorf("unknown tiddler in store")

// Store :
// Describes the narrow interface through which the server
// accesses the wiki content. Filtering and rendering are the
// store's business; the dispatch pipeline only fetches and
// saves tiddlers by title.
// Implementations are expected to be safe for concurrent use
// as requests are served concurrently.
type Store interface {
	// GetTiddler fetches the tiddler with the input title.
	// Returns `ErrUnknownTiddler` if it does not exist.
	GetTiddler(title string) (Tiddler, error)

	// GetTiddlerText fetches the text of the tiddler with the
	// input title, falling back to the provided default if the
	// tiddler does not exist.
	GetTiddlerText(title string, fallback string) string

	// SetTiddler creates or replaces the input tiddler.
	SetTiddler(t Tiddler) error

	// DeleteTiddler removes the tiddler with the input title.
	// Returns `ErrUnknownTiddler` if it does not exist.
	DeleteTiddler(title string) error

	// AllTitles lists the titles of the stored tiddlers in a
	// stable order.
	AllTitles() ([]string, error)
}

// Boot :
// Describes the boot context threaded explicitly through the
// server instead of living in an ambient global. It carries
// the filesystem location of the wiki and the startup time of
// the process.
//
// The `WikiPath` defines the folder holding the wiki. TLS
// credential paths are resolved relative to this folder.
//
// The `StartupTime` records when the process was started and
// feeds the uptime reported by the status route.
type Boot struct {
	WikiPath    string
	StartupTime time.Time
}
