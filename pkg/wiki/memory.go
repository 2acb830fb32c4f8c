package wiki

import (
	"sort"
	"sync"
)

// MemoryStore :
// An in-memory implementation of the `Store` interface. This
// is the default backend of the server and the one used by the
// tests. Access is protected by a read-write lock as requests
// are served concurrently.
//
// The `tiddlers` maps titles to their tiddler.
//
// The `lock` protects the map from concurrent accesses.
type MemoryStore struct {
	tiddlers map[string]Tiddler
	lock     sync.RWMutex
}

// NewMemoryStore :
// Creates an empty in-memory store.
//
// Returns the created store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tiddlers: make(map[string]Tiddler),
	}
}

// GetTiddler :
// Implementation of the `Store` interface fetching a tiddler
// by its title.
func (s *MemoryStore) GetTiddler(title string) (Tiddler, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	t, ok := s.tiddlers[title]
	if !ok {
		return Tiddler{}, ErrUnknownTiddler
	}

	return t, nil
}

// GetTiddlerText :
// Implementation of the `Store` interface fetching the text of
// a tiddler with a fallback value.
func (s *MemoryStore) GetTiddlerText(title string, fallback string) string {
	t, err := s.GetTiddler(title)
	if err != nil {
		return fallback
	}

	return t.Text()
}

// SetTiddler :
// Implementation of the `Store` interface creating or replacing
// a tiddler.
func (s *MemoryStore) SetTiddler(t Tiddler) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.tiddlers[t.Title] = t

	return nil
}

// DeleteTiddler :
// Implementation of the `Store` interface removing a tiddler.
func (s *MemoryStore) DeleteTiddler(title string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.tiddlers[title]; !ok {
		return ErrUnknownTiddler
	}

	delete(s.tiddlers, title)

	return nil
}

// AllTitles :
// Implementation of the `Store` interface listing the stored
// titles in lexicographic order.
func (s *MemoryStore) AllTitles() ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	titles := make([]string, 0, len(s.tiddlers))
	for title := range s.tiddlers {
		titles = append(titles, title)
	}

	sort.Strings(titles)

	return titles, nil
}
