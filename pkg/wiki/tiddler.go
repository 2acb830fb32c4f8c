package wiki

import "encoding/json"

// Tiddler :
// The atomic content unit of the wiki. A tiddler is identified
// by its title and carries a flat map of string fields, among
// which the `text` field holds the actual content.
//
// The `Title` uniquely identifies the tiddler in a store.
//
// The `Fields` holds the remaining fields of the tiddler. The
// title is not duplicated in this map.
type Tiddler struct {
	Title  string
	Fields map[string]string
}

// NewTiddler :
// Builds a tiddler with the input title and text content.
//
// The `title` identifies the tiddler.
//
// The `text` defines the content of the `text` field.
//
// Returns the created tiddler.
func NewTiddler(title string, text string) Tiddler {
	return Tiddler{
		Title: title,
		Fields: map[string]string{
			"text": text,
		},
	}
}

// Text :
// Convenience accessor for the `text` field of the tiddler.
func (t Tiddler) Text() string {
	return t.Fields["text"]
}

// MarshalJSON :
// Implementation of the marshaller interface flattening the
// tiddler into a single object where the title appears next
// to the other fields, matching the wire format expected by
// wiki clients.
func (t Tiddler) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(t.Fields)+1)
	for key, value := range t.Fields {
		flat[key] = value
	}
	flat["title"] = t.Title

	return json.Marshal(flat)
}

// UnmarshalJSON :
// Second facet of the marshaller interface which rebuilds a
// tiddler from its flattened wire representation.
//
// The `b` defines the bytes to unmarshal.
//
// Returns any error.
func (t *Tiddler) UnmarshalJSON(b []byte) error {
	flat := map[string]string{}
	if err := json.Unmarshal(b, &flat); err != nil {
		return err
	}

	t.Title = flat["title"]
	delete(flat, "title")
	t.Fields = flat

	return nil
}
