package wiki

import (
	"encoding/json"
	"errors"
	"fmt"

	"wiki_server/pkg/db"
)

// DBStore :
// An implementation of the `Store` interface persisting the
// tiddlers in a postgres database through the common DB
// wrapper. Tiddlers live in a single `tiddlers` table where
// the fields are serialized as a `json` column; concurrent
// accesses are the database's business, so no further locking
// is needed here.
//
// The `dbase` references the connections pool to use to
// reach the database.
type DBStore struct {
	dbase *db.DB
}

// NewDBStore :
// Creates a store backed by the input database.
//
// The `dbase` defines the database to wrap. A panic is issued
// in case it is not valid, as no request could ever succeed.
//
// Returns the created store.
func NewDBStore(dbase *db.DB) *DBStore {
	if dbase == nil {
		panic(fmt.Errorf("cannot create tiddler store from empty database"))
	}

	return &DBStore{
		dbase: dbase,
	}
}

// GetTiddler :
// Implementation of the `Store` interface fetching a tiddler
// by its title.
func (s *DBStore) GetTiddler(title string) (Tiddler, error) {
	rows, err := s.dbase.DBQuery("select fields from tiddlers where title = $1", title)
	if err != nil {
		return Tiddler{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		return Tiddler{}, ErrUnknownTiddler
	}

	var raw []byte
	if err := rows.Scan(&raw); err != nil {
		return Tiddler{}, err
	}

	t := Tiddler{
		Title:  title,
		Fields: map[string]string{},
	}
	if err := json.Unmarshal(raw, &t.Fields); err != nil {
		return Tiddler{}, err
	}

	return t, nil
}

// GetTiddlerText :
// Implementation of the `Store` interface fetching the text of
// a tiddler with a fallback value.
func (s *DBStore) GetTiddlerText(title string, fallback string) string {
	t, err := s.GetTiddler(title)
	if err != nil {
		return fallback
	}

	return t.Text()
}

// SetTiddler :
// Implementation of the `Store` interface creating or replacing
// a tiddler. The creation is attempted first; a duplicate key
// means the tiddler already exists and is updated instead.
func (s *DBStore) SetTiddler(t Tiddler) error {
	raw, err := json.Marshal(t.Fields)
	if err != nil {
		return err
	}

	_, err = s.dbase.DBExecute("insert into tiddlers (title, fields) values ($1, $2)", t.Title, raw)

	var dbErr db.Error
	if errors.As(err, &dbErr) && dbErr.Duplicate() {
		_, err = s.dbase.DBExecute("update tiddlers set fields = $2 where title = $1", t.Title, raw)
	}

	return err
}

// DeleteTiddler :
// Implementation of the `Store` interface removing a tiddler.
func (s *DBStore) DeleteTiddler(title string) error {
	tag, err := s.dbase.DBExecute("delete from tiddlers where title = $1", title)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUnknownTiddler
	}

	return nil
}

// AllTitles :
// Implementation of the `Store` interface listing the stored
// titles in lexicographic order.
func (s *DBStore) AllTitles() ([]string, error) {
	rows, err := s.dbase.DBQuery("select title from tiddlers order by title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make([]string, 0)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}

		titles = append(titles, title)
	}

	return titles, nil
}
