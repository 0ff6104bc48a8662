// Package prefs persists per-device preferences in a local pebble database:
// the selected theme, the saved gratitude notes, and the anonymous session
// id minted on first use.
package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	pebble "github.com/cockroachdb/pebble"
	"github.com/google/uuid"
)

// DefaultTheme is returned when no theme has been chosen yet.
const DefaultTheme = "Default"

var (
	keyTheme        = []byte("theme")
	keySessionID    = []byte("session_id")
	prefixGratitude = []byte("gratitude:")
)

// Prefs is a handle on one device's preference database. Safe for
// concurrent use; pebble serializes writes internally.
type Prefs struct {
	db *pebble.DB
}

// Open opens (creating if needed) the preference database at path.
func Open(path string) (*Prefs, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("failed to create prefs dir: %w", err)
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open prefs db: %w", err)
	}
	return &Prefs{db: db}, nil
}

func (p *Prefs) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Theme returns the stored theme name, or DefaultTheme when none is set.
func (p *Prefs) Theme() (string, error) {
	v, err := p.get(keyTheme)
	if err != nil {
		return "", err
	}
	if v == nil {
		return DefaultTheme, nil
	}
	return string(v), nil
}

func (p *Prefs) SetTheme(name string) error {
	return p.db.Set(keyTheme, []byte(name), pebble.Sync)
}

// SessionID returns this device's anonymous identity, minting and storing
// a fresh uuid on first call.
func (p *Prefs) SessionID() (string, error) {
	v, err := p.get(keySessionID)
	if err != nil {
		return "", err
	}
	if v != nil {
		return string(v), nil
	}
	id := uuid.NewString()
	if err := p.db.Set(keySessionID, []byte(id), pebble.Sync); err != nil {
		return "", err
	}
	return id, nil
}

// AddGratitudeNote stores note in the gratitude set. Adding an existing
// note is a no-op.
func (p *Prefs) AddGratitudeNote(note string) error {
	return p.db.Set(gratitudeKey(note), nil, pebble.Sync)
}

// RemoveGratitudeNote deletes note from the set. Removing an absent note
// is a no-op.
func (p *Prefs) RemoveGratitudeNote(note string) error {
	return p.db.Delete(gratitudeKey(note), pebble.Sync)
}

// GratitudeNotes returns every stored note, sorted.
func (p *Prefs) GratitudeNotes() ([]string, error) {
	it, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: prefixGratitude,
		UpperBound: append(append([]byte{}, prefixGratitude...), 0xff),
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	notes := make([]string, 0)
	for ok := it.First(); ok; ok = it.Next() {
		k := it.Key()
		if !bytes.HasPrefix(k, prefixGratitude) {
			continue
		}
		notes = append(notes, string(k[len(prefixGratitude):]))
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	sort.Strings(notes)
	return notes, nil
}

// get reads a single key, mapping pebble's not-found to a nil value.
func (p *Prefs) get(key []byte) ([]byte, error) {
	v, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func gratitudeKey(note string) []byte {
	return append(append([]byte{}, prefixGratitude...), note...)
}
