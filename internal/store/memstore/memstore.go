// Package memstore is an in-process implementation of the store gateway
// contract. It backs unit tests and local development: live queries fan out
// full result-set snapshots on every commit, and transactions run under
// optimistic concurrency with automatic retry, matching the behavior the
// services rely on from the managed document store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"Vented/internal/store"
)

// txAttempts bounds the optimistic retry loop. Conflicts under realistic
// contention resolve in one or two retries; hitting the bound means the
// caller should back off.
const txAttempts = 25

type record struct {
	doc     store.Document
	version uint64
}

// Memstore implements store.Store entirely in memory.
type Memstore struct {
	mu       sync.Mutex
	cols     map[string]map[string]*record
	watchers map[int]*watcher
	nextID   int
	lastTime time.Time
	closed   bool
}

// New creates an empty in-memory store.
func New() *Memstore {
	return &Memstore{
		cols:     make(map[string]map[string]*record),
		watchers: make(map[int]*watcher),
	}
}

// now returns a server timestamp, strictly increasing per store instance so
// that creation-time ordering is total. Caller must hold mu.
func (s *Memstore) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.lastTime) {
		t = s.lastTime.Add(time.Microsecond)
	}
	s.lastTime = t
	return t
}

func (s *Memstore) Get(ctx context.Context, path, id string) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrUnavailable
	}
	rec, ok := s.cols[path][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	doc := cloneDoc(rec.doc)
	return &doc, nil
}

func (s *Memstore) List(ctx context.Context, q store.Query) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrUnavailable
	}
	return s.runQuery(q), nil
}

// runQuery evaluates q against current state. Caller must hold mu.
func (s *Memstore) runQuery(q store.Query) []store.Document {
	docs := make([]store.Document, 0)
	for _, rec := range s.cols[q.Path] {
		if matches(rec.doc, q.Where) {
			docs = append(docs, cloneDoc(rec.doc))
		}
	}
	sortDocs(docs, q)
	return docs
}

func matches(doc store.Document, where []store.Condition) bool {
	for _, c := range where {
		if !looseEqual(doc.Data[c.Field], c.Value) {
			return false
		}
	}
	return true
}

func looseEqual(a, b any) bool {
	if sb, ok := b.(string); ok {
		return store.AsString(a) == sb
	}
	return a == b
}

func sortDocs(docs []store.Document, q store.Query) {
	less := func(i, j int) bool {
		if q.OrderBy == "" {
			if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
				return docs[i].CreatedAt.Before(docs[j].CreatedAt)
			}
			return docs[i].ID < docs[j].ID
		}
		a, b := docs[i].Data[q.OrderBy], docs[j].Data[q.OrderBy]
		if at, bt := store.AsTime(a), store.AsTime(b); !at.IsZero() || !bt.IsZero() {
			if !at.Equal(bt) {
				return at.Before(bt)
			}
			return docs[i].ID < docs[j].ID
		}
		if as, bs := store.AsString(a), store.AsString(b); as != bs {
			return as < bs
		}
		return store.AsInt(a) < store.AsInt(b)
	}
	if q.Desc {
		sort.SliceStable(docs, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(docs, less)
}

func (s *Memstore) Create(ctx context.Context, path string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, path, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Memstore) Set(ctx context.Context, path, id string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return store.ErrUnavailable
	}
	s.put(path, id, cloneData(data))
	s.mu.Unlock()
	s.notify(path)
	return nil
}

func (s *Memstore) SetMerge(ctx context.Context, path, id string, ops ...store.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return store.ErrUnavailable
	}
	data := make(map[string]any)
	if rec, ok := s.cols[path][id]; ok {
		data = cloneData(rec.doc.Data)
	}
	store.ApplyOps(data, ops, s.now())
	s.put(path, id, data)
	s.mu.Unlock()
	s.notify(path)
	return nil
}

func (s *Memstore) Update(ctx context.Context, path, id string, ops ...store.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return store.ErrUnavailable
	}
	rec, ok := s.cols[path][id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	data := cloneData(rec.doc.Data)
	store.ApplyOps(data, ops, s.now())
	s.put(path, id, data)
	s.mu.Unlock()
	s.notify(path)
	return nil
}

func (s *Memstore) Delete(ctx context.Context, path, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return store.ErrUnavailable
	}
	if col, ok := s.cols[path]; ok {
		delete(col, id)
	}
	s.mu.Unlock()
	s.notify(path)
	return nil
}

// put inserts or replaces a record, preserving CreatedAt on replacement and
// bumping the record version. Caller must hold mu.
func (s *Memstore) put(path, id string, data map[string]any) {
	col := s.cols[path]
	if col == nil {
		col = make(map[string]*record)
		s.cols[path] = col
	}
	now := s.now()
	if rec, ok := col[id]; ok {
		rec.doc.Data = data
		rec.doc.UpdatedAt = now
		rec.version++
		return
	}
	col[id] = &record{
		doc: store.Document{
			Path:      path,
			ID:        id,
			Data:      data,
			CreatedAt: now,
			UpdatedAt: now,
		},
		version: 1,
	}
}

// ActiveWatchers reports how many live query registrations exist. Useful
// for asserting that subscription teardown released its listener.
func (s *Memstore) ActiveWatchers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

// Close tears the store down. Active subscriptions receive a terminal
// unavailable snapshot.
func (s *Memstore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	watchers := make([]*watcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.mu.Unlock()
	for _, w := range watchers {
		w.fail(store.ErrUnavailable)
	}
	return nil
}

func cloneDoc(doc store.Document) store.Document {
	doc.Data = cloneData(doc.Data)
	return doc
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneData(val)
	case map[string]int64:
		m := make(map[string]int64, len(val))
		for k, n := range val {
			m[k] = n
		}
		return m
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
