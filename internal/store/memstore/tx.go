package memstore

import (
	"context"

	"Vented/internal/store"
)

// memTx buffers transactional reads and writes. Reads record the version
// they observed (0 for absent documents); commit re-validates every observed
// version under the store lock and applies the write set only if none moved.
type memTx struct {
	s      *Memstore
	reads  map[[2]string]uint64
	writes []txWrite
}

type txWrite struct {
	data   map[string]any
	ops    []store.Op
	path   string
	id     string
	delete bool
	merge  bool
}

func (t *memTx) key(path, id string) [2]string {
	return [2]string{path, id}
}

func (t *memTx) Get(path, id string) (*store.Document, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.closed {
		return nil, store.ErrUnavailable
	}
	rec, ok := t.s.cols[path][id]
	if !ok {
		t.reads[t.key(path, id)] = 0
		return nil, store.ErrNotFound
	}
	t.reads[t.key(path, id)] = rec.version
	doc := cloneDoc(rec.doc)
	return &doc, nil
}

func (t *memTx) Set(path, id string, data map[string]any) {
	t.writes = append(t.writes, txWrite{path: path, id: id, data: cloneData(data)})
}

func (t *memTx) Update(path, id string, ops ...store.Op) {
	t.writes = append(t.writes, txWrite{path: path, id: id, ops: ops})
}

func (t *memTx) Delete(path, id string) {
	t.writes = append(t.writes, txWrite{path: path, id: id, delete: true})
}

// RunTransaction executes fn under optimistic concurrency: conflicting
// commits invalidate the read set and the whole function is retried from
// scratch, mirroring the managed store's transparent transaction retry.
func (s *Memstore) RunTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	for attempt := 0; attempt < txAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := &memTx{s: s, reads: make(map[[2]string]uint64)}
		if err := fn(tx); err != nil {
			return err
		}
		committed, err := s.commit(tx)
		if err != nil {
			return err
		}
		if committed {
			return nil
		}
	}
	return store.ErrTxRetryExhausted
}

// commit validates tx's read set and applies its write set atomically.
// Returns false when a concurrent commit invalidated a read.
func (s *Memstore) commit(tx *memTx) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, store.ErrUnavailable
	}

	for key, seen := range tx.reads {
		var current uint64
		if rec, ok := s.cols[key[0]][key[1]]; ok {
			current = rec.version
		}
		if current != seen {
			s.mu.Unlock()
			return false, nil
		}
	}

	paths := make([]string, 0, len(tx.writes))
	for _, w := range tx.writes {
		switch {
		case w.delete:
			if col, ok := s.cols[w.path]; ok {
				delete(col, w.id)
			}
		case w.ops != nil:
			rec, ok := s.cols[w.path][w.id]
			if !ok {
				s.mu.Unlock()
				return false, store.ErrNotFound
			}
			data := cloneData(rec.doc.Data)
			store.ApplyOps(data, w.ops, s.now())
			s.put(w.path, w.id, data)
		default:
			s.put(w.path, w.id, w.data)
		}
		paths = append(paths, w.path)
	}
	s.mu.Unlock()

	s.notify(paths...)
	return true, nil
}
