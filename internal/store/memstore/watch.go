package memstore

import (
	"context"
	"sync"

	"Vented/internal/store"
)

// watcher is one live query registration. A dedicated goroutine recomputes
// the full result set whenever the watched collection commits and delivers
// it on ch. Intermediate states coalesce: the wake channel has capacity one,
// so a slow consumer sees the latest state rather than every step.
type watcher struct {
	s          *Memstore
	q          store.Query
	ch         chan store.Snapshot
	wake       chan struct{}
	stop       chan struct{}
	done       chan struct{}
	failErr    chan error
	cancelOnce sync.Once
	id         int
}

func (s *Memstore) Watch(ctx context.Context, q store.Query) (store.Subscription, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, store.ErrUnavailable
	}
	w := &watcher{
		s:       s,
		q:       q,
		ch:      make(chan store.Snapshot),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		failErr: make(chan error, 1),
		id:      s.nextID,
	}
	s.nextID++
	s.watchers[w.id] = w
	s.mu.Unlock()

	go w.run(ctx)
	return w, nil
}

func (w *watcher) Updates() <-chan store.Snapshot {
	return w.ch
}

// Cancel deregisters the watcher and waits for its goroutine to exit, so no
// snapshot can be delivered after Cancel returns.
func (w *watcher) Cancel() {
	w.cancelOnce.Do(func() {
		w.s.deregister(w.id)
		close(w.stop)
	})
	<-w.done
}

// fail delivers a terminal error snapshot and ends the subscription.
func (w *watcher) fail(err error) {
	select {
	case w.failErr <- err:
	default:
	}
	w.poke()
}

func (w *watcher) poke() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *watcher) run(ctx context.Context) {
	defer close(w.done)
	defer close(w.ch)

	// Initial snapshot, then one recomputation per wake.
	for {
		select {
		case err := <-w.failErr:
			w.s.deregister(w.id)
			select {
			case w.ch <- store.Snapshot{Err: err}:
			case <-w.stop:
			case <-ctx.Done():
			}
			return
		default:
		}

		w.s.mu.Lock()
		docs := w.s.runQuery(w.q)
		w.s.mu.Unlock()

		select {
		case w.ch <- store.Snapshot{Docs: docs}:
		case <-w.stop:
			return
		case <-ctx.Done():
			w.s.deregister(w.id)
			return
		}

		select {
		case <-w.wake:
		case <-w.stop:
			return
		case <-ctx.Done():
			w.s.deregister(w.id)
			return
		}
	}
}

func (s *Memstore) deregister(id int) {
	s.mu.Lock()
	delete(s.watchers, id)
	s.mu.Unlock()
}

// notify wakes every watcher whose query targets path.
func (s *Memstore) notify(paths ...string) {
	s.mu.Lock()
	watchers := make([]*watcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		for _, p := range paths {
			if w.q.Path == p {
				watchers = append(watchers, w)
				break
			}
		}
	}
	s.mu.Unlock()
	for _, w := range watchers {
		w.poke()
	}
}
