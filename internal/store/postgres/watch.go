package postgres

import (
	"context"
	"sync"

	"Vented/internal/store"
)

// watcher re-runs its query whenever the documents trigger reports a change
// on the watched path, pushing the full result set each time. The wake
// channel coalesces bursts.
type watcher struct {
	s          *Store
	q          store.Query
	ch         chan store.Snapshot
	wake       chan struct{}
	stop       chan struct{}
	done       chan struct{}
	failErr    chan error
	cancelOnce sync.Once
	id         int
}

func (s *Store) Watch(ctx context.Context, q store.Query) (store.Subscription, error) {
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

func (w *watcher) Cancel() {
	w.cancelOnce.Do(func() {
		w.s.deregister(w.id)
		close(w.stop)
	})
	<-w.done
}

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

		docs, err := w.s.List(ctx, w.q)
		if err != nil {
			// Query failures are terminal for the subscription; the caller
			// re-subscribes explicitly.
			w.s.deregister(w.id)
			select {
			case w.ch <- store.Snapshot{Err: err}:
			case <-w.stop:
			case <-ctx.Done():
			}
			return
		}

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

func (s *Store) deregister(id int) {
	s.mu.Lock()
	delete(s.watchers, id)
	s.mu.Unlock()
}

// dispatchNotifications fans pq.Listener notifications out to watchers whose
// query path matches the payload. A nil notification (listener reconnect)
// wakes everyone, since changes may have been missed.
func (s *Store) dispatchNotifications() {
	for n := range s.listener.Notify {
		s.mu.Lock()
		watchers := make([]*watcher, 0, len(s.watchers))
		for _, w := range s.watchers {
			if n == nil || w.q.Path == n.Extra {
				watchers = append(watchers, w)
			}
		}
		s.mu.Unlock()
		for _, w := range watchers {
			w.poke()
		}
	}
}
