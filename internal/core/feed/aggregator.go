// Package feed holds the live view-state aggregators: dataflow nodes that
// keep the latest value of several independently-updating sources (post
// snapshots, the viewer's blocked set, local filter selections) and
// recombine them into one derived, subscribable output whenever any source
// changes. Recomputation is serialized through a single goroutine per
// aggregator, so a derived view is never mutated concurrently and no
// ordering between sources is assumed.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"Vented/internal/core/posts"
	"Vented/internal/core/profiles"
	"Vented/internal/core/sessions"
	"Vented/internal/store"
)

// ErrAlreadyRunning indicates Start was called on a running aggregator
var ErrAlreadyRunning = errors.New("aggregator already running")

// State is one derived view of the feed. Err set means the posts
// subscription failed terminally: previous posts are dropped, not served
// stale, and recovery requires an explicit restart. Ready is false until
// the first posts snapshot (or error) has arrived.
type State struct {
	Err   error
	Posts []*posts.Post
	Ready bool
}

// Aggregator combines four sources (all posts newest first, the viewer's
// blocked-user set, the mood filter, and the tag filter) into a filtered
// feed. Mood and tag filters are mutually exclusive: setting one clears the
// other. An instance can be started, stopped, and started again without
// leaking store listeners; at most one listener per source is live at a
// time.
type Aggregator struct {
	postSvc    posts.Service
	profileSvc profiles.Service
	sess       sessions.Session
	logger     *slog.Logger

	updates chan State
	poke    chan struct{}

	mu      sync.Mutex
	mood    string
	tag     string
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewAggregator creates a feed aggregator for one viewer. Call Start to
// begin receiving states on Updates.
func NewAggregator(postSvc posts.Service, profileSvc profiles.Service, sess sessions.Session, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		postSvc:    postSvc,
		profileSvc: profileSvc,
		sess:       sess,
		logger:     logger,
		updates:    make(chan State, 1),
		poke:       make(chan struct{}, 1),
	}
}

// Updates delivers derived states, latest-wins: a slow consumer skips
// intermediate states rather than stalling recomputation. The channel stays
// open across restarts.
func (a *Aggregator) Updates() <-chan State {
	return a.updates
}

// SetMoodFilter selects a mood filter and clears the tag filter. Empty
// clears the mood filter.
func (a *Aggregator) SetMoodFilter(mood string) {
	a.mu.Lock()
	a.mood = mood
	a.tag = ""
	a.mu.Unlock()
	a.wake()
}

// SetTagFilter selects a tag filter and clears the mood filter. Empty
// clears the tag filter.
func (a *Aggregator) SetTagFilter(tag string) {
	a.mu.Lock()
	a.tag = tag
	a.mood = ""
	a.mu.Unlock()
	a.wake()
}

// ClearFilters clears both filters.
func (a *Aggregator) ClearFilters() {
	a.mu.Lock()
	a.mood = ""
	a.tag = ""
	a.mu.Unlock()
	a.wake()
}

// Filters returns the currently selected mood and tag filters.
func (a *Aggregator) Filters() (mood, tag string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mood, a.tag
}

func (a *Aggregator) wake() {
	select {
	case a.poke <- struct{}{}:
	default:
	}
}

// Start registers the store listeners and begins recomputation. Filters
// selected while stopped are applied immediately.
func (a *Aggregator) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	a.running = true
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	stop, done := a.stop, a.done
	a.mu.Unlock()

	postsSub, err := a.postSvc.WatchPosts(ctx)
	if err != nil {
		a.finish()
		close(done)
		return err
	}
	blockedSub, err := a.profileSvc.WatchBlockedUsers(ctx, a.sess)
	if err != nil {
		postsSub.Cancel()
		a.finish()
		close(done)
		return err
	}

	go a.run(postsSub, blockedSub, stop, done)
	return nil
}

// Stop cancels the store listeners and halts recomputation. It is
// synchronous: when it returns, the listeners are released and no further
// state will be published. Safe to call on a stopped aggregator.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	stop, done := a.stop, a.done
	a.mu.Unlock()

	close(stop)
	<-done
	a.finish()
}

func (a *Aggregator) finish() {
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
}

// run is the single update path: it owns the latest value of every source
// and recomputes the derived state after each change, in arrival order.
func (a *Aggregator) run(postsSub, blockedSub store.Subscription, stop, done chan struct{}) {
	defer close(done)
	defer postsSub.Cancel()
	defer blockedSub.Cancel()

	var (
		all     []*posts.Post
		blocked []string
		err     error
		ready   bool
	)
	postsCh := postsSub.Updates()
	blockedCh := blockedSub.Updates()

	for {
		select {
		case snap, ok := <-postsCh:
			if !ok {
				postsCh = nil
				continue
			}
			if snap.Err != nil {
				// Terminal: drop prior data so nothing stale is served as live.
				err = snap.Err
				all = nil
				ready = true
				a.logger.Warn("posts subscription failed", "error", snap.Err)
			} else {
				err = nil
				ready = true
				all = posts.FromSnapshot(snap.Docs)
			}
		case snap, ok := <-blockedCh:
			if !ok {
				blockedCh = nil
				continue
			}
			if snap.Err != nil {
				a.logger.Warn("blocked-users subscription failed", "error", snap.Err)
				continue
			}
			blocked = profiles.BlockedFromSnapshot(snap.Docs, a.sess.UserID)
		case <-a.poke:
		case <-stop:
			return
		}

		mood, tag := a.Filters()
		a.publish(State{
			Posts: derive(all, mood, tag, blocked),
			Err:   err,
			Ready: ready,
		})
	}
}

func (a *Aggregator) publish(st State) {
	for {
		select {
		case a.updates <- st:
			return
		default:
			// Replace the stale undelivered state.
			select {
			case <-a.updates:
			default:
			}
		}
	}
}

// derive is the pure recombination function: mood filter if set, else tag
// filter if set, then drop blocked authors. Input order (newest first) is
// preserved.
func derive(all []*posts.Post, mood, tag string, blocked []string) []*posts.Post {
	out := make([]*posts.Post, 0, len(all))
	for _, p := range all {
		switch {
		case mood != "" && p.Mood != mood:
			continue
		case mood == "" && tag != "" && !hasTag(p, tag):
			continue
		}
		if isBlocked(blocked, p.AuthorID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasTag(p *posts.Post, tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func isBlocked(blocked []string, authorID string) bool {
	for _, b := range blocked {
		if b == authorID {
			return true
		}
	}
	return false
}
