package feed

import (
	"context"
	"log/slog"
	"sync"

	"Vented/internal/core/comments"
	"Vented/internal/core/profiles"
	"Vented/internal/core/sessions"
	"Vented/internal/store"
)

// ThreadState is one derived view of a post's comment thread, oldest first.
type ThreadState struct {
	Err      error
	Comments []*comments.Comment
	Ready    bool
}

// Thread is the comment-screen instance of the same combinator pattern as
// Aggregator: one post's live comments × the viewer's blocked set → a
// filtered, chronologically ascending list.
type Thread struct {
	commentSvc comments.Service
	profileSvc profiles.Service
	sess       sessions.Session
	postID     string
	logger     *slog.Logger

	updates chan ThreadState

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewThread creates a comment-thread aggregator for one viewer and post.
func NewThread(commentSvc comments.Service, profileSvc profiles.Service, sess sessions.Session, postID string, logger *slog.Logger) *Thread {
	if logger == nil {
		logger = slog.Default()
	}
	return &Thread{
		commentSvc: commentSvc,
		profileSvc: profileSvc,
		sess:       sess,
		postID:     postID,
		logger:     logger,
		updates:    make(chan ThreadState, 1),
	}
}

// Updates delivers derived thread states, latest-wins.
func (t *Thread) Updates() <-chan ThreadState {
	return t.updates
}

// Start registers the store listeners and begins recomputation.
func (t *Thread) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return ErrAlreadyRunning
	}
	t.running = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	stop, done := t.stop, t.done
	t.mu.Unlock()

	commentsSub, err := t.commentSvc.WatchComments(ctx, t.postID)
	if err != nil {
		t.finish()
		close(done)
		return err
	}
	blockedSub, err := t.profileSvc.WatchBlockedUsers(ctx, t.sess)
	if err != nil {
		commentsSub.Cancel()
		t.finish()
		close(done)
		return err
	}

	go t.run(commentsSub, blockedSub, stop, done)
	return nil
}

// Stop cancels the store listeners synchronously. Safe to call twice.
func (t *Thread) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	stop, done := t.stop, t.done
	t.mu.Unlock()

	close(stop)
	<-done
	t.finish()
}

func (t *Thread) finish() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

func (t *Thread) run(commentsSub, blockedSub store.Subscription, stop, done chan struct{}) {
	defer close(done)
	defer commentsSub.Cancel()
	defer blockedSub.Cancel()

	var (
		all     []*comments.Comment
		blocked []string
		err     error
		ready   bool
	)
	commentsCh := commentsSub.Updates()
	blockedCh := blockedSub.Updates()

	for {
		select {
		case snap, ok := <-commentsCh:
			if !ok {
				commentsCh = nil
				continue
			}
			if snap.Err != nil {
				err = snap.Err
				all = nil
				ready = true
				t.logger.Warn("comments subscription failed", "post", t.postID, "error", snap.Err)
			} else {
				err = nil
				ready = true
				all = comments.FromSnapshot(snap.Docs)
			}
		case snap, ok := <-blockedCh:
			if !ok {
				blockedCh = nil
				continue
			}
			if snap.Err != nil {
				t.logger.Warn("blocked-users subscription failed", "error", snap.Err)
				continue
			}
			blocked = profiles.BlockedFromSnapshot(snap.Docs, t.sess.UserID)
		case <-stop:
			return
		}

		visible := make([]*comments.Comment, 0, len(all))
		for _, c := range all {
			if !isBlocked(blocked, c.AuthorID) {
				visible = append(visible, c)
			}
		}
		t.publish(ThreadState{Comments: visible, Err: err, Ready: ready})
	}
}

func (t *Thread) publish(st ThreadState) {
	for {
		select {
		case t.updates <- st:
			return
		default:
			select {
			case <-t.updates:
			default:
			}
		}
	}
}
