package feed

import (
	"log/slog"

	"Vented/internal/core/comments"
	"Vented/internal/core/posts"
	"Vented/internal/core/profiles"
	"Vented/internal/core/sessions"
)

// Factory builds per-viewer aggregators and threads from a shared set of
// services. Callers that serve many viewers hold one of these instead of
// the individual services.
type Factory struct {
	postSvc    posts.Service
	commentSvc comments.Service
	profileSvc profiles.Service
	logger     *slog.Logger
}

// NewFactory creates a feed factory.
func NewFactory(postSvc posts.Service, commentSvc comments.Service, profileSvc profiles.Service, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		postSvc:    postSvc,
		commentSvc: commentSvc,
		profileSvc: profileSvc,
		logger:     logger,
	}
}

// NewAggregator builds a feed aggregator for one viewer.
func (f *Factory) NewAggregator(sess sessions.Session) *Aggregator {
	return NewAggregator(f.postSvc, f.profileSvc, sess, f.logger)
}

// NewThread builds a comment-thread view for one viewer.
func (f *Factory) NewThread(sess sessions.Session, postID string) *Thread {
	return NewThread(f.commentSvc, f.profileSvc, sess, postID, f.logger)
}
