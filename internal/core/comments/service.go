package comments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"Vented/internal/core/posts"
	"Vented/internal/core/sessions"
	"Vented/internal/store"
)

// Service defines the business logic interface for comment operations
type Service interface {
	// AddComment creates a comment under a post and bumps the post's
	// commentCount in the same transaction. Fails with ErrParentNotFound
	// without writing anything when the post doesn't exist.
	AddComment(ctx context.Context, sess sessions.Session, postID, content string) (*Comment, error)

	// EditComment replaces a comment's content wholesale and stamps lastEdited
	EditComment(ctx context.Context, sess sessions.Session, postID, commentID, newContent string) error

	// ReportComment increments the comment's report count. Repeat reports by
	// the same caller increment again.
	ReportComment(ctx context.Context, postID, commentID string) error

	// WatchComments subscribes to a post's comments, oldest first
	WatchComments(ctx context.Context, postID string) (store.Subscription, error)
}

type commentService struct {
	gateway store.Store
	logger  *slog.Logger
}

// NewService creates a new comment service instance
func NewService(gateway store.Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{gateway: gateway, logger: logger}
}

// AddComment runs a single transaction: verify the parent exists, create the
// comment document, increment commentCount by exactly one. Conflicting
// concurrent transactions are retried by the gateway, so any number of
// concurrent AddComment calls against one post each land exactly once in the
// counter.
func (s *commentService) AddComment(ctx context.Context, sess sessions.Session, postID, content string) (*Comment, error) {
	commentID := uuid.NewString()
	commentsPath := posts.CommentsPath(postID)

	err := s.gateway.RunTransaction(ctx, func(tx store.Tx) error {
		if _, err := tx.Get(posts.Collection, postID); err != nil {
			if store.IsNotFound(err) {
				return ErrParentNotFound
			}
			return err
		}
		tx.Set(commentsPath, commentID, map[string]any{
			"postId":      postID,
			"userId":      sess.UserID,
			"content":     content,
			"reportCount": int64(0),
		})
		tx.Update(posts.Collection, postID, store.Inc("commentCount", 1))
		return nil
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrParentNotFound
		}
		s.logger.Error("failed to add comment",
			"error", err,
			"post", postID,
			"author", sess.UserID)
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.logger.Info("comment added", "post", postID, "comment", commentID, "author", sess.UserID)

	doc, err := s.gateway.Get(ctx, commentsPath, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created comment: %w", err)
	}
	return FromDocument(*doc), nil
}

func (s *commentService) EditComment(ctx context.Context, sess sessions.Session, postID, commentID, newContent string) error {
	path := posts.CommentsPath(postID)
	doc, err := s.gateway.Get(ctx, path, commentID)
	if err != nil {
		if store.IsNotFound(err) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to fetch comment: %w", err)
	}
	if store.AsString(doc.Data["userId"]) != sess.UserID {
		return posts.ErrNotAuthorized
	}

	err = s.gateway.Update(ctx, path, commentID,
		store.SetField("content", newContent),
		store.ServerTime("lastEdited"))
	if err != nil {
		if store.IsNotFound(err) {
			return ErrCommentNotFound
		}
		s.logger.Error("failed to edit comment", "error", err, "post", postID, "comment", commentID)
		return fmt.Errorf("failed to edit comment: %w", err)
	}

	s.logger.Info("comment edited", "post", postID, "comment", commentID, "author", sess.UserID)
	return nil
}

func (s *commentService) ReportComment(ctx context.Context, postID, commentID string) error {
	err := s.gateway.Update(ctx, posts.CommentsPath(postID), commentID, store.Inc("reportCount", 1))
	if err != nil {
		if store.IsNotFound(err) {
			return ErrCommentNotFound
		}
		s.logger.Error("failed to report comment", "error", err, "post", postID, "comment", commentID)
		return fmt.Errorf("failed to report comment: %w", err)
	}
	s.logger.Info("comment reported", "post", postID, "comment", commentID)
	return nil
}

func (s *commentService) WatchComments(ctx context.Context, postID string) (store.Subscription, error) {
	sub, err := s.gateway.Watch(ctx, store.Query{Path: posts.CommentsPath(postID)})
	if err != nil {
		return nil, fmt.Errorf("failed to watch comments: %w", err)
	}
	return sub, nil
}
