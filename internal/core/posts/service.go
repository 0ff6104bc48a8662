package posts

import (
	"context"
	"fmt"
	"log/slog"

	"Vented/internal/core/sessions"
	"Vented/internal/store"
)

// Service defines the business logic interface for vent operations.
// Watch methods return raw gateway subscriptions; callers map snapshots
// through FromSnapshot.
type Service interface {
	// CreatePost writes a new vent. The post does not exist until the write
	// is acknowledged.
	CreatePost(ctx context.Context, sess sessions.Session, req CreatePostRequest) (*Post, error)

	// GetPost reads one vent
	GetPost(ctx context.Context, postID string) (*Post, error)

	// EditPost replaces a vent's content wholesale and stamps lastEdited
	EditPost(ctx context.Context, sess sessions.Session, postID, newContent string) error

	// DeletePost removes the post document. Comments and reactions beneath
	// it are left in place.
	DeletePost(ctx context.Context, sess sessions.Session, postID string) error

	// ReportPost increments the post's report count. Repeat reports by the
	// same caller increment again.
	ReportPost(ctx context.Context, postID string) error

	// WatchPosts subscribes to all vents, newest first
	WatchPosts(ctx context.Context) (store.Subscription, error)

	// WatchPostsByAuthor subscribes to one author's vents, newest first
	WatchPostsByAuthor(ctx context.Context, authorID string) (store.Subscription, error)
}

type postService struct {
	gateway store.Store
	logger  *slog.Logger
}

// NewService creates a new post service instance
func NewService(gateway store.Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{gateway: gateway, logger: logger}
}

func (s *postService) CreatePost(ctx context.Context, sess sessions.Session, req CreatePostRequest) (*Post, error) {
	if !ValidMood(req.Mood) {
		return nil, ErrInvalidMood
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	data := map[string]any{
		"userId":       sess.UserID,
		"content":      req.Content,
		"mood":         req.Mood,
		"tags":         tags,
		"commentCount": int64(0),
		"reactions":    map[string]int64{},
		"reportCount":  int64(0),
	}
	if req.ImageURL != "" {
		data["imageUrl"] = req.ImageURL
	}

	id, err := s.gateway.Create(ctx, Collection, data)
	if err != nil {
		s.logger.Error("failed to create post",
			"error", err,
			"author", sess.UserID)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.Info("post created",
		"post", id,
		"author", sess.UserID,
		"mood", req.Mood,
		"tags", len(tags))

	return s.GetPost(ctx, id)
}

func (s *postService) GetPost(ctx context.Context, postID string) (*Post, error) {
	doc, err := s.gateway.Get(ctx, Collection, postID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}
	return FromDocument(*doc), nil
}

func (s *postService) EditPost(ctx context.Context, sess sessions.Session, postID, newContent string) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != sess.UserID {
		return ErrNotAuthorized
	}

	err = s.gateway.Update(ctx, Collection, postID,
		store.SetField("content", newContent),
		store.ServerTime("lastEdited"))
	if err != nil {
		if store.IsNotFound(err) {
			return ErrPostNotFound
		}
		s.logger.Error("failed to edit post", "error", err, "post", postID)
		return fmt.Errorf("failed to edit post: %w", err)
	}

	s.logger.Info("post edited", "post", postID, "author", sess.UserID)
	return nil
}

func (s *postService) DeletePost(ctx context.Context, sess sessions.Session, postID string) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != sess.UserID {
		return ErrNotAuthorized
	}

	if err := s.gateway.Delete(ctx, Collection, postID); err != nil {
		s.logger.Error("failed to delete post", "error", err, "post", postID)
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.logger.Info("post deleted", "post", postID, "author", sess.UserID)
	return nil
}

func (s *postService) ReportPost(ctx context.Context, postID string) error {
	err := s.gateway.Update(ctx, Collection, postID, store.Inc("reportCount", 1))
	if err != nil {
		if store.IsNotFound(err) {
			return ErrPostNotFound
		}
		s.logger.Error("failed to report post", "error", err, "post", postID)
		return fmt.Errorf("failed to report post: %w", err)
	}
	s.logger.Info("post reported", "post", postID)
	return nil
}

func (s *postService) WatchPosts(ctx context.Context) (store.Subscription, error) {
	sub, err := s.gateway.Watch(ctx, store.Query{Path: Collection, Desc: true})
	if err != nil {
		return nil, fmt.Errorf("failed to watch posts: %w", err)
	}
	return sub, nil
}

func (s *postService) WatchPostsByAuthor(ctx context.Context, authorID string) (store.Subscription, error) {
	sub, err := s.gateway.Watch(ctx, store.Query{
		Path:  Collection,
		Where: []store.Condition{{Field: "userId", Value: authorID}},
		Desc:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to watch posts by author: %w", err)
	}
	return sub, nil
}
