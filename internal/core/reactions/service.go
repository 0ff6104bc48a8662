package reactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"Vented/internal/core/posts"
	"Vented/internal/core/sessions"
	"Vented/internal/store"
)

// Service defines the business logic interface for reaction operations
type Service interface {
	// ToggleReaction creates, removes, or switches the caller's reaction on
	// a post. At most one reaction per (post, user) exists at any time and
	// the post's reaction histogram stays exact.
	ToggleReaction(ctx context.Context, sess sessions.Session, postID, reactionType string) error

	// UserReaction returns the caller's current reaction type on a post, or
	// "" when there is none (or the session is anonymous).
	UserReaction(ctx context.Context, sess sessions.Session, postID string) (string, error)
}

type reactionService struct {
	gateway store.Store
	logger  *slog.Logger
}

// NewService creates a new reaction service instance
func NewService(gateway store.Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &reactionService{gateway: gateway, logger: logger}
}

// ToggleReaction is a single all-or-nothing transaction over the post
// document and the caller's reaction document (id = user id):
//
//   - no existing reaction: create it, increment reactions[type]
//   - same type: delete it, decrement reactions[type]
//   - different type: delete old, decrement old type, create new, increment
//     new type
//
// A type's key is removed from the histogram when its count reaches zero;
// counts never go negative. Splitting this into separate writes could leave
// the histogram out of step with the reaction documents, which is why the
// whole toggle lives in one transaction.
func (s *reactionService) ToggleReaction(ctx context.Context, sess sessions.Session, postID, reactionType string) error {
	if !ValidType(reactionType) {
		return ErrInvalidType
	}

	reactionsPath := posts.ReactionsPath(postID)

	err := s.gateway.RunTransaction(ctx, func(tx store.Tx) error {
		postDoc, err := tx.Get(posts.Collection, postID)
		if err != nil {
			if store.IsNotFound(err) {
				return ErrPostNotFound
			}
			return err
		}
		histogram := store.AsIntMap(postDoc.Data["reactions"])

		existing, err := tx.Get(reactionsPath, sess.UserID)
		if err != nil && !store.IsNotFound(err) {
			return err
		}

		if existing != nil {
			oldType := store.AsString(existing.Data["type"])
			if histogram[oldType] > 1 {
				histogram[oldType]--
			} else {
				delete(histogram, oldType)
			}
			tx.Delete(reactionsPath, sess.UserID)

			if oldType != reactionType {
				histogram[reactionType]++
				tx.Set(reactionsPath, sess.UserID, reactionData(postID, sess.UserID, reactionType))
			}
		} else {
			histogram[reactionType]++
			tx.Set(reactionsPath, sess.UserID, reactionData(postID, sess.UserID, reactionType))
		}

		tx.Update(posts.Collection, postID, store.SetField("reactions", histogram))
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return err
		}
		s.logger.Error("failed to toggle reaction",
			"error", err,
			"post", postID,
			"user", sess.UserID,
			"type", reactionType)
		return fmt.Errorf("failed to toggle reaction: %w", err)
	}

	s.logger.Info("reaction toggled", "post", postID, "user", sess.UserID, "type", reactionType)
	return nil
}

func reactionData(postID, userID, reactionType string) map[string]any {
	return map[string]any{
		"postId": postID,
		"userId": userID,
		"type":   reactionType,
	}
}

func (s *reactionService) UserReaction(ctx context.Context, sess sessions.Session, postID string) (string, error) {
	if sess.Anonymous() {
		return "", nil
	}
	doc, err := s.gateway.Get(ctx, posts.ReactionsPath(postID), sess.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to fetch reaction: %w", err)
	}
	return store.AsString(doc.Data["type"]), nil
}
