// Package profiles manages the per-user profile document: the blocked-user
// set and the push-notification device token. Blocking is a client-visible
// suppression only; it never touches the blocked author's content.
package profiles

import (
	"context"
	"fmt"
	"log/slog"

	"Vented/internal/core/sessions"
	"Vented/internal/store"
)

// Collection is the store path profile documents live under, keyed by the
// owning user's id.
const Collection = "users"

// Service defines the business logic interface for profile operations
type Service interface {
	// BlockUser adds targetUserID to the caller's blocked set. Idempotent.
	BlockUser(ctx context.Context, sess sessions.Session, targetUserID string) error

	// UnblockUser removes targetUserID from the caller's blocked set,
	// restoring that author's visibility.
	UnblockUser(ctx context.Context, sess sessions.Session, targetUserID string) error

	// BlockedUsers reads the caller's blocked set once
	BlockedUsers(ctx context.Context, sess sessions.Session) ([]string, error)

	// WatchBlockedUsers subscribes to the caller's profile document; the
	// blocked set is extracted with BlockedFromSnapshot.
	WatchBlockedUsers(ctx context.Context, sess sessions.Session) (store.Subscription, error)

	// RegisterDeviceToken stores a push delivery token on the caller's
	// profile. Fan-out is entirely external.
	RegisterDeviceToken(ctx context.Context, sess sessions.Session, token string) error
}

type profileService struct {
	gateway store.Store
	logger  *slog.Logger
}

// NewService creates a new profile service instance
func NewService(gateway store.Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &profileService{gateway: gateway, logger: logger}
}

func (s *profileService) BlockUser(ctx context.Context, sess sessions.Session, targetUserID string) error {
	if targetUserID == sess.UserID {
		return ErrSelfBlock
	}
	err := s.gateway.SetMerge(ctx, Collection, sess.UserID, store.Union("blockedUsers", targetUserID))
	if err != nil {
		s.logger.Error("failed to block user",
			"error", err,
			"user", sess.UserID,
			"target", targetUserID)
		return fmt.Errorf("failed to block user: %w", err)
	}
	s.logger.Info("user blocked", "user", sess.UserID, "target", targetUserID)
	return nil
}

func (s *profileService) UnblockUser(ctx context.Context, sess sessions.Session, targetUserID string) error {
	err := s.gateway.SetMerge(ctx, Collection, sess.UserID, store.Remove("blockedUsers", targetUserID))
	if err != nil {
		s.logger.Error("failed to unblock user",
			"error", err,
			"user", sess.UserID,
			"target", targetUserID)
		return fmt.Errorf("failed to unblock user: %w", err)
	}
	s.logger.Info("user unblocked", "user", sess.UserID, "target", targetUserID)
	return nil
}

func (s *profileService) BlockedUsers(ctx context.Context, sess sessions.Session) ([]string, error) {
	doc, err := s.gateway.Get(ctx, Collection, sess.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return store.AsStrings(doc.Data["blockedUsers"]), nil
}

func (s *profileService) WatchBlockedUsers(ctx context.Context, sess sessions.Session) (store.Subscription, error) {
	sub, err := s.gateway.Watch(ctx, store.Query{Path: Collection})
	if err != nil {
		return nil, fmt.Errorf("failed to watch profile: %w", err)
	}
	return sub, nil
}

// BlockedFromSnapshot extracts userID's blocked set from a profile
// collection snapshot. A missing profile document means nothing is blocked.
func BlockedFromSnapshot(docs []store.Document, userID string) []string {
	for _, doc := range docs {
		if doc.ID == userID {
			return store.AsStrings(doc.Data["blockedUsers"])
		}
	}
	return []string{}
}

func (s *profileService) RegisterDeviceToken(ctx context.Context, sess sessions.Session, token string) error {
	err := s.gateway.SetMerge(ctx, Collection, sess.UserID, store.SetField("deviceToken", token))
	if err != nil {
		s.logger.Error("failed to register device token", "error", err, "user", sess.UserID)
		return fmt.Errorf("failed to register device token: %w", err)
	}
	s.logger.Info("device token registered", "user", sess.UserID)
	return nil
}
