// Package prompts serves optional writing prompts ("what's on your mind
// today?") from the store. A failed or empty read just means no prompt;
// the caller never sees an error.
package prompts

import (
	"context"
	"log/slog"
	"math/rand"

	"Vented/internal/store"
)

// Collection is the store path prompt documents live under.
const Collection = "prompts"

// Service defines the business logic interface for prompt reads
type Service interface {
	// RandomPrompt returns one arbitrary prompt, or "" when the collection
	// is empty or the read fails.
	RandomPrompt(ctx context.Context) string
}

type promptService struct {
	gateway store.Store
	logger  *slog.Logger
}

// NewService creates a new prompt service instance
func NewService(gateway store.Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &promptService{gateway: gateway, logger: logger}
}

func (s *promptService) RandomPrompt(ctx context.Context) string {
	docs, err := s.gateway.List(ctx, store.Query{Path: Collection})
	if err != nil {
		s.logger.Warn("failed to load prompts", "error", err)
		return ""
	}

	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if p := store.AsString(doc.Data["prompt"]); p != "" {
			texts = append(texts, p)
		}
	}
	if len(texts) == 0 {
		return ""
	}
	return texts[rand.Intn(len(texts))]
}
