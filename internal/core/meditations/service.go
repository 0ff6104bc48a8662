// Package meditations serves the guided meditation library. The catalog is
// static; it is seeded into the store on first boot so clients read it the
// same way they read everything else.
package meditations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"Vented/internal/store"
)

// Service defines the business logic interface for the meditation library
type Service interface {
	// List returns the catalog grouped by category. Tracks within a
	// category keep their catalog order.
	List(ctx context.Context) (map[string][]Meditation, error)

	// Get returns one meditation by id.
	Get(ctx context.Context, id string) (*Meditation, error)

	// Seed writes the built-in catalog when the collection is empty.
	Seed(ctx context.Context) error
}

type meditationService struct {
	gateway store.Store
	logger  *slog.Logger
}

// NewService creates a new meditation service instance
func NewService(gateway store.Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &meditationService{gateway: gateway, logger: logger}
}

func (s *meditationService) List(ctx context.Context) (map[string][]Meditation, error) {
	docs, err := s.gateway.List(ctx, store.Query{Path: Collection})
	if err != nil {
		return nil, fmt.Errorf("failed to list meditations: %w", err)
	}

	all := make([]Meditation, 0, len(docs))
	for _, doc := range docs {
		all = append(all, FromDocument(doc))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	grouped := make(map[string][]Meditation)
	for _, m := range all {
		grouped[m.Category] = append(grouped[m.Category], m)
	}
	return grouped, nil
}

func (s *meditationService) Get(ctx context.Context, id string) (*Meditation, error) {
	doc, err := s.gateway.Get(ctx, Collection, id)
	if store.IsNotFound(err) {
		return nil, ErrMeditationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meditation: %w", err)
	}
	m := FromDocument(*doc)
	return &m, nil
}

func (s *meditationService) Seed(ctx context.Context) error {
	docs, err := s.gateway.List(ctx, store.Query{Path: Collection})
	if err != nil {
		return fmt.Errorf("failed to check meditation catalog: %w", err)
	}
	if len(docs) > 0 {
		return nil
	}

	for _, m := range seedCatalog {
		data := map[string]any{
			"title":       m.Title,
			"description": m.Description,
			"audioUrl":    m.AudioURL,
			"category":    m.Category,
		}
		if err := s.gateway.Set(ctx, Collection, m.ID, data); err != nil {
			return fmt.Errorf("failed to seed meditation %s: %w", m.ID, err)
		}
	}
	s.logger.Info("seeded meditation catalog", "count", len(seedCatalog))
	return nil
}
