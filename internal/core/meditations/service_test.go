package meditations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vented/internal/core/meditations"
	"Vented/internal/store"
	"Vented/internal/store/memstore"
)

func TestSeedAndList(t *testing.T) {
	ms := memstore.New()
	defer ms.Close()
	ctx := context.Background()

	svc := meditations.NewService(ms, nil)
	require.NoError(t, svc.Seed(ctx))

	grouped, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, grouped, 3)
	require.Len(t, grouped["Stress & Anxiety"], 1)
	assert.Equal(t, "Morning Gratitude", grouped["Stress & Anxiety"][0].Title)
}

func TestSeedIsIdempotent(t *testing.T) {
	ms := memstore.New()
	defer ms.Close()
	ctx := context.Background()

	svc := meditations.NewService(ms, nil)
	require.NoError(t, svc.Seed(ctx))
	require.NoError(t, svc.Seed(ctx))

	docs, err := ms.List(ctx, store.Query{Path: meditations.Collection})
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestGet(t *testing.T) {
	ms := memstore.New()
	defer ms.Close()
	ctx := context.Background()

	svc := meditations.NewService(ms, nil)
	require.NoError(t, svc.Seed(ctx))

	m, err := svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Deep Sleep Relaxation", m.Title)
	assert.Equal(t, "Sleep & Relaxation", m.Category)
	assert.NotEmpty(t, m.AudioURL)

	_, err = svc.Get(ctx, "missing")
	assert.True(t, meditations.IsNotFound(err))
}
