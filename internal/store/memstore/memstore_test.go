package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vented/internal/store"
)

func TestCreateAssignsIDAndServerTimestamps(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	id, err := s.Create(ctx, "vents", map[string]any{"content": "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.Get(ctx, "vents", id)
	require.NoError(t, err)
	assert.Equal(t, "hello", store.AsString(doc.Data["content"]))
	assert.False(t, doc.CreatedAt.IsZero())
	assert.Equal(t, doc.CreatedAt, doc.UpdatedAt)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := New()
	defer s.Close()

	_, err := s.Get(context.Background(), "vents", "nope")
	assert.True(t, store.IsNotFound(err))
}

func TestCreationTimesAreStrictlyIncreasing(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	var prev time.Time
	for i := 0; i < 100; i++ {
		id, err := s.Create(ctx, "vents", map[string]any{})
		require.NoError(t, err)
		doc, err := s.Get(ctx, "vents", id)
		require.NoError(t, err)
		assert.True(t, doc.CreatedAt.After(prev), "creation times must be monotonic")
		prev = doc.CreatedAt
	}
}

func TestListOrdersByCreationTimeDescending(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	first, err := s.Create(ctx, "vents", map[string]any{"content": "first"})
	require.NoError(t, err)
	second, err := s.Create(ctx, "vents", map[string]any{"content": "second"})
	require.NoError(t, err)

	docs, err := s.List(ctx, store.Query{Path: "vents", Desc: true})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, second, docs[0].ID)
	assert.Equal(t, first, docs[1].ID)
}

func TestListFiltersByEquality(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	_, err := s.Create(ctx, "vents", map[string]any{"userId": "alice"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "vents", map[string]any{"userId": "bob"})
	require.NoError(t, err)

	docs, err := s.List(ctx, store.Query{
		Path:  "vents",
		Where: []store.Condition{{Field: "userId", Value: "alice"}},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "alice", store.AsString(docs[0].Data["userId"]))
}

func TestUpdateIncrementAndServerTime(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	id, err := s.Create(ctx, "vents", map[string]any{"reportCount": int64(0)})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "vents", id, store.Inc("reportCount", 1)))
	require.NoError(t, s.Update(ctx, "vents", id, store.Inc("reportCount", 1), store.ServerTime("lastEdited")))

	doc, err := s.Get(ctx, "vents", id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), store.AsInt(doc.Data["reportCount"]))
	assert.False(t, store.AsTime(doc.Data["lastEdited"]).IsZero())
}

func TestUpdateMissingDocumentReturnsNotFound(t *testing.T) {
	s := New()
	defer s.Close()

	err := s.Update(context.Background(), "vents", "nope", store.Inc("reportCount", 1))
	assert.True(t, store.IsNotFound(err))
}

func TestSetMergeUnionIsIdempotent(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.SetMerge(ctx, "users", "me", store.Union("blockedUsers", "bob")))
	require.NoError(t, s.SetMerge(ctx, "users", "me", store.Union("blockedUsers", "bob")))
	require.NoError(t, s.SetMerge(ctx, "users", "me", store.Union("blockedUsers", "carol")))

	doc, err := s.Get(ctx, "users", "me")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, store.AsStrings(doc.Data["blockedUsers"]))

	require.NoError(t, s.SetMerge(ctx, "users", "me", store.Remove("blockedUsers", "bob")))
	doc, err = s.Get(ctx, "users", "me")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, store.AsStrings(doc.Data["blockedUsers"]))
}

func TestWatchDeliversFullSnapshots(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	sub, err := s.Watch(ctx, store.Query{Path: "vents", Desc: true})
	require.NoError(t, err)
	defer sub.Cancel()

	snap := <-sub.Updates()
	require.NoError(t, snap.Err)
	assert.Empty(t, snap.Docs)

	_, err = s.Create(ctx, "vents", map[string]any{"content": "a"})
	require.NoError(t, err)
	snap = <-sub.Updates()
	require.NoError(t, snap.Err)
	assert.Len(t, snap.Docs, 1)

	_, err = s.Create(ctx, "vents", map[string]any{"content": "b"})
	require.NoError(t, err)
	snap = <-sub.Updates()
	require.NoError(t, snap.Err)
	// Full result set, not a diff.
	assert.Len(t, snap.Docs, 2)
}

func TestWatchCancelIsSynchronous(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	sub, err := s.Watch(ctx, store.Query{Path: "vents"})
	require.NoError(t, err)
	<-sub.Updates()

	sub.Cancel()
	// After Cancel returns the channel is closed and no writes wake it.
	_, err = s.Create(ctx, "vents", map[string]any{})
	require.NoError(t, err)
	_, open := <-sub.Updates()
	assert.False(t, open)

	// Cancelling again must not panic or block.
	sub.Cancel()
}

func TestCloseEndsSubscriptionsWithTerminalError(t *testing.T) {
	s := New()
	ctx := context.Background()

	sub, err := s.Watch(ctx, store.Query{Path: "vents"})
	require.NoError(t, err)
	<-sub.Updates()

	require.NoError(t, s.Close())

	snap, open := <-sub.Updates()
	require.True(t, open)
	assert.True(t, store.IsUnavailable(snap.Err))
	_, open = <-sub.Updates()
	assert.False(t, open)
}

func TestTransactionAbortWritesNothing(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	boom := assert.AnError
	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		tx.Set("vents", "p1", map[string]any{"content": "never"})
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Get(ctx, "vents", "p1")
	assert.True(t, store.IsNotFound(err))
}

func TestConcurrentTransactionalIncrements(t *testing.T) {
	s := New()
	defer s.Close()
	ctx := context.Background()

	id, err := s.Create(ctx, "vents", map[string]any{"commentCount": int64(0)})
	require.NoError(t, err)

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.RunTransaction(ctx, func(tx store.Tx) error {
				if _, err := tx.Get("vents", id); err != nil {
					return err
				}
				tx.Update("vents", id, store.Inc("commentCount", 1))
				return nil
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	doc, err := s.Get(ctx, "vents", id)
	require.NoError(t, err)
	assert.Equal(t, int64(writers), store.AsInt(doc.Data["commentCount"]))
}
