package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vented/internal/core/comments"
	"Vented/internal/core/feed"
	"Vented/internal/core/posts"
	"Vented/internal/core/profiles"
	"Vented/internal/core/reactions"
	"Vented/internal/core/sessions"
	"Vented/internal/store/memstore"
)

// env is a full service stack over one in-memory store.
type env struct {
	store     *memstore.Memstore
	posts     posts.Service
	comments  comments.Service
	reactions reactions.Service
	profiles  profiles.Service
	feeds     *feed.Factory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ms := memstore.New()
	t.Cleanup(func() { ms.Close() })

	postSvc := posts.NewService(ms, nil)
	commentSvc := comments.NewService(ms, nil)
	return &env{
		store:     ms,
		posts:     postSvc,
		comments:  commentSvc,
		reactions: reactions.NewService(ms, nil),
		profiles:  profiles.NewService(ms, nil),
		feeds:     feed.NewFactory(postSvc, commentSvc, profiles.NewService(ms, nil), nil),
	}
}

func waitForFeed(t *testing.T, updates <-chan feed.State, cond func(feed.State) bool) feed.State {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case st := <-updates:
			if cond(st) {
				return st
			}
		case <-deadline:
			t.Fatal("timed out waiting for feed state")
		}
	}
}

// TestVentingFlow walks the full lifecycle: a vent is posted, discussed,
// reacted to, filtered, and finally hidden by a block, with every viewer
// seeing exactly what they should.
func TestVentingFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := sessions.For("author")
	reader1 := sessions.For("reader-1")
	reader2 := sessions.For("reader-2")

	// A vent goes up.
	post, err := e.posts.CreatePost(ctx, author, posts.CreatePostRequest{
		Content: "deadline pressure is crushing me",
		Mood:    "😊 Happy",
		Tags:    []string{"work"},
	})
	require.NoError(t, err)

	// Three comments land; the counter tracks them.
	for i := 1; i <= 3; i++ {
		_, err := e.comments.AddComment(ctx, reader1, post.ID, fmt.Sprintf("hang in there %d", i))
		require.NoError(t, err)
	}
	got, err := e.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.CommentCount)

	// Two readers like it.
	require.NoError(t, e.reactions.ToggleReaction(ctx, reader1, post.ID, "like"))
	require.NoError(t, e.reactions.ToggleReaction(ctx, reader2, post.ID, "like"))
	got, err = e.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"like": 2}, got.Reactions)

	// One switches to a hug; the histogram follows.
	require.NoError(t, e.reactions.ToggleReaction(ctx, reader2, post.ID, "hug"))
	got, err = e.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"like": 1, "hug": 1}, got.Reactions)

	// Reader 1 opens the feed and sees the vent.
	agg := e.feeds.NewAggregator(reader1)
	require.NoError(t, agg.Start(ctx))
	defer agg.Stop()

	waitForFeed(t, agg.Updates(), func(st feed.State) bool {
		return st.Ready && len(st.Posts) == 1 && st.Posts[0].ID == post.ID
	})

	// A mood filter for a different mood hides it.
	agg.SetMoodFilter("😢 Sad")
	waitForFeed(t, agg.Updates(), func(st feed.State) bool { return len(st.Posts) == 0 })

	agg.ClearFilters()
	waitForFeed(t, agg.Updates(), func(st feed.State) bool { return len(st.Posts) == 1 })

	// Reader 2 blocks the author; only reader 2's feed goes quiet.
	agg2 := e.feeds.NewAggregator(reader2)
	require.NoError(t, agg2.Start(ctx))
	defer agg2.Stop()

	waitForFeed(t, agg2.Updates(), func(st feed.State) bool {
		return st.Ready && len(st.Posts) == 1
	})

	require.NoError(t, e.profiles.BlockUser(ctx, reader2, author.UserID))
	waitForFeed(t, agg2.Updates(), func(st feed.State) bool { return len(st.Posts) == 0 })

	st := waitForFeed(t, agg.Updates(), func(st feed.State) bool { return st.Ready })
	assert.Len(t, st.Posts, 1, "blocks are per viewer")

	// The vent document itself is untouched by the block.
	got, err = e.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", got.AuthorID)
	assert.Equal(t, int64(3), got.CommentCount)
}

// TestTagFilterAcrossViewers exercises tag filtering alongside a busy feed.
func TestTagFilterAcrossViewers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := sessions.For("author")
	moods := []string{"😢 Sad", "🙏 Grateful", ""}
	for i, mood := range moods {
		_, err := e.posts.CreatePost(ctx, author, posts.CreatePostRequest{
			Content: fmt.Sprintf("vent %d", i),
			Mood:    mood,
			Tags:    []string{fmt.Sprintf("tag-%d", i%2)},
		})
		require.NoError(t, err)
	}

	viewer := e.feeds.NewAggregator(sessions.For("viewer"))
	require.NoError(t, viewer.Start(ctx))
	defer viewer.Stop()

	waitForFeed(t, viewer.Updates(), func(st feed.State) bool {
		return st.Ready && len(st.Posts) == 3
	})

	viewer.SetTagFilter("tag-0")
	st := waitForFeed(t, viewer.Updates(), func(st feed.State) bool { return len(st.Posts) == 2 })
	for _, p := range st.Posts {
		assert.Contains(t, p.Tags, "tag-0")
	}

	// Selecting a mood filter drops the tag filter.
	viewer.SetMoodFilter("😢 Sad")
	st = waitForFeed(t, viewer.Updates(), func(st feed.State) bool { return len(st.Posts) == 1 })
	assert.Equal(t, "😢 Sad", st.Posts[0].Mood)

	mood, tag := viewer.Filters()
	assert.Equal(t, "😢 Sad", mood)
	assert.Equal(t, "", tag)
}
