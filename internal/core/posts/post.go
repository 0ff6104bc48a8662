package posts

import (
	"time"

	"Vented/internal/store"
)

// Collection is the store path vents are written under.
const Collection = "vents"

// CommentsPath returns the comments subcollection path for a post.
func CommentsPath(postID string) string {
	return Collection + "/" + postID + "/comments"
}

// ReactionsPath returns the reactions subcollection path for a post. Each
// reaction document's id is the reacting user's id, which is what makes
// "at most one reaction per user per post" hold structurally.
func ReactionsPath(postID string) string {
	return Collection + "/" + postID + "/reactions"
}

// Moods is the fixed set of mood labels a vent can carry. The empty string
// (no mood) is also valid.
var Moods = []string{"😊 Happy", "😢 Sad", "😬 Anxious", "🙏 Grateful", "😡 Angry"}

// ValidMood reports whether mood is empty or one of the fixed labels.
func ValidMood(mood string) bool {
	if mood == "" {
		return true
	}
	for _, m := range Moods {
		if m == mood {
			return true
		}
	}
	return false
}

// Post is an anonymous vent. Reactions maps reaction type to the count of
// current reactions of that type; a key is present only while its count is
// positive.
type Post struct {
	CreatedAt    time.Time
	EditedAt     *time.Time
	Reactions    map[string]int64
	ID           string
	AuthorID     string
	Content      string
	Mood         string
	ImageURL     string
	Tags         []string
	CommentCount int64
	ReportCount  int64
}

// CreatePostRequest carries the caller-supplied fields of a new vent.
// Non-blank content is the caller's contract; it is not re-validated here.
type CreatePostRequest struct {
	Content  string
	Mood     string
	ImageURL string
	Tags     []string
}

// FromDocument maps a store document onto a Post.
func FromDocument(doc store.Document) *Post {
	p := &Post{
		ID:           doc.ID,
		AuthorID:     store.AsString(doc.Data["userId"]),
		Content:      store.AsString(doc.Data["content"]),
		Mood:         store.AsString(doc.Data["mood"]),
		ImageURL:     store.AsString(doc.Data["imageUrl"]),
		Tags:         store.AsStrings(doc.Data["tags"]),
		Reactions:    store.AsIntMap(doc.Data["reactions"]),
		CommentCount: store.AsInt(doc.Data["commentCount"]),
		ReportCount:  store.AsInt(doc.Data["reportCount"]),
		CreatedAt:    doc.CreatedAt,
	}
	if edited := store.AsTime(doc.Data["lastEdited"]); !edited.IsZero() {
		p.EditedAt = &edited
	}
	return p
}

// FromSnapshot maps a full query snapshot onto posts, preserving order.
func FromSnapshot(docs []store.Document) []*Post {
	out := make([]*Post, len(docs))
	for i, doc := range docs {
		out[i] = FromDocument(doc)
	}
	return out
}
