package comments

import (
	"time"

	"Vented/internal/store"
)

// Comment is a reply under a vent. Comments are never deleted; a post's
// commentCount only ever grows.
type Comment struct {
	CreatedAt   time.Time
	EditedAt    *time.Time
	ID          string
	PostID      string
	AuthorID    string
	Content     string
	ReportCount int64
}

// FromDocument maps a store document onto a Comment.
func FromDocument(doc store.Document) *Comment {
	c := &Comment{
		ID:          doc.ID,
		PostID:      store.AsString(doc.Data["postId"]),
		AuthorID:    store.AsString(doc.Data["userId"]),
		Content:     store.AsString(doc.Data["content"]),
		ReportCount: store.AsInt(doc.Data["reportCount"]),
		CreatedAt:   doc.CreatedAt,
	}
	if edited := store.AsTime(doc.Data["lastEdited"]); !edited.IsZero() {
		c.EditedAt = &edited
	}
	return c
}

// FromSnapshot maps a full query snapshot onto comments, preserving order.
func FromSnapshot(docs []store.Document) []*Comment {
	out := make([]*Comment, len(docs))
	for i, doc := range docs {
		out[i] = FromDocument(doc)
	}
	return out
}
