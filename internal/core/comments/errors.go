package comments

import (
	"errors"

	"Vented/internal/store"
)

var (
	// ErrCommentNotFound indicates the requested comment doesn't exist
	ErrCommentNotFound = errors.New("comment not found")

	// ErrParentNotFound indicates the parent post doesn't exist
	ErrParentNotFound = errors.New("parent post not found")
)

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrParentNotFound) ||
		store.IsNotFound(err)
}
