package posts

import (
	"errors"

	"Vented/internal/store"
)

var (
	// ErrPostNotFound indicates the requested post doesn't exist
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidMood indicates the mood label is not one of the fixed set
	ErrInvalidMood = errors.New("invalid mood label")

	// ErrNotAuthorized indicates the caller is not the post's author
	ErrNotAuthorized = errors.New("not authorized")
)

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPostNotFound) || store.IsNotFound(err)
}
