package reactions

import "errors"

var (
	// ErrInvalidType indicates the reaction type is not one of the fixed set
	ErrInvalidType = errors.New("invalid reaction type")

	// ErrPostNotFound indicates the reacted-to post doesn't exist
	ErrPostNotFound = errors.New("post not found")
)
