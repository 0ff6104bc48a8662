package profiles

import "errors"

var (
	// ErrSelfBlock indicates an attempt to block one's own id
	ErrSelfBlock = errors.New("cannot block yourself")
)
