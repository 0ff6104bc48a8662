package meditations

import "errors"

var ErrMeditationNotFound = errors.New("meditation not found")

// IsNotFound reports whether err indicates a missing meditation.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMeditationNotFound)
}
