package blobs

import "time"

// SetClock pins the service clock so tests get deterministic keys.
func SetClock(s Service, now func() time.Time) {
	s.(*blobService).now = now
}
