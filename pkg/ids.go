package pkg

import "time"

// NextMillisID returns the creation time in unix millis, bumped past maxTaken
// so that ids keep increasing even when two are created within the same millisecond.
func NextMillisID(now time.Time, maxTaken int64) int64 {
	id := now.UnixMilli()
	if id <= maxTaken {
		id = maxTaken + 1
	}
	return id
}
