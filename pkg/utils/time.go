package utils

import "time"

// NowNano returns the current UTC time in nanoseconds, the timestamp unit
// used by every stored record.
func NowNano() int64 {
	return time.Now().UTC().UnixNano()
}
