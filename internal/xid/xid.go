package xid

import "time"

// FromTime derives an id from now in Unix milliseconds, stepping forward past
// any value taken reports as already in use.
func FromTime(now time.Time, taken func(int64) bool) int64 {
	id := now.UnixMilli()
	for taken != nil && taken(id) {
		id++
	}
	return id
}

// Next returns one past the largest id, or 1 for an empty collection.
func Next[T ~int | ~int64](ids []T) T {
	var highest T
	for _, id := range ids {
		if id > highest {
			highest = id
		}
	}
	return highest + 1
}
