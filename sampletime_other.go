//go:build !windows

package abcalc

import "time"

// A relative TimeStamp with the highest possible precision on the current runtime system.
// Values are only comparable between two calls to SampleTime() within the same process.
type TimeStamp = time.Time

// SampleTime returns a timestamp with the highest possible precision on the current runtime system.
// time.Now carries a monotonic reading, so differences are immune to wall clock changes.
func SampleTime() TimeStamp {
	return time.Now()
}

// DiffTimeStamps returns the nanoseconds between two timestamps. It returns a negative value
// if tLater is actually earlier than tEarlier.
func DiffTimeStamps(tEarlier, tLater TimeStamp) int64 {
	return tLater.Sub(tEarlier).Nanoseconds()
}
