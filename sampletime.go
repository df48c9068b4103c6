package abcalc

import "time"

// elapsedSince returns the time passed since start, measured with the highest precision
// timer of the runtime system.
func elapsedSince(start TimeStamp) time.Duration {
	return time.Duration(DiffTimeStamps(start, SampleTime()))
}
