package monitor

import "time"

// Millisecond ticks in uint32 space, the way embedded millis() counters
// work. The counter wraps roughly every 49.7 days, so intervals must be
// computed with TicksDiff rather than plain comparison.

var tickEpoch = time.Now()

// TicksMs returns the current monotonic time in milliseconds, truncated to
// uint32 tick space.
func TicksMs() uint32 {
	return uint32(time.Since(tickEpoch) / time.Millisecond)
}

// TicksDiff returns now minus then in tick space, treating the uint32 ring
// as a signed interval. The result is correct across counter wraparound:
// then=0xFFFFFFF8, now=0x00000004 yields 12, not a huge value. A negative
// result means now is older than then.
func TicksDiff(now, then uint32) int32 {
	return int32(now - then)
}
