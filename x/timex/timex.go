package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Seconds converts a duration to floating-point seconds, the unit the
// pulse envelope maths works in.
func Seconds(d time.Duration) float64 { return float64(d) / float64(time.Second) }
