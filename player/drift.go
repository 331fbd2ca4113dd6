package player

import (
	"math"
	"time"
)

// Correct shrinks the nominal gap to the next message by the amount the wall
// clock has run ahead of the recording. It never returns a negative wait, so a
// late message is sent immediately rather than skipped.
func Correct(nominal, drift int64) int64 {
	if d := nominal - drift; d > 0 {
		return d
	}
	return 0
}

// scaledElapsed converts wall time since the cycle reference to recorded
// milliseconds.
func scaledElapsed(elapsed time.Duration, speed float64) int64 {
	return int64(math.Round(float64(elapsed) / float64(time.Millisecond) * speed))
}

// wallWait converts a recorded gap in milliseconds to wall time.
func wallWait(recordedMs int64, speed float64) time.Duration {
	return time.Duration(float64(recordedMs) * float64(time.Millisecond) / speed)
}
