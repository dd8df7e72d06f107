package game

import (
	"math"
	"time"
)

// FastAnswerThreshold is the latency under which a correct answer counts
// toward the speed badge.
const FastAnswerThreshold = 5 * time.Second

// QuickPraiseThreshold is the latency under which the feedback message
// gets the extra speed praise.
const QuickPraiseThreshold = 3 * time.Second

// Score maps answer correctness and latency to points. A wrong answer is
// worth 0. A correct answer is worth floor(50 − 10·latencySeconds),
// floored at 10, so fractional deciseconds round down; negative latency
// (clock anomaly) clamps to 0 so the value never exceeds 50. Callers
// measure latency with time.Since, which uses the monotonic clock.
func Score(correct bool, latency time.Duration) int {
	if !correct {
		return 0
	}
	if latency < 0 {
		latency = 0
	}
	points := int(math.Floor(50 - latency.Seconds()*10))
	if points < 10 {
		points = 10
	}
	return points
}
