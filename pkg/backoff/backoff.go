package backoff

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialJitter returns base*2^(attempt-1) capped at max, with +/- 20%
// jitter so racing retriers spread out instead of colliding again.
func ExponentialJitter(base, max time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	mul := math.Pow(2, float64(attempt-1))
	d := min(time.Duration(float64(base)*mul), max)

	j := time.Duration(float64(d) * 0.2)
	if j <= 0 {
		return d
	}
	return d - j + time.Duration(rand.Int63n(int64(2*j)))
}
