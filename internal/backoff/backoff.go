// Package backoff provides the delay draws used for request pacing and the
// retry fallback schedule.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Strategy computes a wait duration bounded by a ceiling.
type Strategy interface {
	Delay(ceiling time.Duration) time.Duration
}

// floorFactor places the lower bound of a uniform draw at roughly 27% of the
// ceiling (0.1·e), so jittered waits never collapse to zero.
const floorFactor = 0.1 * math.E

// Uniform draws uniformly between floorFactor·ceiling and ceiling.
type Uniform struct{}

func (Uniform) Delay(ceiling time.Duration) time.Duration {
	if ceiling <= 0 {
		return 0
	}
	lo := floorFactor * float64(ceiling)
	return time.Duration(lo + rand.Float64()*(float64(ceiling)-lo))
}

// Fixed waits for exactly the ceiling.
type Fixed struct{}

func (Fixed) Delay(ceiling time.Duration) time.Duration {
	if ceiling <= 0 {
		return 0
	}
	return ceiling
}
