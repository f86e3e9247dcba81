package model

import "math"

// Level maps cumulative XP to an integer level:
// level = floor(sqrt(xp / 100)) + 1. Total over non-negative inputs and
// monotonic non-decreasing; negative inputs clamp to level 1.
func Level(totalXP int64) int {
	if totalXP <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(totalXP)/100.0))) + 1
}
