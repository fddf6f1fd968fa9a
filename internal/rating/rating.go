// Package rating implements the player skill representation and the
// time-expanding matchmaking window used to decide eligibility.
package rating

import (
	"math"
	"time"
)

// Rating is a player's skill estimate, supplied by the external Directory
// service once per matchmaking join.
type Rating struct {
	Mean      float64
	Deviation float64
}

// maxWindow caps how wide the matchmaking window can grow regardless of
// how long a player has waited.
const maxWindow = 500.0

// Window returns the maximum admissible rating gap for a player who has
// been waiting for elapsed. It grows by 100 every 6 seconds and saturates
// at maxWindow:
//
//	W(elapsed) = min(500, floor((elapsed_s/6 + 1) * 100))
func Window(elapsed time.Duration) float64 {
	elapsedSeconds := elapsed.Seconds()
	w := math.Floor((elapsedSeconds/6+1)*100)
	if w > maxWindow {
		return maxWindow
	}
	return w
}

// Gap returns the absolute rating difference between two players.
func Gap(a, b Rating) float64 {
	return math.Abs(a.Mean - b.Mean)
}
