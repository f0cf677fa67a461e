// Package rating holds the Elo arithmetic used for doubles results.
package rating

import "math"

const (
	// KFactor is the maximum rating swing a single match can produce.
	KFactor = 32.0
	// DefaultRating is assigned to newly registered players.
	DefaultRating = 1000.0
)

// Expected returns the probability that a side rated a beats a side rated b.
func Expected(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/400.0))
}

// Change computes the deltas for the winning and losing side of a finished match.
// The winner always scores 1 and the loser 0, so deltaWinner >= 0 and deltaLoser <= 0.
// Values are never rounded: callers store them as they are.
func Change(winnerAvg, loserAvg float64) (deltaWinner, deltaLoser float64) {
	expectedWinner := Expected(winnerAvg, loserAvg)
	expectedLoser := Expected(loserAvg, winnerAvg)

	deltaWinner = KFactor * (1.0 - expectedWinner)
	deltaLoser = KFactor * (0.0 - expectedLoser)
	return deltaWinner, deltaLoser
}

// Average returns the arithmetic mean of ratings, or 0 for an empty side.
func Average(ratings ...float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}
