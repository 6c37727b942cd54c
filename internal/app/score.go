package app

import (
	"fmt"
	"math"

	"github.com/solhaug/tribescore/internal/domain"
)

// ComputeScore computes the normalized performance score for one player in
// one session:
//
//	score = (1/position²) × numPlayers^(1/3) × gameLength^(1/4) × gameWeight^(1/4)
//
// rounded to 5 decimal places. Finishing first is rewarded steeply, with
// diminishing boosts for bigger, longer and heavier games.
//
// Inputs are validated rather than clamped: a position or player count below
// one, or a negative length or weight, would otherwise propagate Inf/NaN into
// stored rows.
func ComputeScore(position, numPlayers int, gameLength, gameWeight float64) (float64, error) {
	if position < 1 {
		return 0, fmt.Errorf("%w: position %d", domain.ErrInvalidPlacement, position)
	}
	if numPlayers < 1 {
		return 0, fmt.Errorf("%w: numPlayers %d", domain.ErrInvalidGameInfo, numPlayers)
	}
	if gameLength < 0 {
		return 0, fmt.Errorf("%w: gameLength %f", domain.ErrInvalidGameInfo, gameLength)
	}
	if gameWeight < 0 {
		return 0, fmt.Errorf("%w: gameWeight %f", domain.ErrInvalidGameInfo, gameWeight)
	}

	positionFactor := 1 / math.Pow(float64(position), 2)
	score := positionFactor *
		math.Pow(float64(numPlayers), 1.0/3.0) *
		math.Pow(gameLength, 1.0/4.0) *
		math.Pow(gameWeight, 1.0/4.0)

	return math.Round(score*100_000) / 100_000, nil
}

// ComputeWinContribution returns the fixed-point bonus awarded to winners,
// scaled linearly by table size.
func ComputeWinContribution(numPlayers int, winner bool) int {
	if !winner {
		return 0
	}
	return numPlayers * 50
}
