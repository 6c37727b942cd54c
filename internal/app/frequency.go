package app

import (
	"math"
	"slices"

	"github.com/solhaug/tribescore/internal/domain"
)

// TopOpponents counts how many sessions the viewing user shared with each
// distinct opponent, most frequent first.
//
// Rows belonging to the viewing user are skipped. Opponents are tracked in
// first-seen order and the sort is stable, so equal counts keep that order.
func TopOpponents(viewingProfileID string, rows []domain.SessionLogRow) []domain.OpponentCount {
	counts := make(map[string]*domain.OpponentCount)
	order := make([]string, 0)

	for _, row := range rows {
		if row.ProfileID == viewingProfileID {
			continue
		}

		opponent, seen := counts[row.ProfileID]
		if !seen {
			displayName := row.ProfileName
			if displayName == "" {
				displayName = unknownProfileName
			}
			opponent = &domain.OpponentCount{
				ProfileID:   row.ProfileID,
				DisplayName: displayName,
				AvatarURL:   row.ProfileAvatar,
			}
			counts[row.ProfileID] = opponent
			order = append(order, row.ProfileID)
		}
		opponent.Count++
	}

	ranked := make([]domain.OpponentCount, 0, len(order))
	for _, profileID := range order {
		ranked = append(ranked, *counts[profileID])
	}

	slices.SortStableFunc(ranked, func(a, b domain.OpponentCount) int {
		return b.Count - a.Count
	})

	return ranked
}

// TopGames counts the viewing user's plays per distinct game, most played
// first, with the win rate for each game.
//
// NOTE: The win rate here uses ceiling rounding, unlike ComputeMemberStats
// which rounds half away from zero. Inherited divergence; do not "fix" one
// without the other.
func TopGames(viewingProfileID string, rows []domain.SessionLogRow) []domain.GameCount {
	counts := make(map[string]*domain.GameCount)
	order := make([]string, 0)

	for _, row := range rows {
		if row.ProfileID != viewingProfileID {
			continue
		}

		game, seen := counts[row.GameID]
		if !seen {
			game = &domain.GameCount{
				GameID:   row.GameID,
				GameName: row.GameName,
			}
			counts[row.GameID] = game
			order = append(order, row.GameID)
		}
		game.Count++
		if row.Winner {
			game.Wins++
		}
	}

	ranked := make([]domain.GameCount, 0, len(order))
	for _, gameID := range order {
		game := *counts[gameID]
		game.WinRate = ceiledWinRate(game.Wins, game.Count)
		ranked = append(ranked, game)
	}

	slices.SortStableFunc(ranked, func(a, b domain.GameCount) int {
		return b.Count - a.Count
	})

	return ranked
}

func ceiledWinRate(wins, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Ceil(float64(wins) / float64(count) * 100))
}
