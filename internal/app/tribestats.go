package app

import (
	"math"

	"github.com/solhaug/tribescore/internal/domain"
)

const (
	unknownDisplayName = "Anonymous User"
	unknownProfileName = "Unknown"
)

// ComputeMemberStats folds a tribe's sessions into per-member counters.
//
// Every member is scanned against every session's player list; a matching
// profile ID counts as a game played, and additionally as a win when the
// player's winner flag is set. O(members × sessions × playersPerSession),
// which is fine at single-tribe scale.
//
// The input slices are not mutated; a new member slice is returned.
func ComputeMemberStats(members []domain.TribeMember, sessions []domain.Session) []domain.TribeMember {
	withStats := make([]domain.TribeMember, 0, len(members))

	for _, member := range members {
		gamesPlayed := 0
		wins := 0

		for _, session := range sessions {
			for _, player := range session.Players {
				if player.ProfileID != member.ProfileID {
					continue
				}
				gamesPlayed++
				if player.Winner {
					wins++
				}
			}
		}

		member.Stats = domain.MemberStats{
			GamesPlayed: gamesPlayed,
			Wins:        wins,
			WinRate:     roundedWinRate(wins, gamesPlayed),
		}
		if member.DisplayName == "" {
			member.DisplayName = unknownDisplayName
		}

		withStats = append(withStats, member)
	}

	return withStats
}

func roundedWinRate(wins, gamesPlayed int) int {
	if gamesPlayed == 0 {
		return 0
	}
	return int(math.Round(float64(wins) / float64(gamesPlayed) * 100))
}
