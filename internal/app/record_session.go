package app

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/solhaug/tribescore/internal/adapters/sessionrepository"
	"github.com/solhaug/tribescore/internal/domain"
	"github.com/solhaug/tribescore/internal/logging"
	"github.com/solhaug/tribescore/internal/reporting"
)

// NewSessionPlayer is one player's reported result in a session being recorded.
type NewSessionPlayer struct {
	ProfileID     string
	Placement     int
	VictoryPoints *int
	Winner        bool
	Tie           bool
	FirstPlay     bool
	HighScore     bool
	Rating        *int
}

// NewSession is a played game being recorded, before any derived values are
// computed.
type NewSession struct {
	TribeID    string
	GameID     string
	GameName   string
	GameWeight float64
	GameLength int
	PlayedAt   time.Time
	UsesVP     bool
	Players    []NewSessionPlayer
}

type RecordSession = func(ctx context.Context, newSession NewSession) (string, error)

// BuildRecordSession returns a use case that validates a reported session,
// computes each player's score, win contribution and calendar buckets, and
// stores all rows in one transaction. For VP scored sessions with no explicit
// winner flag, winners are derived from the highest victory points.
// Returns the assigned session ID.
func BuildRecordSession(repo sessionrepository.SessionRepository) RecordSession {
	return func(ctx context.Context, newSession NewSession) (string, error) {
		numPlayers := len(newSession.Players)
		if numPlayers < 1 {
			return "", fmt.Errorf("%w: session has no players", domain.ErrInvalidGameInfo)
		}

		players := newSession.Players
		explicitWinner := slices.ContainsFunc(players, func(p NewSessionPlayer) bool {
			return p.Winner
		})
		if newSession.UsesVP && !explicitWinner {
			players = deriveWinnersFromVP(players)
		}

		hasWinner := false
		placements := make([]int, 0, numPlayers)
		for _, player := range players {
			if player.Placement < 1 || player.Placement > numPlayers {
				return "", fmt.Errorf(
					"%w: placement %d out of range for %d players",
					domain.ErrInvalidPlacement, player.Placement, numPlayers,
				)
			}
			placements = append(placements, player.Placement)
			if player.Winner {
				hasWinner = true
			}
		}
		if !hasWinner {
			return "", fmt.Errorf("%w: session has no winner", domain.ErrInvalidPlacement)
		}

		// Placements must form a contiguous ranking from first place.
		// Ties are allowed, so the i-th lowest placement may never exceed i+1.
		slices.Sort(placements)
		for i, placement := range placements {
			if placement > i+1 {
				return "", fmt.Errorf(
					"%w: placements are not contiguous, no player placed %d",
					domain.ErrInvalidPlacement, i+1,
				)
			}
		}

		sessionID := uuid.New().String()
		dateInfo := ComputeDateInfo(newSession.PlayedAt)

		rows := make([]domain.SessionLogRow, 0, numPlayers)
		for _, player := range players {
			score, err := ComputeScore(
				player.Placement,
				numPlayers,
				float64(newSession.GameLength),
				newSession.GameWeight,
			)
			if err != nil {
				reporting.Report(ctx, err, map[string]string{
					"tribeID":   newSession.TribeID,
					"gameID":    newSession.GameID,
					"profileID": player.ProfileID,
				})
				return "", fmt.Errorf("failed to compute score: %w", err)
			}

			rows = append(rows, domain.SessionLogRow{
				SessionID: sessionID,
				PlayedAt:  newSession.PlayedAt,

				GameID:     newSession.GameID,
				GameName:   newSession.GameName,
				GameWeight: newSession.GameWeight,
				GameLength: newSession.GameLength,
				NumPlayers: numPlayers,

				ProfileID: player.ProfileID,
				TribeID:   newSession.TribeID,

				UsesVP:        newSession.UsesVP,
				VictoryPoints: player.VictoryPoints,
				Winner:        player.Winner,
				Placement:     player.Placement,
				Tie:           player.Tie,

				WinContribution: ComputeWinContribution(numPlayers, player.Winner),
				Score:           score,

				FirstPlay: player.FirstPlay,
				HighScore: player.HighScore,
				Rating:    player.Rating,

				Quarter: dateInfo.Quarter,
				Month:   dateInfo.Month,
				Year:    dateInfo.Year,
			})
		}

		err := repo.StoreSession(ctx, rows)
		if err != nil {
			// NOTE: SessionRepository implementations handle their own error reporting
			return "", fmt.Errorf("failed to store session: %w", err)
		}

		logging.FromContext(ctx).InfoContext(ctx, "Recorded session",
			"sessionID", sessionID,
			"tribeID", newSession.TribeID,
			"gameID", newSession.GameID,
			"numPlayers", numPlayers,
		)

		return sessionID, nil
	}
}

// deriveWinnersFromVP marks every player holding the highest reported victory
// points as a winner. The input slice is left untouched. Players without a VP
// value never win; when no player reported VP the slice is returned as is.
func deriveWinnersFromVP(players []NewSessionPlayer) []NewSessionPlayer {
	bestVP := 0
	found := false
	for _, player := range players {
		if player.VictoryPoints == nil {
			continue
		}
		if !found || *player.VictoryPoints > bestVP {
			bestVP = *player.VictoryPoints
			found = true
		}
	}
	if !found {
		return players
	}

	derived := slices.Clone(players)
	for i := range derived {
		derived[i].Winner = derived[i].VictoryPoints != nil && *derived[i].VictoryPoints == bestVP
	}
	return derived
}
