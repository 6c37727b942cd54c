package app

import (
	"github.com/solhaug/tribescore/internal/domain"
)

// RejectedSession describes a session whose row count did not match the
// declared player count, e.g. because a multi-row insert only partially
// succeeded.
type RejectedSession struct {
	SessionID string
	Declared  int
	Actual    int
}

// GroupSessions groups flat per-player log rows into sessions.
//
// Groups appear in first-seen order of their session ID, and rows within a
// group keep their input order. A group is valid only when it has exactly the
// number of rows its first row declares in NumPlayers; incomplete or
// over-full groups are returned in the rejected list instead of being
// silently discarded, so callers can log or report them. Consumers serve
// only the valid sessions.
func GroupSessions(rows []domain.SessionLogRow) ([]domain.Session, []RejectedSession) {
	grouped := make(map[string][]domain.SessionLogRow)
	order := make([]string, 0)

	for _, row := range rows {
		if _, seen := grouped[row.SessionID]; !seen {
			order = append(order, row.SessionID)
		}
		grouped[row.SessionID] = append(grouped[row.SessionID], row)
	}

	valid := make([]domain.Session, 0, len(order))
	rejected := []RejectedSession{}

	for _, sessionID := range order {
		group := grouped[sessionID]
		first := group[0]

		if len(group) != first.NumPlayers {
			rejected = append(rejected, RejectedSession{
				SessionID: sessionID,
				Declared:  first.NumPlayers,
				Actual:    len(group),
			})
			continue
		}

		valid = append(valid, domain.Session{
			SessionID:  sessionID,
			PlayedAt:   first.PlayedAt,
			GameID:     first.GameID,
			GameName:   first.GameName,
			GameWeight: first.GameWeight,
			GameLength: first.GameLength,
			NumPlayers: first.NumPlayers,
			TribeID:    first.TribeID,
			Players:    group,
		})
	}

	return valid, rejected
}
