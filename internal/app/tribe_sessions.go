package app

import (
	"context"
	"fmt"
	"time"

	"github.com/solhaug/tribescore/internal/adapters/sessionrepository"
	"github.com/solhaug/tribescore/internal/domain"
)

type GetTribeSessions = func(ctx context.Context, tribeID string, start, end time.Time) ([]domain.Session, int, error)

// BuildGetTribeSessions returns a use case that fetches a tribe's log rows,
// groups them into sessions, and filters them to the requested window, most
// recent first. The second return value is the number of malformed sessions
// that were dropped.
func BuildGetTribeSessions(sessionRepo sessionrepository.SessionRepository) GetTribeSessions {
	return func(ctx context.Context, tribeID string, start, end time.Time) ([]domain.Session, int, error) {
		rows, err := sessionRepo.GetTribeRows(ctx, tribeID)
		if err != nil {
			// NOTE: SessionRepository implementations handle their own error reporting
			return nil, 0, fmt.Errorf("could not get tribe rows: %w", err)
		}

		sessions, rejected := GroupSessions(rows)
		reportRejectedSessions(ctx, tribeID, rejected)

		filtered := FilterSessionsByDate(sessions, start, end)

		// Rows arrive in ascending played-at order; serve newest first
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}

		return filtered, len(rejected), nil
	}
}
