package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/solhaug/tribescore/internal/adapters/cache"
	"github.com/solhaug/tribescore/internal/adapters/sessionrepository"
	"github.com/solhaug/tribescore/internal/adapters/triberepository"
	"github.com/solhaug/tribescore/internal/domain"
	"github.com/solhaug/tribescore/internal/logging"
	"github.com/solhaug/tribescore/internal/reporting"
)

type GetTribeLeaderboard = func(ctx context.Context, tribeID string) ([]domain.TribeMember, error)

// BuildGetTribeLeaderboard returns a use case that computes a tribe's
// leaderboard from freshly fetched rows: members joined with per-member
// stats, ranked by wins, then win rate. Results are cached per tribe ID.
func BuildGetTribeLeaderboard(
	leaderboardCache cache.Cache[[]domain.TribeMember],
	tribeRepo triberepository.TribeRepository,
	sessionRepo sessionrepository.SessionRepository,
) GetTribeLeaderboard {
	return func(ctx context.Context, tribeID string) ([]domain.TribeMember, error) {
		leaderboard, err := cache.GetOrCreate(ctx, leaderboardCache, tribeID, func() ([]domain.TribeMember, error) {
			return computeTribeLeaderboard(ctx, tribeRepo, sessionRepo, tribeID)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to cache.GetOrCreate leaderboard: %w", err)
		}

		return leaderboard, nil
	}
}

func computeTribeLeaderboard(
	ctx context.Context,
	tribeRepo triberepository.TribeRepository,
	sessionRepo sessionrepository.SessionRepository,
	tribeID string,
) ([]domain.TribeMember, error) {
	members, err := tribeRepo.GetMembers(ctx, tribeID)
	if err != nil {
		// NOTE: TribeRepository implementations handle their own error reporting
		return nil, fmt.Errorf("could not get tribe members: %w", err)
	}

	rows, err := sessionRepo.GetTribeRows(ctx, tribeID)
	if err != nil {
		// NOTE: SessionRepository implementations handle their own error reporting
		return nil, fmt.Errorf("could not get tribe rows: %w", err)
	}

	sessions, rejected := GroupSessions(rows)
	reportRejectedSessions(ctx, tribeID, rejected)

	leaderboard := ComputeMemberStats(members, sessions)

	slices.SortStableFunc(leaderboard, func(a, b domain.TribeMember) int {
		if a.Stats.Wins != b.Stats.Wins {
			return b.Stats.Wins - a.Stats.Wins
		}
		return b.Stats.WinRate - a.Stats.WinRate
	})

	return leaderboard, nil
}

// Incomplete sessions are filtered out of every read path, but a partial
// write is still a data-quality problem worth surfacing.
func reportRejectedSessions(ctx context.Context, tribeID string, rejected []RejectedSession) {
	if len(rejected) == 0 {
		return
	}

	logger := logging.FromContext(ctx)
	for _, r := range rejected {
		logger.WarnContext(ctx, "Dropped malformed session",
			"tribeID", tribeID,
			"sessionID", r.SessionID,
			"declared", r.Declared,
			"actual", r.Actual,
		)
	}

	reporting.Report(ctx,
		fmt.Errorf("dropped %d malformed session(s)", len(rejected)),
		map[string]string{
			"tribeID": tribeID,
		},
	)
}
