package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/solhaug/tribescore/internal/adapters/cache"
	"github.com/solhaug/tribescore/internal/adapters/sessionrepository"
	"github.com/solhaug/tribescore/internal/adapters/triberepository"
	"github.com/solhaug/tribescore/internal/app"
	"github.com/solhaug/tribescore/internal/domain"
	"github.com/solhaug/tribescore/internal/domaintest"
	"github.com/stretchr/testify/require"
)

func TestGetTribeLeaderboard(t *testing.T) {
	t.Parallel()

	playedAt := time.Date(2024, time.August, 15, 20, 0, 0, 0, time.UTC)

	storeTwoPlayerSession := func(t *testing.T, repo *sessionrepository.StubSessionRepository, tribeID, winnerID, loserID string) {
		t.Helper()

		sessionID := domaintest.NewUUID(t)
		require.NoError(t, repo.StoreSession(context.Background(), []domain.SessionLogRow{
			domaintest.NewRowBuilder(sessionID, playedAt).
				WithTribeID(tribeID).WithProfileID(winnerID).WithPlacement(1).Build(),
			domaintest.NewRowBuilder(sessionID, playedAt).
				WithTribeID(tribeID).WithProfileID(loserID).WithPlacement(2).Build(),
		}))
	}

	t.Run("ranks members by wins then win rate", func(t *testing.T) {
		t.Parallel()

		tribeID := domaintest.NewUUID(t)
		alice := domaintest.NewUUID(t)
		bob := domaintest.NewUUID(t)

		tribeRepo := triberepository.NewStubTribeRepository()
		tribeRepo.AddTribe(tribeID, []domain.TribeMember{
			{ProfileID: alice, DisplayName: "Alice"},
			{ProfileID: bob, DisplayName: "Bob"},
		})

		sessionRepo := sessionrepository.NewStubSessionRepository()
		storeTwoPlayerSession(t, sessionRepo, tribeID, alice, bob)
		storeTwoPlayerSession(t, sessionRepo, tribeID, alice, bob)
		storeTwoPlayerSession(t, sessionRepo, tribeID, bob, alice)

		getTribeLeaderboard := app.BuildGetTribeLeaderboard(
			cache.NewBasicCache[[]domain.TribeMember](),
			tribeRepo,
			sessionRepo,
		)

		leaderboard, err := getTribeLeaderboard(context.Background(), tribeID)
		require.NoError(t, err)
		require.Len(t, leaderboard, 2)

		require.Equal(t, "Alice", leaderboard[0].DisplayName)
		require.Equal(t, domain.MemberStats{GamesPlayed: 3, Wins: 2, WinRate: 67}, leaderboard[0].Stats)

		require.Equal(t, "Bob", leaderboard[1].DisplayName)
		require.Equal(t, domain.MemberStats{GamesPlayed: 3, Wins: 1, WinRate: 33}, leaderboard[1].Stats)
	})

	t.Run("unknown tribe", func(t *testing.T) {
		t.Parallel()

		getTribeLeaderboard := app.BuildGetTribeLeaderboard(
			cache.NewBasicCache[[]domain.TribeMember](),
			triberepository.NewStubTribeRepository(),
			sessionrepository.NewStubSessionRepository(),
		)

		_, err := getTribeLeaderboard(context.Background(), domaintest.NewUUID(t))
		require.ErrorIs(t, err, domain.ErrTribeNotFound)
	})

	t.Run("serves cached result until invalidated", func(t *testing.T) {
		t.Parallel()

		tribeID := domaintest.NewUUID(t)
		alice := domaintest.NewUUID(t)
		bob := domaintest.NewUUID(t)

		tribeRepo := triberepository.NewStubTribeRepository()
		tribeRepo.AddTribe(tribeID, []domain.TribeMember{
			{ProfileID: alice, DisplayName: "Alice"},
			{ProfileID: bob, DisplayName: "Bob"},
		})

		sessionRepo := sessionrepository.NewStubSessionRepository()

		getTribeLeaderboard := app.BuildGetTribeLeaderboard(
			cache.NewBasicCache[[]domain.TribeMember](),
			tribeRepo,
			sessionRepo,
		)

		leaderboard, err := getTribeLeaderboard(context.Background(), tribeID)
		require.NoError(t, err)
		require.Equal(t, 0, leaderboard[0].Stats.GamesPlayed)

		// New sessions don't show up until the cache entry expires
		storeTwoPlayerSession(t, sessionRepo, tribeID, alice, bob)

		leaderboard, err = getTribeLeaderboard(context.Background(), tribeID)
		require.NoError(t, err)
		require.Equal(t, 0, leaderboard[0].Stats.GamesPlayed)
	})

	t.Run("malformed sessions are excluded from stats", func(t *testing.T) {
		t.Parallel()

		tribeID := domaintest.NewUUID(t)
		alice := domaintest.NewUUID(t)

		tribeRepo := triberepository.NewStubTribeRepository()
		tribeRepo.AddTribe(tribeID, []domain.TribeMember{
			{ProfileID: alice, DisplayName: "Alice"},
		})

		sessionRepo := sessionrepository.NewStubSessionRepository()
		sessionID := domaintest.NewUUID(t)
		// Declares 3 players but only has 1 row
		require.NoError(t, sessionRepo.StoreSession(context.Background(), []domain.SessionLogRow{
			domaintest.NewRowBuilder(sessionID, playedAt).
				WithTribeID(tribeID).WithProfileID(alice).WithNumPlayers(3).WithPlacement(1).Build(),
		}))

		getTribeLeaderboard := app.BuildGetTribeLeaderboard(
			cache.NewBasicCache[[]domain.TribeMember](),
			tribeRepo,
			sessionRepo,
		)

		leaderboard, err := getTribeLeaderboard(context.Background(), tribeID)
		require.NoError(t, err)
		require.Equal(t, domain.MemberStats{}, leaderboard[0].Stats)
	})
}
