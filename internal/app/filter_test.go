package app_test

import (
	"testing"
	"time"

	"github.com/solhaug/tribescore/internal/app"
	"github.com/solhaug/tribescore/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestFilterSessionsByDate(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time {
		return time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC)
	}

	sessions := []domain.Session{
		{SessionID: "first", PlayedAt: day(1)},
		{SessionID: "second", PlayedAt: day(10)},
		{SessionID: "third", PlayedAt: day(20)},
	}

	sessionIDs := func(sessions []domain.Session) []string {
		ids := make([]string, 0, len(sessions))
		for _, session := range sessions {
			ids = append(ids, session.SessionID)
		}
		return ids
	}

	t.Run("bounds are inclusive", func(t *testing.T) {
		t.Parallel()

		filtered := app.FilterSessionsByDate(sessions, day(1), day(10))
		require.Equal(t, []string{"first", "second"}, sessionIDs(filtered))
	})

	t.Run("zero start is unbounded", func(t *testing.T) {
		t.Parallel()

		filtered := app.FilterSessionsByDate(sessions, time.Time{}, day(10))
		require.Equal(t, []string{"first", "second"}, sessionIDs(filtered))
	})

	t.Run("zero end is unbounded", func(t *testing.T) {
		t.Parallel()

		filtered := app.FilterSessionsByDate(sessions, day(10), time.Time{})
		require.Equal(t, []string{"second", "third"}, sessionIDs(filtered))
	})

	t.Run("both zero returns everything", func(t *testing.T) {
		t.Parallel()

		filtered := app.FilterSessionsByDate(sessions, time.Time{}, time.Time{})
		require.Equal(t, []string{"first", "second", "third"}, sessionIDs(filtered))
	})

	t.Run("window matching nothing", func(t *testing.T) {
		t.Parallel()

		filtered := app.FilterSessionsByDate(sessions, day(25), day(30))
		require.Empty(t, filtered)
	})
}
