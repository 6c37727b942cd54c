package app

import (
	"time"

	"github.com/solhaug/tribescore/internal/domain"
)

// FilterSessionsByDate returns the sessions played within [start, end],
// inclusive on both ends. A zero start or end leaves that side unbounded.
// Input order is preserved and the input slice is not mutated.
func FilterSessionsByDate(sessions []domain.Session, start, end time.Time) []domain.Session {
	filtered := make([]domain.Session, 0, len(sessions))
	for _, session := range sessions {
		if !start.IsZero() && session.PlayedAt.Before(start) {
			continue
		}
		if !end.IsZero() && session.PlayedAt.After(end) {
			continue
		}
		filtered = append(filtered, session)
	}
	return filtered
}
