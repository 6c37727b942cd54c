package sessionrepository

import (
	"context"

	"github.com/solhaug/tribescore/internal/domain"
)

type SessionRepository interface {
	// StoreSession stores all log rows of one session in a single
	// transaction. Returns domain.ErrSessionAlreadyRecorded if rows for the
	// session ID already exist.
	StoreSession(ctx context.Context, rows []domain.SessionLogRow) error

	// GetTribeRows returns all log rows belonging to a tribe, joined with
	// profile display fields, in (played_at, session_id, placement) order.
	GetTribeRows(ctx context.Context, tribeID string) ([]domain.SessionLogRow, error)

	// GetPlayerRows returns the log rows of every session the profile
	// participated in, including the other players' rows of those sessions.
	GetPlayerRows(ctx context.Context, profileID string) ([]domain.SessionLogRow, error)
}
