package sessionrepository

import (
	"context"
	"fmt"
	"sync"

	"github.com/solhaug/tribescore/internal/domain"
)

// StubSessionRepository is an in-memory SessionRepository used in tests and
// as a development fallback when no database is available.
type StubSessionRepository struct {
	mutex sync.Mutex
	rows  []domain.SessionLogRow
}

func NewStubSessionRepository() *StubSessionRepository {
	return &StubSessionRepository{}
}

func (s *StubSessionRepository) StoreSession(ctx context.Context, rows []domain.SessionLogRow) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(rows) == 0 {
		return fmt.Errorf("no rows to store")
	}

	for _, existing := range s.rows {
		if existing.SessionID == rows[0].SessionID {
			return fmt.Errorf("%w: %s", domain.ErrSessionAlreadyRecorded, rows[0].SessionID)
		}
	}

	s.rows = append(s.rows, rows...)
	return nil
}

func (s *StubSessionRepository) GetTribeRows(ctx context.Context, tribeID string) ([]domain.SessionLogRow, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rows := make([]domain.SessionLogRow, 0)
	for _, row := range s.rows {
		if row.TribeID == tribeID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *StubSessionRepository) GetPlayerRows(ctx context.Context, profileID string) ([]domain.SessionLogRow, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	participated := make(map[string]bool)
	for _, row := range s.rows {
		if row.ProfileID == profileID {
			participated[row.SessionID] = true
		}
	}

	rows := make([]domain.SessionLogRow, 0)
	for _, row := range s.rows {
		if participated[row.SessionID] {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

var _ SessionRepository = (*StubSessionRepository)(nil)
