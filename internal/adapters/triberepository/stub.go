package triberepository

import (
	"context"
	"fmt"
	"sync"

	"github.com/solhaug/tribescore/internal/domain"
)

// StubTribeRepository is an in-memory TribeRepository used in tests and as a
// development fallback when no database is available.
type StubTribeRepository struct {
	mutex   sync.Mutex
	members map[string][]domain.TribeMember
}

func NewStubTribeRepository() *StubTribeRepository {
	return &StubTribeRepository{
		members: make(map[string][]domain.TribeMember),
	}
}

func (s *StubTribeRepository) AddTribe(tribeID string, members []domain.TribeMember) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.members[tribeID] = members
}

func (s *StubTribeRepository) GetMembers(ctx context.Context, tribeID string) ([]domain.TribeMember, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	members, ok := s.members[tribeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTribeNotFound, tribeID)
	}
	return members, nil
}

var _ TribeRepository = (*StubTribeRepository)(nil)
