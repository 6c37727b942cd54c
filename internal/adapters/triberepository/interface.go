package triberepository

import (
	"context"

	"github.com/solhaug/tribescore/internal/domain"
)

type TribeRepository interface {
	// GetMembers returns the tribe's members joined with their profile
	// display fields and membership role, in joined-at order.
	// Returns domain.ErrTribeNotFound for unknown tribes.
	GetMembers(ctx context.Context, tribeID string) ([]domain.TribeMember, error)
}
