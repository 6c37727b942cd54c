package app

import (
	"context"
	"fmt"

	"github.com/solhaug/tribescore/internal/adapters/sessionrepository"
	"github.com/solhaug/tribescore/internal/domain"
)

type GetTopOpponents = func(ctx context.Context, profileID string) ([]domain.OpponentCount, error)

func BuildGetTopOpponents(sessionRepo sessionrepository.SessionRepository) GetTopOpponents {
	return func(ctx context.Context, profileID string) ([]domain.OpponentCount, error) {
		rows, err := sessionRepo.GetPlayerRows(ctx, profileID)
		if err != nil {
			// NOTE: SessionRepository implementations handle their own error reporting
			return nil, fmt.Errorf("could not get player rows: %w", err)
		}

		return TopOpponents(profileID, rows), nil
	}
}

type GetTopGames = func(ctx context.Context, profileID string) ([]domain.GameCount, error)

func BuildGetTopGames(sessionRepo sessionrepository.SessionRepository) GetTopGames {
	return func(ctx context.Context, profileID string) ([]domain.GameCount, error) {
		rows, err := sessionRepo.GetPlayerRows(ctx, profileID)
		if err != nil {
			// NOTE: SessionRepository implementations handle their own error reporting
			return nil, fmt.Errorf("could not get player rows: %w", err)
		}

		return TopGames(profileID, rows), nil
	}
}
