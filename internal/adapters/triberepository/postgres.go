package triberepository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/solhaug/tribescore/internal/domain"
	"github.com/solhaug/tribescore/internal/reporting"
	"github.com/solhaug/tribescore/internal/strutils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Postgres struct {
	db     *sqlx.DB
	schema string

	tracer trace.Tracer
}

func NewPostgres(db *sqlx.DB, schema string) *Postgres {
	tracer := otel.Tracer("tribescore/triberepository/postgres")

	return &Postgres{
		db:     db,
		schema: schema,

		tracer: tracer,
	}
}

type dbTribeMember struct {
	ProfileID   string    `db:"profile_id"`
	DisplayName string    `db:"display_name"`
	AvatarURL   string    `db:"avatar_url"`
	Role        string    `db:"role"`
	JoinedAt    time.Time `db:"joined_at"`
}

func (p *Postgres) GetMembers(ctx context.Context, tribeID string) ([]domain.TribeMember, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.GetMembers")
	defer span.End()

	if !strutils.UUIDIsNormalized(tribeID) {
		err := fmt.Errorf("tribe id is not normalized")
		reporting.Report(ctx, err, map[string]string{
			"tribeID": tribeID,
		})
		return nil, err
	}

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"tribeID": tribeID,
		})
		return nil, err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		err := fmt.Errorf("failed to set search path: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"tribeID": tribeID,
			"schema":  p.schema,
		})
		return nil, err
	}

	var count int
	err = txx.QueryRowxContext(ctx, "SELECT COUNT(*) FROM tribes WHERE id = $1", tribeID).Scan(&count)
	if err != nil {
		err := fmt.Errorf("failed to check tribe existence: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"tribeID": tribeID,
		})
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrTribeNotFound, tribeID)
	}

	dbMembers := []dbTribeMember{}
	err = txx.SelectContext(
		ctx,
		&dbMembers,
		`SELECT
			m.profile_id,
			coalesce(p.display_name, '') as display_name,
			coalesce(p.avatar_url, '') as avatar_url,
			m.role,
			m.joined_at
		FROM tribe_members m
		LEFT JOIN profiles p ON p.id = m.profile_id
		WHERE m.tribe_id = $1
		ORDER BY m.joined_at ASC`,
		tribeID,
	)
	if err != nil {
		err := fmt.Errorf("failed to select tribe members: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"tribeID": tribeID,
		})
		return nil, err
	}

	members := make([]domain.TribeMember, 0, len(dbMembers))
	for _, dbMember := range dbMembers {
		members = append(members, domain.TribeMember{
			ProfileID:   dbMember.ProfileID,
			DisplayName: dbMember.DisplayName,
			AvatarURL:   dbMember.AvatarURL,
			Role:        dbMember.Role,
			JoinedAt:    dbMember.JoinedAt,
		})
	}

	return members, nil
}

var _ TribeRepository = (*Postgres)(nil)
