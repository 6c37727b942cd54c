package sessionrepository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
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
	tracer := otel.Tracer("tribescore/sessionrepository/postgres")

	return &Postgres{
		db:     db,
		schema: schema,

		tracer: tracer,
	}
}

type dbSessionLogRow struct {
	ID              string    `db:"id"`
	SessionID       string    `db:"session_id"`
	PlayedAt        time.Time `db:"played_at"`
	GameID          string    `db:"game_id"`
	GameName        string    `db:"game_name"`
	GameWeight      float64   `db:"game_weight"`
	GameLength      int       `db:"game_length"`
	NumPlayers      int       `db:"num_players"`
	ProfileID       string    `db:"profile_id"`
	TribeID         string    `db:"tribe_id"`
	UsesVP          bool      `db:"uses_vp"`
	VictoryPoints   *int      `db:"victory_points"`
	Winner          bool      `db:"winner"`
	Placement       int       `db:"placement"`
	Tie             bool      `db:"tie"`
	WinContribution int       `db:"win_contribution"`
	Score           float64   `db:"score"`
	FirstPlay       bool      `db:"first_play"`
	HighScore       bool      `db:"high_score"`
	Rating          *int      `db:"rating"`
	Quarter         int       `db:"quarter"`
	Month           int       `db:"month"`
	Year            int       `db:"year"`

	ProfileName   string `db:"profile_name"`
	ProfileAvatar string `db:"profile_avatar"`
}

const selectRowColumns = `
	l.id, l.session_id, l.played_at, l.game_id, l.game_name, l.game_weight,
	l.game_length, l.num_players, l.profile_id, l.tribe_id, l.uses_vp,
	l.victory_points, l.winner, l.placement, l.tie, l.win_contribution,
	l.score, l.first_play, l.high_score, l.rating, l.quarter, l.month, l.year,
	coalesce(p.display_name, '') as profile_name,
	coalesce(p.avatar_url, '') as profile_avatar`

func dbRowToDomain(row dbSessionLogRow) domain.SessionLogRow {
	return domain.SessionLogRow{
		SessionID: row.SessionID,
		PlayedAt:  row.PlayedAt,

		GameID:     row.GameID,
		GameName:   row.GameName,
		GameWeight: row.GameWeight,
		GameLength: row.GameLength,
		NumPlayers: row.NumPlayers,

		ProfileID: row.ProfileID,
		TribeID:   row.TribeID,

		UsesVP:        row.UsesVP,
		VictoryPoints: row.VictoryPoints,
		Winner:        row.Winner,
		Placement:     row.Placement,
		Tie:           row.Tie,

		WinContribution: row.WinContribution,
		Score:           row.Score,

		FirstPlay: row.FirstPlay,
		HighScore: row.HighScore,
		Rating:    row.Rating,

		Quarter: row.Quarter,
		Month:   row.Month,
		Year:    row.Year,

		ProfileName:   row.ProfileName,
		ProfileAvatar: row.ProfileAvatar,
	}
}

func (p *Postgres) StoreSession(ctx context.Context, rows []domain.SessionLogRow) error {
	ctx, span := p.tracer.Start(ctx, "Postgres.StoreSession")
	defer span.End()

	if len(rows) == 0 {
		err := fmt.Errorf("no rows to store")
		reporting.Report(ctx, err)
		return err
	}

	sessionID := rows[0].SessionID
	if !strutils.UUIDIsNormalized(sessionID) {
		err := fmt.Errorf("session id is not normalized")
		reporting.Report(ctx, err, map[string]string{
			"sessionID": sessionID,
		})
		return err
	}
	for _, row := range rows {
		if row.SessionID != sessionID {
			err := fmt.Errorf("rows belong to different sessions")
			reporting.Report(ctx, err, map[string]string{
				"sessionID":      sessionID,
				"otherSessionID": row.SessionID,
			})
			return err
		}
		if !strutils.UUIDIsNormalized(row.ProfileID) {
			err := fmt.Errorf("profile id is not normalized")
			reporting.Report(ctx, err, map[string]string{
				"sessionID": sessionID,
				"profileID": row.ProfileID,
			})
			return err
		}
	}

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"sessionID": sessionID,
		})
		return err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		err := fmt.Errorf("failed to set search path: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"sessionID": sessionID,
			"schema":    p.schema,
		})
		return err
	}

	var count int
	err = txx.QueryRowxContext(
		ctx,
		"SELECT COUNT(*) FROM session_logs WHERE session_id = $1",
		sessionID,
	).Scan(&count)
	if err != nil {
		err := fmt.Errorf("failed to check for existing session: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"sessionID": sessionID,
		})
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", domain.ErrSessionAlreadyRecorded, sessionID)
	}

	for _, row := range rows {
		dbID, err := uuid.NewV7()
		if err != nil {
			err := fmt.Errorf("failed to generate db id: %w", err)
			reporting.Report(ctx, err, map[string]string{
				"sessionID": sessionID,
			})
			return err
		}

		_, err = txx.ExecContext(
			ctx,
			`INSERT INTO session_logs (
				id, session_id, played_at, game_id, game_name, game_weight,
				game_length, num_players, profile_id, tribe_id, uses_vp,
				victory_points, winner, placement, tie, win_contribution,
				score, first_play, high_score, rating, quarter, month, year
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
				$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
			)`,
			dbID.String(),
			row.SessionID,
			row.PlayedAt,
			row.GameID,
			row.GameName,
			row.GameWeight,
			row.GameLength,
			row.NumPlayers,
			row.ProfileID,
			row.TribeID,
			row.UsesVP,
			row.VictoryPoints,
			row.Winner,
			row.Placement,
			row.Tie,
			row.WinContribution,
			row.Score,
			row.FirstPlay,
			row.HighScore,
			row.Rating,
			row.Quarter,
			row.Month,
			row.Year,
		)
		if err != nil {
			err := fmt.Errorf("failed to insert session log row: %w", err)
			reporting.Report(ctx, err, map[string]string{
				"sessionID": sessionID,
				"profileID": row.ProfileID,
			})
			return err
		}
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"sessionID": sessionID,
		})
		return err
	}

	return nil
}

func (p *Postgres) GetTribeRows(ctx context.Context, tribeID string) ([]domain.SessionLogRow, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.GetTribeRows")
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

	dbRows := []dbSessionLogRow{}
	err = txx.SelectContext(
		ctx,
		&dbRows,
		fmt.Sprintf(`SELECT %s
			FROM session_logs l
			LEFT JOIN profiles p ON p.id = l.profile_id
			WHERE l.tribe_id = $1
			ORDER BY l.played_at ASC, l.session_id ASC, l.placement ASC`, selectRowColumns),
		tribeID,
	)
	if err != nil {
		err := fmt.Errorf("failed to select tribe rows: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"tribeID": tribeID,
		})
		return nil, err
	}

	rows := make([]domain.SessionLogRow, 0, len(dbRows))
	for _, dbRow := range dbRows {
		rows = append(rows, dbRowToDomain(dbRow))
	}

	return rows, nil
}

func (p *Postgres) GetPlayerRows(ctx context.Context, profileID string) ([]domain.SessionLogRow, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.GetPlayerRows")
	defer span.End()

	if !strutils.UUIDIsNormalized(profileID) {
		err := fmt.Errorf("profile id is not normalized")
		reporting.Report(ctx, err, map[string]string{
			"profileID": profileID,
		})
		return nil, err
	}

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"profileID": profileID,
		})
		return nil, err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		err := fmt.Errorf("failed to set search path: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"profileID": profileID,
			"schema":    p.schema,
		})
		return nil, err
	}

	// All rows of every session the profile participated in, including the
	// other players' rows of those sessions
	dbRows := []dbSessionLogRow{}
	err = txx.SelectContext(
		ctx,
		&dbRows,
		fmt.Sprintf(`SELECT %s
			FROM session_logs l
			LEFT JOIN profiles p ON p.id = l.profile_id
			WHERE l.session_id IN (
				SELECT session_id FROM session_logs WHERE profile_id = $1
			)
			ORDER BY l.played_at ASC, l.session_id ASC, l.placement ASC`, selectRowColumns),
		profileID,
	)
	if err != nil {
		err := fmt.Errorf("failed to select player rows: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"profileID": profileID,
		})
		return nil, err
	}

	rows := make([]domain.SessionLogRow, 0, len(dbRows))
	for _, dbRow := range dbRows {
		rows = append(rows, dbRowToDomain(dbRow))
	}

	return rows, nil
}

var _ SessionRepository = (*Postgres)(nil)
