package domaintest

import (
	"time"

	"github.com/solhaug/tribescore/internal/domain"
)

type rowBuilder struct {
	row *domain.SessionLogRow
}

func (rb *rowBuilder) WithProfileID(profileID string) *rowBuilder {
	rb.row.ProfileID = profileID
	return rb
}

func (rb *rowBuilder) WithProfileName(profileName string) *rowBuilder {
	rb.row.ProfileName = profileName
	return rb
}

func (rb *rowBuilder) WithTribeID(tribeID string) *rowBuilder {
	rb.row.TribeID = tribeID
	return rb
}

func (rb *rowBuilder) WithGame(gameID, gameName string) *rowBuilder {
	rb.row.GameID = gameID
	rb.row.GameName = gameName
	return rb
}

func (rb *rowBuilder) WithNumPlayers(numPlayers int) *rowBuilder {
	rb.row.NumPlayers = numPlayers
	return rb
}

func (rb *rowBuilder) WithPlacement(placement int) *rowBuilder {
	rb.row.Placement = placement
	rb.row.Winner = placement == 1
	return rb
}

func (rb *rowBuilder) WithWinner(winner bool) *rowBuilder {
	rb.row.Winner = winner
	return rb
}

func (rb *rowBuilder) WithScore(score float64) *rowBuilder {
	rb.row.Score = score
	return rb
}

func (rb *rowBuilder) Build() domain.SessionLogRow {
	return *rb.row
}

func NewRowBuilder(sessionID string, playedAt time.Time) *rowBuilder {
	row := &domain.SessionLogRow{
		SessionID:  sessionID,
		PlayedAt:   playedAt,
		GameID:     "11111111-1111-1111-1111-111111111111",
		GameName:   "Terraforming Mars",
		GameWeight: 3.24,
		GameLength: 120,
		NumPlayers: 2,
		Placement:  1,
		Winner:     true,
		Quarter:    int(playedAt.Month()-1)/3 + 1,
		Month:      int(playedAt.Month()) - 1,
		Year:       playedAt.Year(),
	}
	return &rowBuilder{
		row: row,
	}
}
