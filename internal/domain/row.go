package domain

import "time"

// SessionLogRow is one player's participation record in one played game.
// All rows sharing a SessionID belong to the same play of the same game,
// and a well-formed session has exactly NumPlayers rows.
type SessionLogRow struct {
	SessionID string
	PlayedAt  time.Time

	GameID     string
	GameName   string
	GameWeight float64
	GameLength int
	NumPlayers int

	ProfileID string
	TribeID   string

	UsesVP        bool
	VictoryPoints *int
	Winner        bool
	Placement     int
	Tie           bool

	WinContribution int
	Score           float64

	FirstPlay bool
	HighScore bool
	Rating    *int

	// Calendar buckets computed from PlayedAt at record time
	Quarter int
	Month   int
	Year    int

	// Denormalized profile display fields, joined in by the storage layer
	ProfileName   string
	ProfileAvatar string
}
