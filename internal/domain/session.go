package domain

import "time"

// Session is one played instance of a board game, reshaped from the flat
// per-player log rows sharing a session ID.
type Session struct {
	SessionID  string
	PlayedAt   time.Time
	GameID     string
	GameName   string
	GameWeight float64
	GameLength int
	NumPlayers int
	TribeID    string

	// One entry per participating player, in insertion order.
	// len(Players) == NumPlayers once the session is well-formed.
	Players []SessionLogRow
}
