package domain

import "time"

type TribeMember struct {
	ProfileID   string
	DisplayName string
	AvatarURL   string
	Role        string
	JoinedAt    time.Time

	Stats MemberStats
}

// MemberStats holds the per-member counters computed from a tribe's sessions.
// WinRate is round(Wins/GamesPlayed * 100), or 0 when GamesPlayed is 0.
type MemberStats struct {
	GamesPlayed int
	Wins        int
	WinRate     int
}
