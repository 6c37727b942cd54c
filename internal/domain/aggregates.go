package domain

// OpponentCount is the number of shared sessions with one distinct opponent.
type OpponentCount struct {
	Count       int
	ProfileID   string
	DisplayName string
	AvatarURL   string
}

// GameCount is the number of plays of one distinct game, with the viewing
// user's win rate for it.
//
// NOTE: WinRate here is ceil(Wins/Count * 100), while MemberStats.WinRate
// rounds. The divergence is inherited behavior; keep both as-is until they
// are reconciled.
type GameCount struct {
	Count    int
	Wins     int
	WinRate  int
	GameID   string
	GameName string
}
