package app

import "time"

// DateInfo is the calendar bucket a played date falls in, used for grouping
// sessions by quarter/month/year. Month is zero-based (January == 0), which
// is what makes the quarter arithmetic below land on 1..4.
type DateInfo struct {
	Quarter int
	Month   int
	Year    int
}

func ComputeDateInfo(playedAt time.Time) DateInfo {
	month0 := int(playedAt.Month()) - 1
	return DateInfo{
		Quarter: (month0 + 3) / 3,
		Month:   month0,
		Year:    playedAt.Year(),
	}
}
