package models

import "time"

// MinRankedAttempts is the qualifying floor: users with fewer answered
// questions are excluded from every rank and leaderboard computation.
const MinRankedAttempts = 5

// User holds a player's persistent aggregate statistics
type User struct {
	ID            int64
	Username      string
	DisplayName   string
	ChatID        int64
	TotalCorrect  int
	TotalAttempts int
	TotalPoints   int
	FastCorrect   int
	Level         string
	LastActivity  time.Time
}

// Identity carries the display identity supplied by the transport with each event
type Identity struct {
	Username    string
	DisplayName string
}

// Accuracy returns the percentage of correct answers (0 when no attempts)
func (u *User) Accuracy() float64 {
	if u.TotalAttempts == 0 {
		return 0
	}
	return float64(u.TotalCorrect) * 100.0 / float64(u.TotalAttempts)
}

// Qualified reports whether the user is eligible for ranking
func (u *User) Qualified() bool {
	return u.TotalAttempts >= MinRankedAttempts
}

// Name returns the best display name available, the original falls back
// from display name to username to a numbered placeholder
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return ""
}

// RatingEntry is one row of the global leaderboard
type RatingEntry struct {
	UserID        int64
	Username      string
	DisplayName   string
	TotalPoints   int
	TotalCorrect  int
	TotalAttempts int
	Accuracy      float64
}

// DailyEntry is one row of the daily leaderboard
type DailyEntry struct {
	UserID      int64
	Username    string
	DisplayName string
	Points      int
}

// BroadcastTarget identifies a user reachable by the broadcast workers
type BroadcastTarget struct {
	UserID int64
	ChatID int64
}
