package models

import "time"

// Achievement is an unlocked badge row; at most one per (user, badge)
type Achievement struct {
	UserID        int64
	AchievementID string
	AchievedAt    time.Time
}
