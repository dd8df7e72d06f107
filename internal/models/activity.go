package models

import "time"

// ActivityRecord is one append-only scoring event, written for every
// correct answer and used only for windowed (daily) aggregation
type ActivityRecord struct {
	ID           int64
	UserID       int64
	Points       int
	ActivityTime time.Time
}
