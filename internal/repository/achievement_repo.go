package repository

import (
	"fmt"
	"time"

	"mathclash/internal/database"
)

// AchievementRepository handles unlocked-badge rows
type AchievementRepository struct {
	db *database.DB
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *database.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// ListIDs returns the ids of every badge the user has unlocked
func (r *AchievementRepository) ListIDs(userID int64) ([]string, error) {
	rows, err := r.db.Query("SELECT achievement_id FROM achievements WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Unlock records a badge for the user. Unlocks are monotonic; an already
// recorded badge is left untouched.
func (r *AchievementRepository) Unlock(userID int64, achievementID string) error {
	var exists int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM achievements WHERE user_id = ? AND achievement_id = ?",
		userID, achievementID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check achievement: %w", err)
	}
	if exists > 0 {
		return nil
	}

	_, err = r.db.Exec(
		"INSERT INTO achievements (user_id, achievement_id, achieved_at) VALUES (?, ?, ?)",
		userID, achievementID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to unlock achievement: %w", err)
	}
	return nil
}
