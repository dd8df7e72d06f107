package repository

import (
	"database/sql"
	"fmt"
	"time"

	"mathclash/internal/database"
	"mathclash/internal/game"
	"mathclash/internal/models"
)

// RankingRepository is the persistent Ranking Store: per-user aggregate
// statistics plus the append-only activity log behind the daily board.
type RankingRepository struct {
	db *database.DB
}

// NewRankingRepository creates a new ranking repository
func NewRankingRepository(db *database.DB) *RankingRepository {
	return &RankingRepository{db: db}
}

const userColumns = `id, username, display_name, chat_id, total_correct,
	       total_attempts, total_points, fast_correct, level, last_activity`

// RecordAttempt applies one submitted answer in a single transaction:
// the user row is created on first contact, total_attempts always grows
// by one, and on a correct answer points/fast counter/level/activity log
// are updated together so the attempts ≥ correct invariant holds even
// under concurrent submissions. Returns the updated user.
func (r *RankingRepository) RecordAttempt(userID int64, identity models.Identity, correct bool, points int, fast bool) (*models.User, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var exists int
	if err := tx.QueryRow("SELECT COUNT(*) FROM users WHERE id = ?", userID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if exists == 0 {
		_, err := tx.Exec(`
			INSERT INTO users (id, username, display_name, total_correct, total_attempts, total_points, fast_correct, level, last_activity)
			VALUES (?, ?, ?, 0, 0, 0, 0, ?, ?)
		`, userID, identity.Username, identity.DisplayName, game.Level(0), now)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	if correct {
		fastDelta := 0
		if fast {
			fastDelta = 1
		}
		_, err := tx.Exec(`
			UPDATE users
			SET total_correct = total_correct + 1,
			    total_attempts = total_attempts + 1,
			    total_points = total_points + ?,
			    fast_correct = fast_correct + ?,
			    last_activity = ?
			WHERE id = ?
		`, points, fastDelta, now, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to update stats: %w", err)
		}

		// Level is a pure function of the running total, recompute from it
		var totalPoints int
		if err := tx.QueryRow("SELECT total_points FROM users WHERE id = ?", userID).Scan(&totalPoints); err != nil {
			return nil, fmt.Errorf("failed to read total points: %w", err)
		}
		if _, err := tx.Exec("UPDATE users SET level = ? WHERE id = ?", game.Level(totalPoints), userID); err != nil {
			return nil, fmt.Errorf("failed to update level: %w", err)
		}

		_, err = tx.Exec("INSERT INTO user_activity (user_id, points, activity_time) VALUES (?, ?, ?)", userID, points, now)
		if err != nil {
			return nil, fmt.Errorf("failed to record activity: %w", err)
		}
	} else {
		_, err := tx.Exec(`
			UPDATE users
			SET total_attempts = total_attempts + 1,
			    last_activity = ?
			WHERE id = ?
		`, now, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to update stats: %w", err)
		}
	}

	user, err := scanUser(tx.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit attempt: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by id, or (nil, nil) if absent
func (r *RankingRepository) GetUser(userID int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GlobalRating returns the top-limit qualifying users by points.
// Ties break on user id for deterministic output.
func (r *RankingRepository) GlobalRating(limit int) ([]models.RatingEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, username, display_name, total_points, total_correct, total_attempts
		FROM users
		WHERE total_attempts >= ?
		ORDER BY total_points DESC, id ASC
		LIMIT ?
	`, models.MinRankedAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.RatingEntry
	for rows.Next() {
		var e models.RatingEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.DisplayName, &e.TotalPoints, &e.TotalCorrect, &e.TotalAttempts); err != nil {
			return nil, err
		}
		if e.TotalAttempts > 0 {
			e.Accuracy = float64(e.TotalCorrect) * 100.0 / float64(e.TotalAttempts)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// RankOf returns 1 + the count of qualifying users with strictly more
// points. Users below the qualifying floor (and unknown users) rank 0.
func (r *RankingRepository) RankOf(userID int64) (int, error) {
	var attempts, points int
	err := r.db.QueryRow("SELECT total_attempts, total_points FROM users WHERE id = ?", userID).Scan(&attempts, &points)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if attempts < models.MinRankedAttempts {
		return 0, nil
	}

	var ahead int
	err = r.db.QueryRow(`
		SELECT COUNT(*) FROM users
		WHERE total_attempts >= ? AND total_points > ?
	`, models.MinRankedAttempts, points).Scan(&ahead)
	if err != nil {
		return 0, err
	}
	return ahead + 1, nil
}

// TotalQualifying counts users eligible for ranking
func (r *RankingRepository) TotalQualifying() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE total_attempts >= ?", models.MinRankedAttempts).Scan(&count)
	return count, err
}

// DailyTop sums activity points per user for the current UTC calendar
// day. The day boundary is computed here, in UTC, so every dialect
// compares plain timestamp ranges.
func (r *RankingRepository) DailyTop(limit int, now time.Time) ([]models.DailyEntry, error) {
	dayStart := now.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := r.db.Query(`
		SELECT u.id, u.username, u.display_name, SUM(a.points) AS daily_points
		FROM user_activity a
		JOIN users u ON a.user_id = u.id
		WHERE a.activity_time >= ? AND a.activity_time < ?
		GROUP BY u.id, u.username, u.display_name
		ORDER BY daily_points DESC
		LIMIT ?
	`, dayStart, dayEnd, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DailyEntry
	for rows.Next() {
		var e models.DailyEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.DisplayName, &e.Points); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ResetUser wipes the user's row, activity log and achievements in one
// transaction: either the full wipe happens or none of it does.
func (r *RankingRepository) ResetUser(userID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM user_activity WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM achievements WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete achievements: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM users WHERE id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return tx.Commit()
}

// UpdateChatID stores the transport chat id used by the broadcast tasks.
// A no-op for users that have not answered anything yet.
func (r *RankingRepository) UpdateChatID(userID, chatID int64) error {
	_, err := r.db.Exec("UPDATE users SET chat_id = ? WHERE id = ?", chatID, userID)
	return err
}

// BroadcastTargets lists users reachable by the periodic broadcasts
func (r *RankingRepository) BroadcastTargets() ([]models.BroadcastTarget, error) {
	rows, err := r.db.Query("SELECT id, chat_id FROM users WHERE chat_id <> 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []models.BroadcastTarget
	for rows.Next() {
		var t models.BroadcastTarget
		if err := rows.Scan(&t.UserID, &t.ChatID); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}

	return targets, rows.Err()
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.ChatID,
		&user.TotalCorrect,
		&user.TotalAttempts,
		&user.TotalPoints,
		&user.FastCorrect,
		&user.Level,
		&user.LastActivity,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
