package game

import "mathclash/internal/models"

// Badge describes one entry of the fixed achievement catalog
type Badge struct {
	ID          string
	Name        string
	Description string
}

// Badges is the full catalog in display order. It is program data, not
// stored; only unlocks are persisted.
var Badges = []Badge{
	{ID: "first_5", Name: "🚀 Новичок", Description: "Решить 5 примеров"},
	{ID: "first_10", Name: "⭐ Ученик", Description: "Решить 10 примеров"},
	{ID: "first_25", Name: "🏆 Чемпион", Description: "Решить 25 примеров"},
	{ID: "first_50", Name: "👑 Мастер", Description: "Решить 50 примеров"},
	{ID: "first_100", Name: "🎯 Легенда", Description: "Решить 100 примеров"},
	{ID: "speed_10", Name: "⚡ Скорострел", Description: "Ответить на 10 вопросов быстрее 5 секунд"},
	{ID: "accuracy_90", Name: "🎯 Снайпер", Description: "Достичь точности 90%"},
}

// correct-answer thresholds for the cumulative badges
var correctThresholds = []struct {
	id      string
	correct int
}{
	{"first_5", 5},
	{"first_10", 10},
	{"first_25", 25},
	{"first_50", 50},
	{"first_100", 100},
}

// speedBadgeCount is the number of sub-5-second correct answers for the speed badge
const speedBadgeCount = 10

// minAccuracyAttempts keeps the accuracy badge from unlocking on a
// trivially small sample.
const minAccuracyAttempts = 20

// BadgeByID returns the catalog entry for an id
func BadgeByID(id string) (Badge, bool) {
	for _, b := range Badges {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// Evaluate returns the ids of every badge the user's aggregate stats
// satisfy. Callers subtract the already-unlocked set; unlocks are
// monotonic and never revoked even if accuracy later drops.
func Evaluate(u *models.User) []string {
	var ids []string
	for _, t := range correctThresholds {
		if u.TotalCorrect >= t.correct {
			ids = append(ids, t.id)
		}
	}
	if u.FastCorrect >= speedBadgeCount {
		ids = append(ids, "speed_10")
	}
	if u.TotalAttempts >= minAccuracyAttempts && u.Accuracy() >= 90 {
		ids = append(ids, "accuracy_90")
	}
	return ids
}
