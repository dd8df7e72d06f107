package game

import (
	"testing"

	"mathclash/internal/models"
)

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestEvaluateCumulativeBadges(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		want    []string
	}{
		{name: "none yet", correct: 4, want: nil},
		{name: "first badge", correct: 5, want: []string{"first_5"}},
		{name: "two badges", correct: 12, want: []string{"first_5", "first_10"}},
		{name: "all cumulative", correct: 150, want: []string{"first_5", "first_10", "first_25", "first_50", "first_100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &models.User{TotalCorrect: tt.correct, TotalAttempts: tt.correct}
			got := Evaluate(u)
			if len(got) != len(tt.want) {
				t.Fatalf("Evaluate() = %v, want %v", got, tt.want)
			}
			for _, id := range tt.want {
				if !contains(got, id) {
					t.Errorf("Evaluate() missing %s", id)
				}
			}
		})
	}
}

func TestEvaluateSpeedBadge(t *testing.T) {
	u := &models.User{TotalCorrect: 9, TotalAttempts: 9, FastCorrect: 9}
	if contains(Evaluate(u), "speed_10") {
		t.Error("speed_10 should not unlock at 9 fast answers")
	}

	u.FastCorrect = 10
	if !contains(Evaluate(u), "speed_10") {
		t.Error("speed_10 should unlock at 10 fast answers")
	}
}

func TestEvaluateAccuracyBadge(t *testing.T) {
	tests := []struct {
		name     string
		correct  int
		attempts int
		want     bool
	}{
		{name: "perfect but tiny sample", correct: 1, attempts: 1, want: false},
		{name: "perfect below sample floor", correct: 19, attempts: 19, want: false},
		{name: "exactly 90 at sample floor", correct: 18, attempts: 20, want: true},
		{name: "below 90", correct: 17, attempts: 20, want: false},
		{name: "large accurate sample", correct: 95, attempts: 100, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &models.User{TotalCorrect: tt.correct, TotalAttempts: tt.attempts}
			got := contains(Evaluate(u), "accuracy_90")
			if got != tt.want {
				t.Errorf("accuracy_90 unlocked = %v, want %v (%d/%d)", got, tt.want, tt.correct, tt.attempts)
			}
		})
	}
}

func TestBadgeCatalog(t *testing.T) {
	if len(Badges) != 7 {
		t.Fatalf("catalog has %d badges, want 7", len(Badges))
	}

	seen := make(map[string]bool)
	for _, b := range Badges {
		if b.ID == "" || b.Name == "" || b.Description == "" {
			t.Errorf("badge %+v has empty fields", b)
		}
		if seen[b.ID] {
			t.Errorf("duplicate badge id %s", b.ID)
		}
		seen[b.ID] = true
	}

	if _, ok := BadgeByID("first_5"); !ok {
		t.Error("BadgeByID(first_5) not found")
	}
	if _, ok := BadgeByID("nope"); ok {
		t.Error("BadgeByID(nope) should not be found")
	}
}
