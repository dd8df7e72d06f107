package models

import (
	"testing"
	"time"
)

func TestUserAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		correct  int
		attempts int
		want     float64
	}{
		{name: "no attempts", correct: 0, attempts: 0, want: 0},
		{name: "all correct", correct: 10, attempts: 10, want: 100},
		{name: "half correct", correct: 5, attempts: 10, want: 50},
		{name: "one of three", correct: 1, attempts: 3, want: 100.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{TotalCorrect: tt.correct, TotalAttempts: tt.attempts}
			if got := u.Accuracy(); got != tt.want {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserQualified(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		want     bool
	}{
		{name: "below floor", attempts: 4, want: false},
		{name: "at floor", attempts: 5, want: true},
		{name: "above floor", attempts: 100, want: true},
		{name: "new user", attempts: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{TotalAttempts: tt.attempts}
			if got := u.Qualified(); got != tt.want {
				t.Errorf("Qualified() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "display name wins", user: User{DisplayName: "Анна", Username: "anna42"}, want: "Анна"},
		{name: "falls back to username", user: User{Username: "anna42"}, want: "anna42"},
		{name: "empty identity", user: User{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionAwaitingAnswer(t *testing.T) {
	s := Session{UserID: 1, Mode: ModePractice}
	if s.AwaitingAnswer() {
		t.Error("AwaitingAnswer() should be false with no pending question")
	}

	s.Pending = &PendingQuestion{ID: "q1", Answer: 42}
	if !s.AwaitingAnswer() {
		t.Error("AwaitingAnswer() should be true with a pending question")
	}
}

func TestCompetitionRemaining(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := Session{
		Mode:                 ModeCompetition,
		CompetitionStartedAt: start,
		CompetitionDuration:  60 * time.Second,
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{name: "just started", now: start, want: 60 * time.Second},
		{name: "halfway", now: start.Add(30 * time.Second), want: 30 * time.Second},
		{name: "expired clamps to zero", now: start.Add(2 * time.Minute), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.CompetitionRemaining(tt.now); got != tt.want {
				t.Errorf("CompetitionRemaining() = %v, want %v", got, tt.want)
			}
		})
	}
}
