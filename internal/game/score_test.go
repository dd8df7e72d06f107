package game

import (
	"testing"
	"time"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		correct bool
		latency time.Duration
		want    int
	}{
		{name: "instant answer", correct: true, latency: 0, want: 50},
		{name: "one second", correct: true, latency: time.Second, want: 40},
		{name: "half second", correct: true, latency: 500 * time.Millisecond, want: 45},
		{name: "fractional decisecond rounds down", correct: true, latency: 3550 * time.Millisecond, want: 14},
		{name: "just under a second", correct: true, latency: 999 * time.Millisecond, want: 40},
		{name: "four seconds hits floor", correct: true, latency: 4 * time.Second, want: 10},
		{name: "ten seconds stays at floor", correct: true, latency: 10 * time.Second, want: 10},
		{name: "minute stays at floor", correct: true, latency: time.Minute, want: 10},
		{name: "negative latency clamps to max", correct: true, latency: -3 * time.Second, want: 50},
		{name: "wrong answer", correct: false, latency: 0, want: 0},
		{name: "wrong answer slow", correct: false, latency: time.Minute, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.correct, tt.latency); got != tt.want {
				t.Errorf("Score(%v, %v) = %d, want %d", tt.correct, tt.latency, got, tt.want)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		points int
		want   string
	}{
		{0, "🎒 Новичок"},
		{99, "🎒 Новичок"},
		{100, "🎓 Ученик"},
		{250, "🎓 Ученик"},
		{499, "🎓 Ученик"},
		{500, "🥉 Бронза"},
		{999, "🥉 Бронза"},
		{1000, "🥈 Серебро"},
		{1999, "🥈 Серебро"},
		{2000, "🥇 Золото"},
		{4999, "🥇 Золото"},
		{5000, "💎 Алмаз"},
		{1000000, "💎 Алмаз"},
	}

	for _, tt := range tests {
		if got := Level(tt.points); got != tt.want {
			t.Errorf("Level(%d) = %q, want %q", tt.points, got, tt.want)
		}
	}
}
