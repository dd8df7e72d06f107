package models

import "time"

// Mode is the game mode of a session
type Mode string

const (
	ModeIdle        Mode = "idle"
	ModePractice    Mode = "practice"
	ModeCompetition Mode = "competition"
)

// PendingQuestion is the in-flight question of a session. The ID is
// consumed on the first accepted answer so a stale answer button cannot
// be scored twice.
type PendingQuestion struct {
	ID      string
	Text    string
	Answer  int
	Choices []int
}

// Session is the ephemeral per-user game state. It is owned exclusively
// by the session state machine, lives only in memory, and is lost on
// process restart; it holds no scoring history.
type Session struct {
	UserID     int64
	Mode       Mode
	Difficulty string
	Pending    *PendingQuestion

	QuestionStartedAt time.Time

	CompetitionStartedAt time.Time
	CompetitionDuration  time.Duration
	SolvedCount          int
}

// AwaitingAnswer reports whether a question is pending
func (s *Session) AwaitingAnswer() bool {
	return s.Pending != nil
}

// CompetitionRemaining returns the competition time left at now,
// clamped to zero for display
func (s *Session) CompetitionRemaining(now time.Time) time.Duration {
	remaining := s.CompetitionDuration - now.Sub(s.CompetitionStartedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
