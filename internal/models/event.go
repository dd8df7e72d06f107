package models

// EventType tags an inbound transport event
type EventType string

const (
	EventStart           EventType = "start"
	EventHelp            EventType = "help"
	EventRating          EventType = "rating"
	EventTop             EventType = "top"
	EventDaily           EventType = "daily"
	EventAchievements    EventType = "achievements"
	EventMainMenu        EventType = "main_menu"
	EventDifficulty      EventType = "difficulty"
	EventCompetitionMenu EventType = "competition_menu"
	EventCompetition     EventType = "competition_start"
	EventAnswer          EventType = "answer"
	EventNext            EventType = "next"
	EventFinish          EventType = "finish_competition"
	EventResetConfirm    EventType = "reset_confirm"
	EventReset           EventType = "reset"
)

// Event is the tagged variant delivered by the transport. It is decoded
// exactly once at the transport boundary; the state machine never parses
// payload strings.
type Event struct {
	Type EventType `json:"type"`

	// Difficulty for difficulty/next events
	Difficulty string `json:"difficulty,omitempty"`

	// DurationSec for competition_start events
	DurationSec int `json:"duration_sec,omitempty"`

	// QuestionID and Answer for answer events
	QuestionID string `json:"question_id,omitempty"`
	Answer     int    `json:"answer,omitempty"`
}

// Choice is one selectable button of a reply; pressing it makes the
// transport deliver Event back to the engine
type Choice struct {
	Label string `json:"label"`
	Event Event  `json:"event"`
}

// Reply is the render intent returned to the transport
type Reply struct {
	Text    string   `json:"text"`
	Choices []Choice `json:"choices,omitempty"`
}
