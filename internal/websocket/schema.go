package websocket

import (
	"encoding/json"

	"github.com/studai/studai-backend/internal/model"
	"github.com/studai/studai-backend/internal/quiz"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionStart  Action = "start"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload is every client frame. Answers is only read for submit and
// is parsed with quiz.ParseSubmission.
type RequestPayload struct {
	Action  Action          `json:"action"`
	Answers json.RawMessage `json:"answers,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventJoined     Event = "joined"
	EventLeft       Event = "left"
	EventStarted    Event = "started"
	EventScored     Event = "scored"
	EventScoreboard Event = "scoreboard"
	EventFinished   Event = "finished"
	EventResult     Event = "result"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// BattleEvent is broadcast on the battle channel and forwarded to every
// connection as is, except started which is expanded per connection.
type BattleEvent struct {
	Event      Event                   `json:"event"`
	UserID     int                     `json:"user_id,omitempty"`
	Username   string                  `json:"username,omitempty"`
	Players    int                     `json:"players,omitempty"`
	Score      *int                    `json:"score,omitempty"`
	Total      int                     `json:"total,omitempty"`
	Scoreboard []model.ScoreboardEntry `json:"scoreboard,omitempty"`
}

// StartedResponse carries the question set. Matching items are shuffled
// independently for each connection.
type StartedResponse struct {
	Event     Event               `json:"event"`
	QuizID    int64               `json:"quiz_id"`
	Title     string              `json:"title"`
	Questions []quiz.SafeQuestion `json:"questions"`
}

// ResultResponse is sent only to the player who submitted.
type ResultResponse struct {
	Event      Event   `json:"event"`
	Percentage float64 `json:"percentage"`
	*quiz.Result
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
