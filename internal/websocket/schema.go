package websocket

import "github.com/zeroclasses/zero-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionFlag     Action = "flag"
	ActionNavigate Action = "navigate"
	ActionSubmit   Action = "submit"
	ActionState    Action = "state"
	ActionPing     Action = "ping"
)

// Request is any client message. Which fields are read depends on Action:
// answer uses Question and Option, flag uses Question, navigate uses Index
// or Step.
type Request struct {
	Action   Action `json:"action"`
	Question *int   `json:"question,omitempty"`
	Option   *int   `json:"option,omitempty"`
	Index    *int   `json:"index,omitempty"`
	Step     string `json:"step,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState     Event = "state"
	EventTick      Event = "tick"
	EventSubmitted Event = "submitted"
	EventAbandoned Event = "abandoned"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// StateResponse carries the full attempt after a change.
type StateResponse struct {
	Event   Event       `json:"event"`
	Attempt interface{} `json:"attempt"`
}

type TickResponse struct {
	Event     Event `json:"event"`
	Remaining int   `json:"remaining_seconds"`
}

type SubmittedResponse struct {
	Event  Event             `json:"event"`
	Result *model.QuizResult `json:"result"`
}

type AbandonedResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
