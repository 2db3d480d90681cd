package agent

import (
	"time"

	"github.com/tbxark/cardioagent/types"
)

// Session is the state of one conversation.
type Session struct {
	ID             string       `json:"id"`
	Step           types.Step   `json:"step"`
	Record         types.Record `json:"record"`
	LatestQuestion string       `json:"latest_question,omitempty"`
	Closed         bool         `json:"closed,omitempty"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{ID: id, Step: types.StepIdle, LatestQuestion: ""}
}

// Restart clears the record and returns the session to idle.
func (s *Session) Restart() {
	s.Step = types.StepIdle
	s.Record = types.Record{}
	s.Closed = false
}

type Request struct {
	UserInput string
	// ResetStep is set when the client reports no conversation step.
	ResetStep bool
}

type Response struct {
	Message string     `json:"message"`
	Step    types.Step `json:"step"`
	// Ended is true after the user left the assessment.
	Ended bool `json:"ended,omitempty"`
}
