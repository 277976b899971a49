// internal/game/types.go
//
// Core type definitions for the word scramble engine.
// Defines:
//   - State:    session lifecycle (idle/active).
//   - Outcome:  what happened to one submission.
//   - Result:   value returned by Session.Submit.
//   - Snapshot: read-only copy of a session for hosts.

package game

import "time"

// State is the lifecycle position of a Session.
type State int

const (
	// Idle sessions have no root word and reject submissions.
	Idle State = iota
	// Active sessions have a root word and accept submissions.
	Active
)

// String returns the display value for the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	}
	return "?"
}

// Outcome describes how a submission was handled.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted" // word added, score increased
	OutcomeIgnored  Outcome = "ignored"  // too short or the root word itself; nothing reported
	OutcomeRejected Outcome = "rejected" // used by hosts when Submit returns a rejection error
)

// Result is returned by Submit for submissions that were not rejected.
type Result struct {
	Outcome Outcome
	Word    string // normalized submission
	Score   int    // session score after the submission
}

// Snapshot is a point-in-time copy of a Session.
type Snapshot struct {
	ID        string
	State     State
	RootWord  string
	UsedWords []string // newest first
	Score     int
	Language  string
	StartedAt time.Time
}
