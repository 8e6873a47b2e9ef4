// Package dashboard turns server dashboard snapshots into render-ready view
// state and drives the clock-in/clock-out actions of a networked client.
package dashboard

import (
	"timesheets.service/internal/contract"
)

// Phase is the lifecycle of one user-triggered action.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Action names a user-triggered call against the API.
type Action string

const (
	ActionRefresh  Action = "refresh"
	ActionClockIn  Action = "clock-in"
	ActionClockOut Action = "clock-out"
)

// Mutating reports whether the action changes server state.
func (a Action) Mutating() bool {
	return a == ActionClockIn || a == ActionClockOut
}

// ActionState is the phase of an action plus the failure reason when Phase is Failed.
type ActionState struct {
	Phase  Phase
	Reason string
}

// State is everything a client screen holds. Snapshot is the last dashboard
// confirmed by the server; the remaining fields belong to the UI.
type State struct {
	Snapshot *contract.Dashboard
	Actions  map[Action]ActionState
	Search   string
	Banner   string
}

// Action returns the state of a, Idle when it never ran.
func (s State) Action(a Action) ActionState {
	return s.Actions[a]
}

// Busy reports whether a mutating action is in flight.
func (s State) Busy() bool {
	for a, st := range s.Actions {
		if a.Mutating() && st.Phase == InFlight {
			return true
		}
	}
	return false
}

// Loading reports whether no snapshot has arrived yet and none has failed.
func (s State) Loading() bool {
	return s.Snapshot == nil && s.Action(ActionRefresh).Phase != Failed
}

func (s State) clone() State {
	out := s
	out.Actions = make(map[Action]ActionState, len(s.Actions))
	for k, v := range s.Actions {
		out.Actions[k] = v
	}
	if s.Snapshot != nil {
		snap := copySnapshot(*s.Snapshot)
		out.Snapshot = &snap
	}
	return out
}

func (s *State) set(a Action, phase Phase, reason string) {
	if s.Actions == nil {
		s.Actions = make(map[Action]ActionState)
	}
	s.Actions[a] = ActionState{Phase: phase, Reason: reason}
}
