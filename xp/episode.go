package xp

import "cyberxp/symbolic"

// Transition is one state -> action -> state step. All three fields are
// canonical (interned) pointers into the owning model, so equality reduces
// to pointer comparison.
type Transition struct {
	StartState  *symbolic.EnvironmentState
	EndState    *symbolic.EnvironmentState
	ActionTaken *symbolic.Action
}

// Equal compares t and other by pointer identity of their canonical fields.
func (t Transition) Equal(other Transition) bool {
	return t.StartState == other.StartState &&
		t.EndState == other.EndState &&
		t.ActionTaken == other.ActionTaken
}

// Episode is a recorded sequence of transitions from an initial state to a
// terminal (or abandoned) state, along with its outcome.
type Episode struct {
	TransitionSequence []Transition
	InitialState       *symbolic.EnvironmentState
	LastState          *symbolic.EnvironmentState
	Result             ActionResult
	Performance        float64
	RepetitionsCount   int
}

// NewEpisode builds an episode from a completed transition sequence.
func NewEpisode(transitions []Transition, result ActionResult, performance float64) *Episode {
	var initial, last *symbolic.EnvironmentState
	if len(transitions) > 0 {
		initial = transitions[0].StartState
		last = transitions[len(transitions)-1].EndState
	}
	return &Episode{
		TransitionSequence: transitions,
		InitialState:       initial,
		LastState:          last,
		Result:             result,
		Performance:        performance,
		RepetitionsCount:   1,
	}
}

// Equal reports whether e and other record the identical episode: same
// initial/last state, same result, and the same transition sequence,
// transition by transition.
func (e *Episode) Equal(other *Episode) bool {
	if e.InitialState != other.InitialState || e.LastState != other.LastState {
		return false
	}
	if e.Result != other.Result {
		return false
	}
	if len(e.TransitionSequence) != len(other.TransitionSequence) {
		return false
	}
	for i := range e.TransitionSequence {
		if !e.TransitionSequence[i].Equal(other.TransitionSequence[i]) {
			return false
		}
	}
	return true
}
