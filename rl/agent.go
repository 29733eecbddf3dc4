// Package rl defines the pluggable agent contract and a reference tabular
// Q-learning implementation.
package rl

import (
	"cyberxp/symbolic"
	"cyberxp/xp"
)

// ActionsProvider enumerates the actions available from a given state. An
// Agent needs this to bootstrap a successor state's value without itself
// depending on the cybersystem package; the Assistant, which holds both the
// agent and the cyber-system, supplies it.
type ActionsProvider interface {
	AvailableActions(state *symbolic.EnvironmentState) []*symbolic.Action
}

// Configuration is a tagged agent configuration. Concrete agents type-assert
// the concrete configuration type in SetConfiguration and report Kind() when
// rejecting one.
type Configuration interface {
	Kind() string
}

// Agent chooses actions and learns from recorded experience. Reference
// implementations live alongside this interface (QLearningAgent); callers
// needing a different algorithm implement the same contract.
type Agent interface {
	// ChooseAction picks one of availableActions at state, using exp's
	// recorded state-action values. Returns nil if availableActions is empty.
	ChooseAction(state *symbolic.EnvironmentState, availableActions []*symbolic.Action, exp *xp.Experience) *symbolic.Action

	// GetMaxValue returns the best recorded state-action value among
	// availableActions at state, or 0 if there are none.
	GetMaxValue(state *symbolic.EnvironmentState, availableActions []*symbolic.Action, exp *xp.Experience) float64

	// Learn updates exp's state-action values from episode. A successful
	// episode is backed up in full: the one-step Q-update is applied to every
	// transition in reverse order, so each one bootstraps from the value just
	// learned for its successor. Any other result learns only from the
	// episode's final transition (one-step Q-learning), since anything
	// earlier has already been learned from in a prior call.
	Learn(exp *xp.Experience, role *xp.RoleInfo, episode *xp.Episode, actions ActionsProvider)

	// SetConfiguration applies cfg, returning an error if cfg is not a
	// configuration this agent understands.
	SetConfiguration(cfg Configuration) error
}
