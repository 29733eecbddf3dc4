// Package cybersystem defines the pluggable discrete-environment contract
// every scenario (tic-tac-toe, grid world, LED circuit, ...) implements, and
// the in-process registry that stands in for OS dynamic loading.
package cybersystem

import (
	"cyberxp/condition"
	"cyberxp/symbolic"
	"cyberxp/xp"
)

// System is one discrete, symbolically-described environment, expressed as
// a pure function of explicit symbolic state rather than hidden mutable
// fields: ExecuteAction takes a state and returns its successor, the same
// shape as the teacher's get_successor(state, action). This keeps every
// system trivially safe to call from concurrent training workers and
// trivially testable without resetting shared internal state between cases.
type System interface {
	// Name identifies this cyber-system, e.g. for logging and the registry.
	Name() string

	// Initialize registers this system's entity state types and roles into
	// model, and returns the initial environment state (not yet
	// canonicalized; the Assistant interns it through model).
	Initialize(model *symbolic.Model) (*symbolic.EnvironmentState, error)

	// Roles returns the roles registered by Initialize, keyed by role name.
	Roles() map[string]*xp.RoleInfo

	// GetFailureCondition returns a system-wide failure predicate that
	// applies regardless of role, e.g. a shared resource going into a
	// state every role should treat as a loss. Returns the zero
	// Condition when this system has no such notion.
	GetFailureCondition() condition.Condition

	// ExecuteAction applies action to state, returning the resulting state
	// and whether the action was legal. An illegal action reports
	// applied=false and successor is undefined.
	ExecuteAction(state *symbolic.EnvironmentState, action *symbolic.Action) (successor *symbolic.EnvironmentState, applied bool)

	// GetAvailableActions enumerates the actions the named role may take
	// from state. When smartSelection is true, the system may narrow the
	// list with its own heuristics (e.g. forcing a winning move) rather
	// than returning every legal action.
	GetAvailableActions(roleId string, state *symbolic.EnvironmentState, smartSelection bool) []*symbolic.Action

	// SetConfiguration applies a plain-text configuration, reporting
	// success. On failure the system's prior configuration is unchanged.
	SetConfiguration(config string) bool

	// GetConfiguration returns this system's current plain-text configuration.
	GetConfiguration() string

	// ReadEntityConfiguration returns one entity's plain-text configuration.
	ReadEntityConfiguration(entityId string) string

	// WriteEntityConfiguration applies a plain-text configuration to one
	// entity, reporting success.
	WriteEntityConfiguration(entityId, config string) bool

	// ConfigureEntity creates or reconfigures an entity of the given type,
	// reporting success.
	ConfigureEntity(entityId, entityType, config string) bool

	// RemoveEntity removes an entity, reporting success.
	RemoveEntity(entityId string) bool

	// GetSystemInfo returns a human-readable diagnostic rendering of state.
	// infoId selects which view to render; the empty string selects the
	// default.
	GetSystemInfo(state *symbolic.EnvironmentState, infoId string) string
}
