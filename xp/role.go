package xp

import (
	"sync"

	"cyberxp/condition"
	"cyberxp/symbolic"
)

// EnvironmentStateInfo is the cached classification of one environment
// state under one role: its terminal/in-progress result and its reward.
type EnvironmentStateInfo struct {
	Result ActionResult
	Reward float64
}

// RoleInfo holds one role's evaluation rules (success/failure/deadlock
// conditions and reward shaping) plus a classification cache keyed by
// canonical environment state pointer, so repeated visits to the same
// state are not re-evaluated.
type RoleInfo struct {
	RoleName          string
	SuccessCondition  condition.Condition
	FailureCondition  condition.Condition
	DeadlockCondition condition.Condition
	RewardRules       StateRewardRules

	mu        sync.Mutex
	cache     map[*symbolic.EnvironmentState]EnvironmentStateInfo
	overrides map[*symbolic.EnvironmentState]bool
}

// NewRoleInfo builds a role's evaluation rules.
func NewRoleInfo(name string, success, failure, deadlock condition.Condition, rewards StateRewardRules) *RoleInfo {
	return &RoleInfo{
		RoleName:          name,
		SuccessCondition:  success,
		FailureCondition:  failure,
		DeadlockCondition: deadlock,
		RewardRules:       rewards,
		cache:             map[*symbolic.EnvironmentState]EnvironmentStateInfo{},
		overrides:         map[*symbolic.EnvironmentState]bool{},
	}
}

func (r *RoleInfo) classify(state *symbolic.EnvironmentState) EnvironmentStateInfo {
	env := state.ConditionEnvironment()
	var result ActionResult
	switch {
	case r.FailureCondition.Evaluate(env):
		result = Failed
	case r.SuccessCondition.Evaluate(env):
		result = Succeeded
	case r.DeadlockCondition.Evaluate(env):
		result = Deadlock
	default:
		result = InProgress
	}
	return EnvironmentStateInfo{Result: result, Reward: r.RewardRules.Evaluate(result, env)}
}

// GetStateInfo classifies state, serving from cache when possible.
func (r *RoleInfo) GetStateInfo(state *symbolic.EnvironmentState) EnvironmentStateInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.cache[state]; ok {
		return info
	}
	info := r.classify(state)
	r.cache[state] = info
	return info
}

// OverrideStateResult forces state's classification to result, e.g. when a
// system-level failure condition (tracked outside any single role) should
// take precedence over the role's own evaluation. The override is
// memoized exactly like an ordinary classification.
func (r *RoleInfo) OverrideStateResult(state *symbolic.EnvironmentState, result ActionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	env := state.ConditionEnvironment()
	r.cache[state] = EnvironmentStateInfo{
		Result: result,
		Reward: r.RewardRules.Evaluate(result, env),
	}
	r.overrides[state] = true
}

// IsOverridden reports whether state's cached classification was forced via
// OverrideStateResult rather than computed from the role's own conditions.
func (r *RoleInfo) IsOverridden(state *symbolic.EnvironmentState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overrides[state]
}

// Clear empties the classification cache. Called when the owning model's
// canonical states are cleared, since cached classifications are keyed by
// pointer identity into that registry.
func (r *RoleInfo) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = map[*symbolic.EnvironmentState]EnvironmentStateInfo{}
	r.overrides = map[*symbolic.EnvironmentState]bool{}
}
