// Package assistant glues one cyber-system, its model and role, a learning
// agent, and a per-goal Experience into the single-step action pipeline and
// the hint/suggestion surface a human or an autonomous loop drives.
package assistant

import (
	"fmt"

	"go.uber.org/zap"

	"cyberxp/cybersystem"
	"cyberxp/rl"
	"cyberxp/symbolic"
	"cyberxp/xp"
)

// ArenaNotifier is the non-owning back-reference an Assistant uses to tell
// its SharedArena about a transition it just recorded. Assistant declares
// this interface itself so that arena (which owns Assistant) can implement
// it without assistant importing arena.
type ArenaNotifier interface {
	NotifyTransition(actor *Assistant, t xp.Transition)
	MultiActor() bool
}

// Assistant drives one role of one cyber-system: choosing actions via its
// Agent, recording transitions and episodes into per-goal Experience, and
// learning from them as they complete.
type Assistant struct {
	ModelName string
	RoleName  string

	System cybersystem.System
	Model  *symbolic.Model
	Role   *xp.RoleInfo
	Agent  rl.Agent

	GoalName    string
	Experiences map[string]*xp.Experience

	arena ArenaNotifier
	log   *zap.SugaredLogger

	initialState       *symbolic.EnvironmentState
	currentState       *symbolic.EnvironmentState
	pendingTransitions []xp.Transition
	lastAction         *symbolic.Action

	// deadlockActions records, per state, the actions already known to
	// lead nowhere from it: a forced deadlock (no actions left to try)
	// or a detected loop (whether or not an alternative action existed)
	// both mark the responsible action here, so it is pruned from future
	// choices at that state instead of being retried forever.
	deadlockActions map[*symbolic.EnvironmentState][]*symbolic.Action

	// learn gates whether TakeAction's episode-so-far is fed to Agent.Learn.
	// AutonomousAgent sets this to false for a JustAct run, so a frozen
	// policy can be evaluated without mutating the Q-table.
	learn bool
}

// New builds an Assistant for one role of sys, bound to model, evaluated by
// role, and driven by agent. The assistant starts with no current goal; call
// SetCurrentGoal before TakeAction.
func New(sys cybersystem.System, model *symbolic.Model, role *xp.RoleInfo, agent rl.Agent, log *zap.SugaredLogger) *Assistant {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Assistant{
		ModelName:   model.Name(),
		RoleName:    role.RoleName,
		System:      sys,
		Model:       model,
		Role:        role,
		Agent:       agent,
		Experiences: map[string]*xp.Experience{},
		log:         log,
		learn:       true,
	}
}

// SetLearn enables or disables Agent.Learn calls from this assistant's
// action pipeline, e.g. to run a frozen policy without mutating its
// Q-table. Enabled by default.
func (a *Assistant) SetLearn(learn bool) {
	a.learn = learn
}

// SetArena binds arena as this assistant's non-owning back-reference,
// notified after every recorded transition.
func (a *Assistant) SetArena(arena ArenaNotifier) {
	a.arena = arena
}

// SetCurrentGoal selects (creating if necessary) the Experience this
// assistant accumulates into and learns from.
func (a *Assistant) SetCurrentGoal(goalName string) {
	a.GoalName = goalName
	if _, ok := a.Experiences[goalName]; !ok {
		a.Experiences[goalName] = xp.NewExperience(a.ModelName, a.RoleName, goalName)
	}
}

// CurrentExperience returns the Experience bound to the current goal, or
// nil if no goal has been set.
func (a *Assistant) CurrentExperience() *xp.Experience {
	if a.GoalName == "" {
		return nil
	}
	return a.Experiences[a.GoalName]
}

// CurrentState returns the in-progress environment state this assistant is
// acting from, or nil before its first episode has started. Exposed so a
// training loop can read out the state it is currently in, e.g. to feed a
// cyber-system-specific live view of the learned value function.
func (a *Assistant) CurrentState() *symbolic.EnvironmentState {
	return a.currentState
}

// StartEpisode resets this assistant's in-progress transition sequence and
// (re)establishes the canonical initial state, initializing the
// cyber-system if this is the very first episode.
func (a *Assistant) StartEpisode() error {
	if a.initialState == nil {
		initial, err := a.System.Initialize(a.Model)
		if err != nil {
			return fmt.Errorf("assistant: initializing %s: %w", a.System.Name(), err)
		}
		a.initialState = a.Model.CanonicalState(initial)
	}
	a.currentState = a.initialState
	a.pendingTransitions = nil
	return nil
}

// AvailableActions implements rl.ActionsProvider by delegating to the
// cyber-system under this assistant's own role.
func (a *Assistant) AvailableActions(state *symbolic.EnvironmentState) []*symbolic.Action {
	return a.System.GetAvailableActions(a.RoleName, state, true)
}

// TakeAction executes the pipeline described by the core spec: enumerate
// available actions (pruned of any already known to deadlock from this
// state), choose one, execute it, canonicalize and classify the successor,
// record the transition, learn from it, and on a terminal result store the
// completed episode into the current Experience. When every available
// action is already pruned away, this state is itself a dead end: it is
// classified Deadlock without an action ever being chosen.
func (a *Assistant) TakeAction() (xp.ActionResult, error) {
	if a.currentState == nil {
		if err := a.StartEpisode(); err != nil {
			return xp.Denied, err
		}
	}
	exp := a.CurrentExperience()
	if exp == nil {
		return xp.Denied, fmt.Errorf("assistant: no current goal set")
	}

	prevState := a.currentState
	available := a.System.GetAvailableActions(a.RoleName, prevState, true)
	possible := a.prunePossibleActions(prevState, available)
	if len(possible) == 0 {
		a.Role.OverrideStateResult(prevState, xp.Deadlock)
		a.recordDeadlockAction(prevState, a.lastAction)
		return xp.Deadlock, nil
	}

	chosen := a.Agent.ChooseAction(prevState, possible, exp)
	if chosen == nil {
		return xp.Denied, nil
	}

	successor, applied := a.System.ExecuteAction(prevState, chosen)
	if !applied {
		return xp.Denied, nil
	}

	canonSuccessor := a.Model.CanonicalState(successor)
	canonAction := a.Model.CanonicalAction(chosen)

	transition := xp.Transition{
		StartState:  prevState,
		EndState:    canonSuccessor,
		ActionTaken: canonAction,
	}
	a.pendingTransitions = append(a.pendingTransitions, transition)
	a.currentState = canonSuccessor
	a.lastAction = canonAction

	// A loop back to an already-visited state is only a true deadlock if
	// this action was the only one on the table; either way it is marked
	// so it is not retried from prevState again.
	if a.classify(canonSuccessor).Result == xp.InProgress && a.detectLoop(transition) {
		if len(possible) == 1 {
			a.Role.OverrideStateResult(canonSuccessor, xp.Deadlock)
		}
		a.recordDeadlockAction(prevState, canonAction)
	}

	info := a.learnFrom(exp)

	if a.arena != nil {
		a.arena.NotifyTransition(a, transition)
	}

	return info.Result, nil
}

// classify returns this assistant's classification of state: the owning
// cyber-system's own failure condition, when defined and not suppressed,
// overrides the role's classification to Failed, mirroring the original
// framework's system-level failure check ahead of a role's own rules.
// Already-overridden states (e.g. a recorded deadlock) are never
// reclassified.
func (a *Assistant) classify(state *symbolic.EnvironmentState) xp.EnvironmentStateInfo {
	if exp := a.CurrentExperience(); exp != nil && !exp.IgnoreSystemFailure && !a.Role.IsOverridden(state) {
		if failure := a.System.GetFailureCondition(); failure.Defined() && failure.Evaluate(state.ConditionEnvironment()) {
			a.Role.OverrideStateResult(state, xp.Failed)
		}
	}
	return a.Role.GetStateInfo(state)
}

// detectLoop reports whether t's end state was already the start of an
// earlier transition in this episode: reaching it again means there is no
// escape path forward through states not already visited.
func (a *Assistant) detectLoop(t xp.Transition) bool {
	for i := len(a.pendingTransitions) - 2; i >= 0; i-- {
		if a.pendingTransitions[i].StartState == t.EndState {
			return true
		}
	}
	return false
}

// prunePossibleActions removes from available every action already
// recorded, via recordDeadlockAction, as leading nowhere from state.
func (a *Assistant) prunePossibleActions(state *symbolic.EnvironmentState, available []*symbolic.Action) []*symbolic.Action {
	known := a.deadlockActions[state]
	if len(known) == 0 {
		return available
	}
	possible := make([]*symbolic.Action, 0, len(available))
	for _, act := range available {
		blocked := false
		for _, bad := range known {
			if bad == act {
				blocked = true
				break
			}
		}
		if !blocked {
			possible = append(possible, act)
		}
	}
	return possible
}

// recordDeadlockAction marks action as known to lead nowhere from state. A
// nil action (no prior transition to blame) is ignored.
func (a *Assistant) recordDeadlockAction(state *symbolic.EnvironmentState, action *symbolic.Action) {
	if action == nil {
		return
	}
	if a.deadlockActions == nil {
		a.deadlockActions = map[*symbolic.EnvironmentState][]*symbolic.Action{}
	}
	a.deadlockActions[state] = append(a.deadlockActions[state], action)
}

// learnFrom classifies the assistant's current state, lets its agent learn
// from the transition sequence recorded so far (unless learning is
// disabled), and on a terminal result stores the completed episode into exp.
func (a *Assistant) learnFrom(exp *xp.Experience) xp.EnvironmentStateInfo {
	info := a.classify(a.currentState)
	episodeSoFar := xp.NewEpisode(a.pendingTransitions, info.Result, a.performance())
	if a.learn {
		a.Agent.Learn(exp, a.Role, episodeSoFar, a)
	}

	if info.Result.Terminal() {
		exp.StoreEpisode(episodeSoFar)
		a.log.Debugw("episode complete", "goal", a.GoalName, "result", info.Result.String(), "steps", len(a.pendingTransitions))
	}
	return info
}

// ObserveTransition updates this assistant's view of a shared environment to
// reflect a transition recorded by another actor in the same arena: it did
// not choose or execute the action, but the transition still belongs to its
// own in-progress episode, and the resulting state may still terminate it
// (e.g. the opponent's winning move fails this assistant's role). The arena
// calls this for every actor other than the one that actually acted.
func (a *Assistant) ObserveTransition(t xp.Transition) xp.ActionResult {
	a.pendingTransitions = append(a.pendingTransitions, t)
	a.currentState = t.EndState
	a.lastAction = t.ActionTaken
	exp := a.CurrentExperience()
	if exp == nil {
		return xp.InProgress
	}
	return a.learnFrom(exp).Result
}

// performance sums each recorded transition's reward, giving the episode's
// running return so far.
func (a *Assistant) performance() float64 {
	total := 0.0
	for _, t := range a.pendingTransitions {
		total += a.Role.GetStateInfo(t.EndState).Reward
	}
	return total
}

// GetSuggestedActions returns the action(s) actually taken next from the
// current state within the best recorded episode(s) for the current goal,
// for a human operator being assisted rather than an autonomous agent. A
// state the best episode(s) never passed through has nothing to suggest.
func (a *Assistant) GetSuggestedActions() []*symbolic.Action {
	exp := a.CurrentExperience()
	if exp == nil || a.currentState == nil {
		return nil
	}
	var suggested []*symbolic.Action
	for _, ep := range exp.BestEpisodes {
		for _, t := range ep.TransitionSequence {
			if t.StartState != a.currentState {
				continue
			}
			already := false
			for _, act := range suggested {
				if act == t.ActionTaken {
					already = true
					break
				}
			}
			if !already {
				suggested = append(suggested, t.ActionTaken)
			}
		}
	}
	return suggested
}

// GetForbiddenActions returns the actions known to lead to failure or a
// deadlock from the current state: the FailedTransitions recorded in the
// current Experience, plus any action this assistant has itself pruned via
// its own deadlock tracking.
func (a *Assistant) GetForbiddenActions() []*symbolic.Action {
	exp := a.CurrentExperience()
	if exp == nil || a.currentState == nil {
		return nil
	}
	var forbidden []*symbolic.Action
	for _, t := range exp.FailedTransitions {
		if t.StartState == a.currentState {
			forbidden = append(forbidden, t.ActionTaken)
		}
	}
	forbidden = append(forbidden, a.deadlockActions[a.currentState]...)
	return forbidden
}

// PrintHints renders a short human-readable summary of the suggested and
// forbidden actions from the current state, using the cyber-system's own
// diagnostic rendering for context.
func (a *Assistant) PrintHints() string {
	if a.currentState == nil {
		return "no current state"
	}
	suggested := a.GetSuggestedActions()
	forbidden := a.GetForbiddenActions()
	info := a.System.GetSystemInfo(a.currentState, "")
	out := info + "\nsuggested actions:\n"
	for _, act := range suggested {
		out += "  " + act.String() + "\n"
	}
	out += "forbidden actions:\n"
	for _, act := range forbidden {
		out += "  " + act.String() + "\n"
	}
	return out
}
