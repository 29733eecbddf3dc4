package rl

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"cyberxp/symbolic"
	"cyberxp/xp"
)

// QLearningAgent is the reference tabular Q-learning agent: epsilon-greedy
// action selection with optional epsilon decay, and a one-step Q-update
// whose successor-state value estimate is a frequency-weighted average over
// every successor state actually observed for a given (state, action) pair,
// rather than assuming a single deterministic successor.
type QLearningAgent struct {
	config RLConfig
	rng    *rand.Rand

	mu               sync.Mutex
	stateVisitCount  map[*symbolic.EnvironmentState]int
	successorCounts  map[xp.StateActionRef]map[*symbolic.EnvironmentState]int
	valueUpdateCount map[xp.StateActionRef]int
}

// NewQLearningAgent builds a Q-learning agent with the given configuration.
func NewQLearningAgent(cfg RLConfig) *QLearningAgent {
	return &QLearningAgent{
		config:           cfg,
		rng:              rand.New(rand.NewSource(rand.Int63())),
		stateVisitCount:  map[*symbolic.EnvironmentState]int{},
		successorCounts:  map[xp.StateActionRef]map[*symbolic.EnvironmentState]int{},
		valueUpdateCount: map[xp.StateActionRef]int{},
	}
}

// SetConfiguration implements Agent.
func (a *QLearningAgent) SetConfiguration(cfg Configuration) error {
	rlCfg, ok := cfg.(RLConfig)
	if !ok {
		return fmt.Errorf("rl: QLearningAgent expects RLConfig, got %s", cfg.Kind())
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.config = rlCfg
	return nil
}

// ChooseAction implements Agent: epsilon-greedy, with the exploration rate
// decayed by EpsilonReduction as the state accumulates visits.
func (a *QLearningAgent) ChooseAction(state *symbolic.EnvironmentState, availableActions []*symbolic.Action, exp *xp.Experience) *symbolic.Action {
	if len(availableActions) == 0 {
		return nil
	}

	a.mu.Lock()
	visits := a.stateVisitCount[state]
	a.stateVisitCount[state] = visits + 1
	cfg := a.config
	a.mu.Unlock()

	epsilon := cfg.Epsilon
	if cfg.EpsilonReduction > 0 {
		visitsPerAction := float64(visits) / float64(len(availableActions))
		epsilon = math.Pow(cfg.EpsilonReduction, visitsPerAction)
	}

	if a.rng.Float64() < epsilon {
		return availableActions[a.rng.Intn(len(availableActions))]
	}
	return a.chooseGreedy(state, availableActions, exp)
}

// chooseGreedy picks the highest-valued action, breaking ties uniformly at
// random among every action sharing the best value.
func (a *QLearningAgent) chooseGreedy(state *symbolic.EnvironmentState, availableActions []*symbolic.Action, exp *xp.Experience) *symbolic.Action {
	best := math.Inf(-1)
	var ties []*symbolic.Action
	for _, action := range availableActions {
		v := exp.GetStateActionValue(xp.StateActionRef{State: state, Action: action})
		switch {
		case v > best:
			best = v
			ties = ties[:0]
			ties = append(ties, action)
		case v == best:
			ties = append(ties, action)
		}
	}
	if len(ties) == 0 {
		return nil
	}
	return ties[a.rng.Intn(len(ties))]
}

// GetMaxValue implements Agent.
func (a *QLearningAgent) GetMaxValue(state *symbolic.EnvironmentState, availableActions []*symbolic.Action, exp *xp.Experience) float64 {
	if len(availableActions) == 0 {
		return 0
	}
	max := math.Inf(-1)
	for _, action := range availableActions {
		v := exp.GetStateActionValue(xp.StateActionRef{State: state, Action: action})
		if v > max {
			max = v
		}
	}
	return max
}

// recordSuccessor remembers that ref's action led to successor, building up
// the frequency table GetMaxValue's caller (successorValueEstimate) draws on.
func (a *QLearningAgent) recordSuccessor(ref xp.StateActionRef, successor *symbolic.EnvironmentState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	counts, ok := a.successorCounts[ref]
	if !ok {
		counts = map[*symbolic.EnvironmentState]int{}
		a.successorCounts[ref] = counts
	}
	counts[successor]++
}

// successorValueEstimate estimates the value of taking ref's action from
// ref's state as a frequency-weighted average of GetMaxValue over every
// successor state actually observed, rather than only the successor from
// the single transition currently being learned from. This matters for
// cyber-systems whose actions are not perfectly deterministic: a handful of
// early, unlucky successor observations should not dominate the estimate
// the way a naive "always use the just-observed successor" update would.
func (a *QLearningAgent) successorValueEstimate(ref xp.StateActionRef, actions ActionsProvider, exp *xp.Experience) float64 {
	a.mu.Lock()
	counts := a.successorCounts[ref]
	snapshot := make(map[*symbolic.EnvironmentState]int, len(counts))
	for s, n := range counts {
		snapshot[s] = n
	}
	a.mu.Unlock()

	if len(snapshot) == 0 {
		return 0
	}
	total := 0
	sum := 0.0
	for successor, n := range snapshot {
		nextActions := actions.AvailableActions(successor)
		sum += float64(n) * a.GetMaxValue(successor, nextActions, exp)
		total += n
	}
	if total == 0 {
		return 0
	}
	return sum / float64(total)
}

// stepSize returns the learning rate to apply to ref's next update, given
// the agent's configuration: a 1/n running average, or a fixed alpha.
func (a *QLearningAgent) stepSize(ref xp.StateActionRef) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.config.SampleAverage {
		return a.config.FixedStepSize
	}
	a.valueUpdateCount[ref]++
	return 1.0 / float64(a.valueUpdateCount[ref])
}

// qLearn applies the one-step Q-update to a single transition. When t's
// successor is terminal, the update is a hard assignment Q(s,a) = R rather
// than a blended step: a terminal state's reward is the transition's whole
// remaining return, so there is nothing left to estimate or average in.
func (a *QLearningAgent) qLearn(exp *xp.Experience, role *xp.RoleInfo, t xp.Transition, actions ActionsProvider) {
	ref := xp.StateActionRef{State: t.StartState, Action: t.ActionTaken}
	a.recordSuccessor(ref, t.EndState)

	endInfo := role.GetStateInfo(t.EndState)
	if endInfo.Result.Terminal() {
		exp.SetStateActionValue(ref, endInfo.Reward)
		return
	}

	successorValue := a.successorValueEstimate(ref, actions, exp)
	target := endInfo.Reward + a.config.DiscountRate*successorValue

	old := exp.GetStateActionValue(ref)
	alpha := a.stepSize(ref)
	exp.SetStateActionValue(ref, old+alpha*(target-old))
}

// backUp back-fills a whole successful episode's transitions in reverse
// order, applying the one-step Q-update to each: the last transition lands
// on its terminal successor's hard-assigned reward, and every earlier
// transition's update then draws its successor-value estimate from the
// just-updated action values ahead of it in the sequence.
func (a *QLearningAgent) backUp(exp *xp.Experience, role *xp.RoleInfo, episode *xp.Episode, actions ActionsProvider) {
	for i := len(episode.TransitionSequence) - 1; i >= 0; i-- {
		a.qLearn(exp, role, episode.TransitionSequence[i], actions)
	}
}

// Learn implements Agent.
func (a *QLearningAgent) Learn(exp *xp.Experience, role *xp.RoleInfo, episode *xp.Episode, actions ActionsProvider) {
	if len(episode.TransitionSequence) == 0 {
		return
	}
	if episode.Result == xp.Succeeded {
		a.backUp(exp, role, episode, actions)
		return
	}
	last := episode.TransitionSequence[len(episode.TransitionSequence)-1]
	a.qLearn(exp, role, last, actions)
}

var _ Agent = (*QLearningAgent)(nil)
