package rl

import (
	"testing"

	"cyberxp/condition"
	"cyberxp/symbolic"
	"cyberxp/xp"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeActionsProvider struct {
	actions map[*symbolic.EnvironmentState][]*symbolic.Action
}

func (f fakeActionsProvider) AvailableActions(state *symbolic.EnvironmentState) []*symbolic.Action {
	return f.actions[state]
}

func TestQLearningAgentChooseAction(t *testing.T) {
	Convey("Given an agent with zero exploration and a state with two actions", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("rl-test-choose")
		exp := xp.NewExperience(model.Name(), "p1", "win")

		state := model.CanonicalState(symbolic.NewEnvironmentState())
		a1 := model.CanonicalAction(symbolic.NewAction("move", "1"))
		a2 := model.CanonicalAction(symbolic.NewAction("move", "2"))

		exp.SetStateActionValue(xp.StateActionRef{State: state, Action: a1}, 5.0)
		exp.SetStateActionValue(xp.StateActionRef{State: state, Action: a2}, 1.0)

		agent := NewQLearningAgent(RLConfig{Epsilon: 0, DiscountRate: 0.9, FixedStepSize: 0.5})

		Convey("It greedily picks the higher-valued action", func() {
			chosen := agent.ChooseAction(state, []*symbolic.Action{a1, a2}, exp)
			So(chosen, ShouldEqual, a1)
		})

		Convey("An empty action list returns nil", func() {
			chosen := agent.ChooseAction(state, nil, exp)
			So(chosen, ShouldBeNil)
		})
	})

	Convey("Given an agent with full exploration", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("rl-test-explore")
		exp := xp.NewExperience(model.Name(), "p1", "win")
		state := model.CanonicalState(symbolic.NewEnvironmentState())
		a1 := model.CanonicalAction(symbolic.NewAction("move", "1"))

		agent := NewQLearningAgent(RLConfig{Epsilon: 1.0})

		Convey("It still returns one of the available actions", func() {
			chosen := agent.ChooseAction(state, []*symbolic.Action{a1}, exp)
			So(chosen, ShouldEqual, a1)
		})
	})
}

func TestQLearningAgentLearnOneStep(t *testing.T) {
	Convey("Given an in-progress transition with a known reward", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("rl-test-qlearn")
		exp := xp.NewExperience(model.Name(), "p1", "win")

		start := model.CanonicalState(symbolic.NewEnvironmentState())
		end := symbolic.NewEnvironmentState()
		end.SetFeature("winner", "none")
		endCanon := model.CanonicalState(end)
		action := model.CanonicalAction(symbolic.NewAction("move", "1"))

		rules := xp.StateRewardRules{ResultRewards: map[xp.ActionResult]float64{xp.InProgress: -1}}
		role := xp.NewRoleInfo("p1", condition.Condition{}, condition.Condition{}, condition.Condition{}, rules)

		episode := xp.NewEpisode([]xp.Transition{{StartState: start, EndState: endCanon, ActionTaken: action}}, xp.InProgress, -1)

		agent := NewQLearningAgent(RLConfig{DiscountRate: 0.9, FixedStepSize: 0.5})
		actions := fakeActionsProvider{actions: map[*symbolic.EnvironmentState][]*symbolic.Action{}}

		Convey("Learn applies a one-step update toward the observed reward", func() {
			agent.Learn(exp, role, episode, actions)
			ref := xp.StateActionRef{State: start, Action: action}
			// target = reward(-1) + gamma*0 successor value; old=0; new = 0 + 0.5*(-1-0) = -0.5
			So(exp.GetStateActionValue(ref), ShouldEqual, -0.5)
		})
	})
}

func TestQLearningAgentBackUp(t *testing.T) {
	Convey("Given a two-step successful episode", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("rl-test-backup")
		exp := xp.NewExperience(model.Name(), "p1", "win")

		s0 := model.CanonicalState(symbolic.NewEnvironmentState())
		s1 := symbolic.NewEnvironmentState()
		s1.SetFeature("step", "1")
		s1Canon := model.CanonicalState(s1)
		s2 := symbolic.NewEnvironmentState()
		s2.SetFeature("winner", "p1")
		s2Canon := model.CanonicalState(s2)

		a1 := model.CanonicalAction(symbolic.NewAction("move", "1"))
		a2 := model.CanonicalAction(symbolic.NewAction("move", "2"))

		rules := xp.StateRewardRules{ResultRewards: map[xp.ActionResult]float64{
			xp.InProgress: 0,
			xp.Succeeded:  10,
		}}
		role := xp.NewRoleInfo("p1", condition.Condition{}, condition.Condition{}, condition.Condition{}, rules)
		role.OverrideStateResult(s1Canon, xp.InProgress)
		role.OverrideStateResult(s2Canon, xp.Succeeded)

		episode := xp.NewEpisode([]xp.Transition{
			{StartState: s0, EndState: s1Canon, ActionTaken: a1},
			{StartState: s1Canon, EndState: s2Canon, ActionTaken: a2},
		}, xp.Succeeded, 10)

		agent := NewQLearningAgent(RLConfig{DiscountRate: 1.0, FixedStepSize: 1.0})
		actions := fakeActionsProvider{actions: map[*symbolic.EnvironmentState][]*symbolic.Action{s1Canon: {a2}}}

		Convey("Learn backs up the terminal reward through every preceding transition", func() {
			agent.Learn(exp, role, episode, actions)
			// With alpha=1, gamma=1: last step reward 10 -> Q(s1,a2)=10; first step
			// reward 0 + max Q(s1, a2) = 10 -> Q(s0,a1)=10
			So(exp.GetStateActionValue(xp.StateActionRef{State: s1Canon, Action: a2}), ShouldEqual, 10.0)
			So(exp.GetStateActionValue(xp.StateActionRef{State: s0, Action: a1}), ShouldEqual, 10.0)
		})
	})
}
