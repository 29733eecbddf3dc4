package arena

import (
	"testing"

	"cyberxp/assistant"
	"cyberxp/condition"
	"cyberxp/cybersystem"
	"cyberxp/rl"
	"cyberxp/symbolic"
	"cyberxp/xp"

	. "github.com/smartystreets/goconvey/convey"
)

// claimSystem is a minimal two-player cyber-system: either player can claim
// victory in one move, ending the game immediately. It exists only to
// exercise SharedArena's cross-actor propagation.
type claimSystem struct {
	roles map[string]*xp.RoleInfo
}

func newClaimSystem() *claimSystem {
	return &claimSystem{}
}

func (*claimSystem) Name() string { return "claim" }

func (c *claimSystem) Initialize(model *symbolic.Model) (*symbolic.EnvironmentState, error) {
	s := symbolic.NewEnvironmentState()
	s.SetFeature("winner", "none")

	p1wins := condition.Condition{}
	p1wins.SetFeatureCondition(condition.NewFeatureCondition("winner", "p1"))
	p2wins := condition.Condition{}
	p2wins.SetFeatureCondition(condition.NewFeatureCondition("winner", "p2"))

	rules1 := xp.StateRewardRules{ResultRewards: map[xp.ActionResult]float64{xp.Succeeded: 1, xp.Failed: -1}}
	rules2 := xp.StateRewardRules{ResultRewards: map[xp.ActionResult]float64{xp.Succeeded: 1, xp.Failed: -1}}

	c.roles = map[string]*xp.RoleInfo{
		"p1": xp.NewRoleInfo("p1", p1wins, p2wins, condition.Condition{}, rules1),
		"p2": xp.NewRoleInfo("p2", p2wins, p1wins, condition.Condition{}, rules2),
	}
	return s, nil
}

func (c *claimSystem) Roles() map[string]*xp.RoleInfo { return c.roles }

func (*claimSystem) ExecuteAction(state *symbolic.EnvironmentState, action *symbolic.Action) (*symbolic.EnvironmentState, bool) {
	if action.TypeId != "claim" || len(action.Params) != 1 {
		return nil, false
	}
	if state.GetFeature("winner") != "none" {
		return nil, false
	}
	next := symbolic.NewEnvironmentState()
	next.SetFeature("winner", action.Params[0])
	return next, true
}

func (*claimSystem) GetAvailableActions(roleId string, state *symbolic.EnvironmentState, smart bool) []*symbolic.Action {
	if state.GetFeature("winner") != "none" {
		return nil
	}
	return []*symbolic.Action{symbolic.NewAction("claim", roleId)}
}

func (*claimSystem) SetConfiguration(string) bool                           { return true }
func (*claimSystem) GetConfiguration() string                               { return "" }
func (*claimSystem) ReadEntityConfiguration(string) string                  { return "" }
func (*claimSystem) WriteEntityConfiguration(string, string) bool          { return true }
func (*claimSystem) ConfigureEntity(string, string, string) bool           { return false }
func (*claimSystem) RemoveEntity(string) bool                              { return false }
func (*claimSystem) GetSystemInfo(*symbolic.EnvironmentState, string) string { return "" }
func (*claimSystem) GetFailureCondition() condition.Condition                { return condition.Condition{} }

var _ cybersystem.System = newClaimSystem()

func TestSharedArenaPropagatesTransitions(t *testing.T) {
	Convey("Given two assistants sharing a claim-to-win system", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("arena-test-claim")
		sys := newClaimSystem()
		_, err := sys.Initialize(model)
		So(err, ShouldBeNil)

		agent1 := rl.NewQLearningAgent(rl.RLConfig{Epsilon: 0, DiscountRate: 1.0, FixedStepSize: 1.0})
		agent2 := rl.NewQLearningAgent(rl.RLConfig{Epsilon: 0, DiscountRate: 1.0, FixedStepSize: 1.0})
		a1 := assistant.New(sys, model, sys.Roles()["p1"], agent1, nil)
		a2 := assistant.New(sys, model, sys.Roles()["p2"], agent2, nil)
		a1.SetCurrentGoal("win")
		a2.SetCurrentGoal("win")

		sharedArena := NewSharedArena()
		sharedArena.AddActor(a1)
		sharedArena.AddActor(a2)
		So(sharedArena.MultiActor(), ShouldBeTrue)

		So(sharedArena.NewEpisode(), ShouldBeNil)

		Convey("When actor1 wins, actor2's experience records a Failed episode without acting", func() {
			result, err := a1.TakeAction()
			So(err, ShouldBeNil)
			So(result, ShouldEqual, xp.Succeeded)

			exp2 := a2.CurrentExperience()
			So(exp2.Episodes, ShouldHaveLength, 1)
			So(exp2.Episodes[0].Result, ShouldEqual, xp.Failed)
			So(exp2.Episodes[0].TransitionSequence, ShouldHaveLength, 1)
			So(exp2.FailedTransitions, ShouldHaveLength, 1)
		})
	})
}
