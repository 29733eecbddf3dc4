package assistant

import (
	"context"
	"strconv"
	"testing"

	"cyberxp/condition"
	"cyberxp/cybersystem"
	"cyberxp/rl"
	"cyberxp/symbolic"
	"cyberxp/xp"

	. "github.com/smartystreets/goconvey/convey"
)

// counterSystem is a minimal cyber-system for exercising the assistant
// pipeline: its state is a single feature "n", the only action "inc"
// increments it by one, and reaching 3 succeeds.
type counterSystem struct {
	roles map[string]*xp.RoleInfo
}

func (*counterSystem) Name() string { return "counter" }

func (c *counterSystem) Initialize(model *symbolic.Model) (*symbolic.EnvironmentState, error) {
	s := symbolic.NewEnvironmentState()
	s.SetFeature("n", "0")

	success := condition.Condition{}
	success.SetFeatureCondition(condition.NewFeatureCondition("n", "3"))
	rules := xp.StateRewardRules{ResultRewards: map[xp.ActionResult]float64{
		xp.InProgress: -1,
		xp.Succeeded:  10,
	}}
	role := xp.NewRoleInfo("counter", success, condition.Condition{}, condition.Condition{}, rules)
	model.SetEntityStateType(symbolic.NewEntityStateType(model.Name(), "Counter", "", nil, nil, nil))
	c.roles = map[string]*xp.RoleInfo{"counter": role}
	return s, nil
}

func (c *counterSystem) Roles() map[string]*xp.RoleInfo { return c.roles }

func (*counterSystem) ExecuteAction(state *symbolic.EnvironmentState, action *symbolic.Action) (*symbolic.EnvironmentState, bool) {
	if action.TypeId != "inc" {
		return nil, false
	}
	n, _ := strconv.Atoi(state.GetFeature("n"))
	next := symbolic.NewEnvironmentState()
	next.SetFeature("n", strconv.Itoa(n+1))
	return next, true
}

func (*counterSystem) GetAvailableActions(roleId string, state *symbolic.EnvironmentState, smart bool) []*symbolic.Action {
	if state.GetFeature("n") == "3" {
		return nil
	}
	return []*symbolic.Action{symbolic.NewAction("inc")}
}

func (*counterSystem) SetConfiguration(string) bool                           { return true }
func (*counterSystem) GetConfiguration() string                               { return "" }
func (*counterSystem) ReadEntityConfiguration(string) string                  { return "" }
func (*counterSystem) WriteEntityConfiguration(string, string) bool           { return true }
func (*counterSystem) ConfigureEntity(string, string, string) bool            { return false }
func (*counterSystem) RemoveEntity(string) bool                               { return false }
func (*counterSystem) GetSystemInfo(*symbolic.EnvironmentState, string) string { return "counter" }
func (*counterSystem) GetFailureCondition() condition.Condition                { return condition.Condition{} }

var _ cybersystem.System = &counterSystem{}

func TestAssistantTakeAction(t *testing.T) {
	Convey("Given an assistant driving the counter system", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("assistant-test-counter")
		sys := &counterSystem{}
		_, err := sys.Initialize(model)
		So(err, ShouldBeNil)
		role := sys.Roles()["counter"]

		agent := rl.NewQLearningAgent(rl.RLConfig{Epsilon: 0, DiscountRate: 1.0, FixedStepSize: 1.0})
		a := New(sys, model, role, agent, nil)
		a.SetCurrentGoal("reach-three")

		Convey("Repeated TakeAction calls drive the counter to Succeeded", func() {
			var result xp.ActionResult
			for i := 0; i < 3; i++ {
				result, err = a.TakeAction()
				So(err, ShouldBeNil)
			}
			So(result, ShouldEqual, xp.Succeeded)
			So(a.CurrentExperience().Episodes, ShouldHaveLength, 1)
		})
	})
}

func TestAutonomousAgentTrain(t *testing.T) {
	Convey("Given an autonomous agent training on the counter system", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("assistant-test-autonomous")
		sys := &counterSystem{}
		_, err := sys.Initialize(model)
		So(err, ShouldBeNil)
		role := sys.Roles()["counter"]

		agent := rl.NewQLearningAgent(rl.RLConfig{Epsilon: 0.5, DiscountRate: 1.0, FixedStepSize: 0.5})
		a := New(sys, model, role, agent, nil)
		a.SetCurrentGoal("reach-three")
		aa := NewAutonomousAgent(a)

		Convey("Training for several episodes records successful episodes", func() {
			count := 0
			err := aa.Train(context.Background(), 25, func(i int, result xp.ActionResult) {
				if result == xp.Succeeded {
					count++
				}
			})
			So(err, ShouldBeNil)
			So(count, ShouldBeGreaterThan, 0)
		})
	})
}
