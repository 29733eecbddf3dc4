package xp

import (
	"testing"

	"cyberxp/condition"
	"cyberxp/symbolic"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRoleInfoClassification(t *testing.T) {
	Convey("Given a tic-tac-toe-style role with success/failure/deadlock conditions", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("xp-test-role")

		success := condition.Condition{}
		success.SetFeatureCondition(condition.NewFeatureCondition("winner", "player1"))

		failure := condition.Condition{}
		failure.SetFeatureCondition(condition.NewFeatureCondition("winner", "player2"))

		deadlock := condition.Condition{}
		deadlock.SetFeatureCondition(condition.NewFeatureCondition("ended", "true"))
		deadlock.SetFeatureCondition(condition.NewFeatureCondition("winner", "none"))

		rules := StateRewardRules{
			ResultRewards: map[ActionResult]float64{
				InProgress: 0,
				Succeeded:  1000,
				Failed:     -1000,
				Deadlock:   -10,
			},
			FeatureRewards: []FeatureReward{
				NewFeatureReward("can win 1", "1", 25),
				NewFeatureReward("can win 2", "1", -50),
			},
		}
		role := NewRoleInfo("player1", success, failure, deadlock, rules)

		Convey("A winning state classifies as Succeeded with the shaped reward", func() {
			state := symbolic.NewEnvironmentState()
			state.SetFeature("winner", "player1")
			state.SetFeature("ended", "true")
			state.SetFeature("can win 1", "0")
			canon := model.CanonicalState(state)

			info := role.GetStateInfo(canon)
			So(info.Result, ShouldEqual, Succeeded)
			So(info.Reward, ShouldEqual, 1000.0)
		})

		Convey("A drawn, ended game with no winner classifies as Deadlock", func() {
			state := symbolic.NewEnvironmentState()
			state.SetFeature("winner", "none")
			state.SetFeature("ended", "true")
			canon := model.CanonicalState(state)

			info := role.GetStateInfo(canon)
			So(info.Result, ShouldEqual, Deadlock)
			So(info.Reward, ShouldEqual, -10.0)
		})

		Convey("An in-progress state with a winning threat adds the shaping bonus", func() {
			state := symbolic.NewEnvironmentState()
			state.SetFeature("winner", "none")
			state.SetFeature("ended", "false")
			state.SetFeature("can win 1", "1")
			canon := model.CanonicalState(state)

			info := role.GetStateInfo(canon)
			So(info.Result, ShouldEqual, InProgress)
			So(info.Reward, ShouldEqual, 25.0)
		})

		Convey("Classification is cached: repeated lookups return the identical cached value", func() {
			state := symbolic.NewEnvironmentState()
			state.SetFeature("winner", "player1")
			canon := model.CanonicalState(state)

			first := role.GetStateInfo(canon)
			second := role.GetStateInfo(canon)
			So(first, ShouldResemble, second)
		})

		Convey("OverrideStateResult forces a classification regardless of conditions", func() {
			state := symbolic.NewEnvironmentState()
			state.SetFeature("winner", "player1")
			canon := model.CanonicalState(state)

			role.OverrideStateResult(canon, Failed)
			info := role.GetStateInfo(canon)
			So(info.Result, ShouldEqual, Failed)
			So(role.IsOverridden(canon), ShouldBeTrue)
		})
	})
}
