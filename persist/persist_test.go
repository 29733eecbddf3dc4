package persist

import (
	"path/filepath"
	"testing"

	"cyberxp/symbolic"
	"cyberxp/xp"

	. "github.com/smartystreets/goconvey/convey"
)

func buildExperience(model *symbolic.Model) *xp.Experience {
	s0 := model.CanonicalState(symbolic.NewEnvironmentState())
	s1 := model.CanonicalState(func() *symbolic.EnvironmentState {
		s := symbolic.NewEnvironmentState()
		s.SetFeature("n", "1")
		return s
	}())
	a := model.CanonicalAction(symbolic.NewAction("inc"))

	t := xp.Transition{StartState: s0, EndState: s1, ActionTaken: a}
	ep := xp.NewEpisode([]xp.Transition{t}, xp.Succeeded, 10)

	exp := xp.NewExperience(model.Name(), "counter", "reach-one")
	exp.StoreEpisode(ep)
	exp.SetStateActionValue(xp.StateActionRef{State: s0, Action: a}, 4.5)
	exp.Level = xp.LevelTrainee
	return exp
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	Convey("Given an experience with an episode, a best episode, and Q-values", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("persist-test")
		exp := buildExperience(model)

		Convey("Encoding then decoding against the same model reproduces it", func() {
			data, err := Encode(model, exp)
			So(err, ShouldBeNil)

			decoded, err := Decode(model, data)
			So(err, ShouldBeNil)

			So(decoded.ModelName, ShouldEqual, exp.ModelName)
			So(decoded.RoleName, ShouldEqual, exp.RoleName)
			So(decoded.GoalName, ShouldEqual, exp.GoalName)
			So(decoded.Level, ShouldEqual, xp.LevelTrainee)
			So(decoded.Episodes, ShouldHaveLength, 1)
			So(decoded.Episodes[0].Result, ShouldEqual, xp.Succeeded)
			So(decoded.Episodes[0].Performance, ShouldEqual, 10)
			So(decoded.BestEpisode, ShouldEqual, decoded.Episodes[0])
			So(decoded.BestEpisodes, ShouldHaveLength, 1)

			var sawValue bool
			for ref, v := range decoded.StateActionValues {
				if v == 4.5 && ref.Action.TypeId == "inc" {
					sawValue = true
				}
			}
			So(sawValue, ShouldBeTrue)
		})

		Convey("Saving to and loading from a file round-trips the same way", func() {
			path := filepath.Join(t.TempDir(), "experience.json")
			So(SaveToFile(model, exp, path), ShouldBeNil)

			loaded, err := LoadFromFile(model, path)
			So(err, ShouldBeNil)
			So(loaded.Episodes, ShouldHaveLength, 1)
			So(loaded.Episodes[0].InitialState, ShouldNotBeNil)
			So(loaded.Episodes[0].LastState, ShouldNotBeNil)
		})
	})
}
