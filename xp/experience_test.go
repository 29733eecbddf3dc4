package xp

import (
	"testing"

	"cyberxp/symbolic"

	. "github.com/smartystreets/goconvey/convey"
)

func buildTransition(model *symbolic.Model, from, to string, action *symbolic.Action) Transition {
	start := symbolic.NewEnvironmentState()
	start.SetFeature("cell", from)
	end := symbolic.NewEnvironmentState()
	end.SetFeature("cell", to)
	return Transition{
		StartState:  model.CanonicalState(start),
		EndState:    model.CanonicalState(end),
		ActionTaken: model.CanonicalAction(action),
	}
}

func TestExperienceStoreEpisodeDeduplicates(t *testing.T) {
	Convey("Given an experience and a model", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("xp-test-dedup")
		exp := NewExperience(model.Name(), "player1", "win")

		t1 := buildTransition(model, "a", "b", symbolic.NewAction("move", "1"))
		ep1 := NewEpisode([]Transition{t1}, Succeeded, 10.0)

		Convey("The first insertion is stored", func() {
			stored := exp.StoreEpisode(ep1)
			So(stored, ShouldBeTrue)
			So(exp.Episodes, ShouldHaveLength, 1)
			So(exp.BestEpisode, ShouldEqual, ep1)
		})

		Convey("An equal episode is deduplicated, incrementing the original's repetitions", func() {
			exp.StoreEpisode(ep1)
			t1Again := buildTransition(model, "a", "b", symbolic.NewAction("move", "1"))
			ep1Again := NewEpisode([]Transition{t1Again}, Succeeded, 10.0)

			stored := exp.StoreEpisode(ep1Again)
			So(stored, ShouldBeFalse)
			So(exp.Episodes, ShouldHaveLength, 1)
			So(exp.Episodes[0].RepetitionsCount, ShouldEqual, 2)
		})

		Convey("A strictly better episode replaces BestEpisodes outright", func() {
			exp.StoreEpisode(ep1)
			t2 := buildTransition(model, "a", "c", symbolic.NewAction("move", "2"))
			ep2 := NewEpisode([]Transition{t2}, Succeeded, 20.0)
			exp.StoreEpisode(ep2)

			So(exp.BestEpisode, ShouldEqual, ep2)
			So(exp.BestEpisodes, ShouldHaveLength, 1)
			So(exp.BestEpisodes[0], ShouldEqual, ep2)
		})

		Convey("A tying episode is appended alongside the existing best", func() {
			exp.StoreEpisode(ep1)
			t2 := buildTransition(model, "a", "c", symbolic.NewAction("move", "2"))
			ep2 := NewEpisode([]Transition{t2}, Succeeded, 10.0)
			exp.StoreEpisode(ep2)

			So(exp.BestEpisodes, ShouldHaveLength, 2)
		})

		Convey("A failed episode contributes its last transition once, deduplicated", func() {
			failEp := NewEpisode([]Transition{t1}, Failed, -10.0)
			exp.StoreEpisode(failEp)
			So(exp.FailedTransitions, ShouldHaveLength, 1)

			failEp2 := NewEpisode([]Transition{buildTransition(model, "a", "b", symbolic.NewAction("move", "1"))}, Failed, -10.0)
			exp.StoreEpisode(failEp2)
			So(exp.FailedTransitions, ShouldHaveLength, 1)
		})
	})
}

func TestExperienceStateActionValues(t *testing.T) {
	Convey("Given an experience with no stored Q-values", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("xp-test-values")
		exp := NewExperience(model.Name(), "player1", "win")
		state := model.CanonicalState(symbolic.NewEnvironmentState())
		action := model.CanonicalAction(symbolic.NewAction("move", "1"))
		ref := StateActionRef{State: state, Action: action}

		Convey("GetStateActionValue defaults to zero", func() {
			So(exp.GetStateActionValue(ref), ShouldEqual, 0.0)
		})

		Convey("Setting a zero value for an unseen ref does not create an entry", func() {
			exp.SetStateActionValue(ref, 0.0)
			So(exp.StateActionValues, ShouldBeEmpty)
		})

		Convey("Setting a non-zero value then overwriting with zero persists the entry", func() {
			exp.SetStateActionValue(ref, 5.0)
			exp.SetStateActionValue(ref, 0.0)
			So(exp.StateActionValues, ShouldContainKey, ref)
			So(exp.GetStateActionValue(ref), ShouldEqual, 0.0)
		})
	})
}
