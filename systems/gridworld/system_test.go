package gridworld

import (
	"testing"

	"cyberxp/symbolic"

	. "github.com/smartystreets/goconvey/convey"
)

const testTrack = `4 3
####
#S$#
##E#
`

func TestParseGrid(t *testing.T) {
	Convey("Given a small track with a start, bonus and end cell", t, func() {
		g, col, row, err := parseGrid(testTrack)
		So(err, ShouldBeNil)
		So(g.Columns, ShouldEqual, 4)
		So(g.Rows, ShouldEqual, 3)
		So(col, ShouldEqual, 1)
		So(row, ShouldEqual, 1)
		So(g.GetCell(2, 1), ShouldEqual, byte(cellBonus))
	})
}

func TestSystemInitialize(t *testing.T) {
	Convey("Given a gridworld system configured with the test track", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("gridworld-test-init")
		sys := New()
		So(sys.SetConfiguration(testTrack), ShouldBeTrue)

		state, err := sys.Initialize(model)
		So(err, ShouldBeNil)
		So(state.GetFeature("bonus"), ShouldEqual, "0")
		col, row := pawnPosition(state)
		So(col, ShouldEqual, 1)
		So(row, ShouldEqual, 1)
		So(sys.Roles(), ShouldContainKey, roleName)
	})
}

func TestExecuteActionMovesPawnAndTracksBonus(t *testing.T) {
	Convey("Given the pawn standing next to a bonus cell", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("gridworld-test-execute")
		sys := New()
		sys.SetConfiguration(testTrack)
		state, _ := sys.Initialize(model)

		Convey("Moving right onto the bonus cell increments bonus", func() {
			next, applied := sys.ExecuteAction(state, symbolic.NewAction("right"))
			So(applied, ShouldBeTrue)
			So(next.GetFeature("bonus"), ShouldEqual, "1")
			col, row := pawnPosition(next)
			So(col, ShouldEqual, 2)
			So(row, ShouldEqual, 1)
		})

		Convey("Moving into a wall is rejected", func() {
			_, applied := sys.ExecuteAction(state, symbolic.NewAction("up"))
			So(applied, ShouldBeFalse)
		})

		Convey("Reaching the end cell classifies as succeeded via entity state", func() {
			next, applied := sys.ExecuteAction(state, symbolic.NewAction("right"))
			So(applied, ShouldBeTrue)
			next, applied = sys.ExecuteAction(next, symbolic.NewAction("down"))
			So(applied, ShouldBeTrue)
			es, ok := next.GetEntityState(pawnEntityId)
			So(ok, ShouldBeTrue)
			So(es.GetPropertyValue("state"), ShouldEqual, "end")
		})
	})
}

func TestGetAvailableActionsSmartSelectionAvoidsBacktrack(t *testing.T) {
	Convey("Given the pawn has just moved right into open space", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("gridworld-test-smart")
		sys := New()
		sys.SetConfiguration(testTrack)
		state, _ := sys.Initialize(model)
		state, _ = sys.ExecuteAction(state, symbolic.NewAction("right"))

		Convey("Smart selection excludes moving left back onto the start cell", func() {
			actions := sys.GetAvailableActions(roleName, state, true)
			for _, a := range actions {
				So(a.TypeId, ShouldNotEqual, "left")
			}
		})
	})
}
