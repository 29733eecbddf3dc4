package ledcircuit

import (
	"testing"

	"cyberxp/symbolic"

	. "github.com/smartystreets/goconvey/convey"
)

const testConfig = `PowerSupplyDC Battery 6000 50
LED LED1 Red
Resistor R1 2200 500
Resistor R2 50 100
Switch SW1 12000 40
`

func TestSystemInitialize(t *testing.T) {
	Convey("Given a circuit system configured with the test components", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("ledcircuit-test-init")
		sys := New()
		So(sys.SetConfiguration(testConfig), ShouldBeTrue)

		state, err := sys.Initialize(model)
		So(err, ShouldBeNil)
		So(state.GetFeature("shortCircuit"), ShouldEqual, "false")

		led, ok := state.GetEntityState("LED1")
		So(ok, ShouldBeTrue)
		So(led.GetPropertyValue("lit up"), ShouldEqual, "false")
		So(led.GetPropertyValue("burnt out"), ShouldEqual, "false")
		So(sys.Roles(), ShouldContainKey, roleName)
	})
}

func TestConnectingThroughSafeResistorLightsLED(t *testing.T) {
	Convey("Given a battery, LED and a 2200-ohm resistor", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("ledcircuit-test-safe")
		sys := New()
		sys.SetConfiguration(testConfig)
		state, _ := sys.Initialize(model)

		Convey("Wiring +  -> LED Anode, LED Cathode -> R1 Pin1, R1 Pin2 -> - lights the LED", func() {
			state, applied := sys.ExecuteAction(state, symbolic.NewAction("connect", "Battery", "+", "LED1", "Anode"))
			So(applied, ShouldBeTrue)
			state, applied = sys.ExecuteAction(state, symbolic.NewAction("connect", "LED1", "Cathode", "R1", "Pin1"))
			So(applied, ShouldBeTrue)
			state, applied = sys.ExecuteAction(state, symbolic.NewAction("connect", "R1", "Pin2", "Battery", "-"))
			So(applied, ShouldBeTrue)

			led, _ := state.GetEntityState("LED1")
			So(led.GetPropertyValue("lit up"), ShouldEqual, "true")
			So(led.GetPropertyValue("burnt out"), ShouldEqual, "false")
			So(state.GetFeature("shortCircuit"), ShouldEqual, "false")

			resistor, _ := state.GetEntityState("R1")
			So(resistor.GetPropertyValue("connected"), ShouldEqual, "true")
		})
	})
}

func TestConnectingThroughUnsafeResistorBurnsOutLED(t *testing.T) {
	Convey("Given a battery, LED and a 50-ohm resistor", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("ledcircuit-test-unsafe")
		sys := New()
		sys.SetConfiguration(testConfig)
		state, _ := sys.Initialize(model)

		state, _ = sys.ExecuteAction(state, symbolic.NewAction("connect", "Battery", "+", "LED1", "Anode"))
		state, _ = sys.ExecuteAction(state, symbolic.NewAction("connect", "LED1", "Cathode", "R2", "Pin1"))
		state, _ = sys.ExecuteAction(state, symbolic.NewAction("connect", "R2", "Pin2", "Battery", "-"))

		led, _ := state.GetEntityState("LED1")
		So(led.GetPropertyValue("lit up"), ShouldEqual, "false")
		So(led.GetPropertyValue("burnt out"), ShouldEqual, "true")
	})
}

func TestDirectShortWithNoLEDSetsShortCircuitFeature(t *testing.T) {
	Convey("Given a battery wired + to - through a resistor, with no LED", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("ledcircuit-test-short")
		sys := New()
		sys.SetConfiguration(testConfig)
		state, _ := sys.Initialize(model)

		state, _ = sys.ExecuteAction(state, symbolic.NewAction("connect", "Battery", "+", "R1", "Pin1"))
		state, _ = sys.ExecuteAction(state, symbolic.NewAction("connect", "R1", "Pin2", "Battery", "-"))
		So(state.GetFeature("shortCircuit"), ShouldEqual, "true")
	})
}

func TestSwitchTogglesPositionAndReconnects(t *testing.T) {
	Convey("Given a switch wired into the battery-LED-resistor loop while open", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("ledcircuit-test-switch")
		sys := New()
		sys.SetConfiguration(testConfig)
		state, _ := sys.Initialize(model)

		state, _ = sys.ExecuteAction(state, symbolic.NewAction("connect", "Battery", "+", "LED1", "Anode"))
		state, _ = sys.ExecuteAction(state, symbolic.NewAction("connect", "LED1", "Cathode", "R1", "Pin1"))
		state, _ = sys.ExecuteAction(state, symbolic.NewAction("connect", "R1", "Pin2", "SW1", "In"))
		state, _ = sys.ExecuteAction(state, symbolic.NewAction("connect", "SW1", "Out1", "Battery", "-"))

		led, _ := state.GetEntityState("LED1")
		So(led.GetPropertyValue("lit up"), ShouldEqual, "false")

		Convey("Closing the switch completes the circuit and lights the LED", func() {
			next, applied := sys.ExecuteAction(state, symbolic.NewAction("switch", "SW1", "1"))
			So(applied, ShouldBeTrue)
			led, _ := next.GetEntityState("LED1")
			So(led.GetPropertyValue("lit up"), ShouldEqual, "true")
		})
	})
}

func TestGetAvailableActionsExcludesOccupiedPorts(t *testing.T) {
	Convey("Given the battery's + terminal is already connected", t, func() {
		symbolic.RemoveAllModels()
		model := symbolic.GetModel("ledcircuit-test-actions")
		sys := New()
		sys.SetConfiguration(testConfig)
		state, _ := sys.Initialize(model)
		state, _ = sys.ExecuteAction(state, symbolic.NewAction("connect", "Battery", "+", "LED1", "Anode"))

		actions := sys.GetAvailableActions(roleName, state, true)
		for _, a := range actions {
			if a.TypeId != "connect" {
				continue
			}
			So(a.Params[0] == "Battery" && a.Params[1] == "+", ShouldBeFalse)
			So(a.Params[0] == "LED1" && a.Params[1] == "Anode", ShouldBeFalse)
		}
	})
}
