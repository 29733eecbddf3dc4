// Package ledcircuit implements a simple DC LED circuit cyber-system: a
// configuration of power supplies, LEDs, resistors and switches, connected
// by an agent's "connect" and "switch" actions, with the resulting circuit's
// conductive paths re-derived after every action to classify each LED as lit
// up, burnt out, or left dark. It is grounded on the original LED-circuit
// test harness's component model, generalized from that harness's
// hardcoded entity ids to condition.ANY-based roles so it works over any
// configuration of entities, not just the one the harness hardcoded.
package ledcircuit

import (
	"sort"
	"strconv"
	"strings"

	"cyberxp/condition"
	"cyberxp/cybersystem"
	"cyberxp/symbolic"
	"cyberxp/xp"
)

const roleName = "Default"

// defaultConfig mirrors the original test harness's sample circuit: a
// battery driving an LED through a current-limiting resistor, with a second,
// too-small resistor and a switch available for the agent to wire in.
const defaultConfig = `PowerSupplyDC Battery 6000 50
LED LED1 Red
Resistor R1 2200 500
Resistor R2 50 100
Switch SW1 12000 40
`

// System implements cybersystem.System for the LED-circuit scenario. Its
// component list is read-only configuration; all wiring (relationships) and
// derived circuit state live in the environment state passed to
// ExecuteAction.
type System struct {
	specs map[string]componentSpec
	order []string
	roles map[string]*xp.RoleInfo
}

// New returns a system configured with the built-in default circuit. Call
// SetConfiguration before Initialize to use a different set of components.
func New() *System {
	s := &System{}
	s.SetConfiguration(defaultConfig)
	return s
}

func (*System) Name() string { return "ledcircuit" }

var _ cybersystem.System = (*System)(nil)

func init() {
	cybersystem.Register("ledcircuit", func() cybersystem.System { return New() })
}

// SetConfiguration parses config as one component per line (see circuit.go)
// and, on success, replaces this system's component list.
func (s *System) SetConfiguration(config string) bool {
	specs, order, err := parseConfig(config)
	if err != nil {
		return false
	}
	s.specs = specs
	s.order = order
	return true
}

func (s *System) GetConfiguration() string {
	if s.specs == nil {
		return ""
	}
	return formatConfig(s.specs, s.order)
}

func (s *System) ReadEntityConfiguration(entityId string) string {
	spec, ok := s.specs[entityId]
	if !ok {
		return ""
	}
	return spec.Kind + " " + strings.Join(spec.Params, " ")
}

func (*System) WriteEntityConfiguration(string, string) bool { return true }
func (*System) ConfigureEntity(string, string, string) bool  { return true }
func (*System) RemoveEntity(string) bool                     { return false }

// Initialize registers one entity state type per distinct component kind
// present, the single "Default" role, and returns the unconnected starting
// state: every component present with its default properties and no
// relationships.
func (s *System) Initialize(model *symbolic.Model) (*symbolic.EnvironmentState, error) {
	seenKinds := map[string]bool{}
	for _, id := range s.order {
		kind := s.specs[id].Kind
		if seenKinds[kind] {
			continue
		}
		seenKinds[kind] = true
		model.SetEntityStateType(symbolic.NewEntityStateType(
			model.Name(), kind, "",
			defaultProperties(kind, nil),
			nil,
			ports(kind),
		))
	}

	success := condition.Condition{}
	success.SetEntityCondition(condition.EntityCondition{
		EntityId:           condition.ANY,
		PropertyConditions: []condition.PropertyCondition{condition.NewPropertyCondition("lit up", "true")},
	})

	failure := condition.Condition{}
	failure.SetEntityCondition(condition.EntityCondition{
		EntityId:           condition.ANY,
		PropertyConditions: []condition.PropertyCondition{condition.NewPropertyCondition("burnt out", "true")},
	})
	shortCircuited := condition.Condition{}
	shortCircuited.SetFeatureCondition(condition.NewFeatureCondition("shortCircuit", "true"))
	failure.AddRelated(condition.Or, shortCircuited)

	// No general deadlock condition applies to this scenario; an empty
	// Condition never matches (see condition.Condition.Evaluate).
	deadlock := condition.Condition{}

	rewards := xp.StateRewardRules{
		ResultRewards: map[xp.ActionResult]float64{
			xp.InProgress: -1,
			xp.Succeeded:  5000,
			xp.Failed:     -1000,
			xp.Deadlock:   -500,
		},
		EntityConditionRewards: []xp.EntityConditionReward{
			{
				Condition: condition.EntityCondition{
					EntityId:           condition.ANY,
					PropertyConditions: []condition.PropertyCondition{condition.NewPropertyCondition("connected", "true")},
				},
				Reward: -10,
			},
		},
	}
	s.roles = map[string]*xp.RoleInfo{roleName: xp.NewRoleInfo(roleName, success, failure, deadlock, rewards)}

	state := symbolic.NewEnvironmentState()
	for _, id := range s.order {
		spec := s.specs[id]
		state.SetEntityState(id, symbolic.NewEntityState(spec.Kind, defaultProperties(spec.Kind, spec.Params)))
	}
	state.SetFeature("shortCircuit", "false")
	recomputeCircuit(state, s.specs)
	return state, nil
}

func (s *System) Roles() map[string]*xp.RoleInfo { return s.roles }

// ExecuteAction applies either a "connect" action (Params: entA, portA,
// entB, portB) binding two component ports together, or a "switch" action
// (Params: entityId, "0"|"1") setting a switch's position. Either way, the
// circuit's conductive paths are fully recomputed afterward.
func (s *System) ExecuteAction(state *symbolic.EnvironmentState, action *symbolic.Action) (*symbolic.EnvironmentState, bool) {
	switch action.TypeId {
	case "connect":
		return s.executeConnect(state, action.Params)
	case "switch":
		return s.executeSwitch(state, action.Params)
	default:
		return nil, false
	}
}

func (s *System) executeConnect(state *symbolic.EnvironmentState, params []string) (*symbolic.EnvironmentState, bool) {
	if len(params) != 4 {
		return nil, false
	}
	entA, portA, entB, portB := params[0], params[1], params[2], params[3]

	specA, okA := s.specs[entA]
	specB, okB := s.specs[entB]
	if !okA || !okB || !isValidPort(specA.Kind, portA) || !isValidPort(specB.Kind, portB) {
		return nil, false
	}
	esA, okA := state.GetEntityState(entA)
	esB, okB := state.GetEntityState(entB)
	if !okA || !okB {
		return nil, false
	}
	if existing, ok := esA.Relationships[portA]; ok && existing.TargetEntityId == entB && existing.TargetLinkId == portB {
		return nil, false
	}

	successor := state.Clone()
	successorA, _ := successor.GetEntityState(entA)
	successorB, _ := successor.GetEntityState(entB)
	successorA.SetRelationship(portA, entB, portB)
	successorB.SetRelationship(portB, entA, portA)

	recomputeCircuit(successor, s.specs)
	return successor, true
}

func (s *System) executeSwitch(state *symbolic.EnvironmentState, params []string) (*symbolic.EnvironmentState, bool) {
	if len(params) != 2 {
		return nil, false
	}
	entityId, position := params[0], params[1]
	if position != "0" && position != "1" {
		return nil, false
	}
	spec, ok := s.specs[entityId]
	if !ok || spec.Kind != kindSwitch {
		return nil, false
	}
	es, ok := state.GetEntityState(entityId)
	if !ok || es.GetPropertyValue("position") == position {
		return nil, false
	}

	successor := state.Clone()
	successorEs, _ := successor.GetEntityState(entityId)
	successorEs.SetPropertyValue("position", position)

	recomputeCircuit(successor, s.specs)
	return successor, true
}

// recomputeCircuit rebuilds the connection graph from state's relationships
// plus each component's internal conduction, then traces a path from every
// power supply's "+" to its "-" terminal, classifying any LED encountered as
// lit up (a safe resistor was also on the path) or burnt out (it wasn't),
// and flagging a direct, LED-less short circuit.
func recomputeCircuit(state *symbolic.EnvironmentState, specs map[string]componentSpec) {
	graph := buildGraph(state, specs)

	shortCircuit := false
	litUp := map[string]bool{}
	burntOut := map[string]bool{}

	for entityId, spec := range specs {
		if spec.Kind != kindPowerSupply {
			continue
		}
		path, found := findPath(graph, node(entityId, "+"), node(entityId, "-"))
		if !found {
			continue
		}

		var ledsOnPath []string
		safe := false
		for _, n := range path {
			pathEntity, _ := splitNode(n)
			pathSpec, ok := specs[pathEntity]
			if !ok {
				continue
			}
			switch pathSpec.Kind {
			case kindLED:
				ledsOnPath = append(ledsOnPath, pathEntity)
			case kindResistor:
				if isSafeResistor(pathSpec) {
					safe = true
				}
			}
		}

		if len(ledsOnPath) == 0 {
			shortCircuit = true
			continue
		}
		for _, led := range ledsOnPath {
			if safe {
				litUp[led] = true
			} else {
				burntOut[led] = true
			}
		}
	}

	for entityId, spec := range specs {
		es, ok := state.GetEntityState(entityId)
		if !ok {
			continue
		}
		switch spec.Kind {
		case kindLED:
			es.SetPropertyValue("lit up", strconv.FormatBool(litUp[entityId]))
			es.SetPropertyValue("burnt out", strconv.FormatBool(burntOut[entityId]))
		case kindResistor, kindSwitch:
			es.SetPropertyValue("connected", strconv.FormatBool(len(es.Relationships) > 0))
			if spec.Kind == kindSwitch {
				es.SetPropertyValue("connections", strconv.Itoa(len(es.Relationships)))
			}
		}
	}
	state.SetFeature("shortCircuit", strconv.FormatBool(shortCircuit))
}

// buildGraph turns state's explicit port-to-port relationships, plus every
// component's kind-specific internal conduction, into an undirected
// adjacency list over "entityId:port" nodes.
func buildGraph(state *symbolic.EnvironmentState, specs map[string]componentSpec) map[string][]string {
	graph := map[string][]string{}
	addEdge := func(a, b string) {
		graph[a] = append(graph[a], b)
		graph[b] = append(graph[b], a)
	}

	ids := make([]string, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, entityId := range ids {
		es, ok := state.GetEntityState(entityId)
		if !ok {
			continue
		}
		for linkId, target := range es.Relationships {
			addEdge(node(entityId, linkId), node(target.TargetEntityId, target.TargetLinkId))
		}

		spec := specs[entityId]
		switch spec.Kind {
		case kindResistor:
			addEdge(node(entityId, "Pin1"), node(entityId, "Pin2"))
		case kindLED:
			addEdge(node(entityId, "Anode"), node(entityId, "Cathode"))
		case kindSwitch:
			if es.GetPropertyValue("position") == "1" {
				addEdge(node(entityId, "In"), node(entityId, "Out1"))
			}
		}
	}
	return graph
}

// GetAvailableActions offers one "connect" action per unconnected port pair
// across distinct components, plus both "switch" positions for every
// switch, regardless of smartSelection (there is no meaningful heuristic
// narrowing for freeform wiring).
func (s *System) GetAvailableActions(roleId string, state *symbolic.EnvironmentState, smartSelection bool) []*symbolic.Action {
	if roleId != roleName {
		return nil
	}
	var actions []*symbolic.Action

	for i, entA := range s.order {
		for _, portA := range ports(s.specs[entA].Kind) {
			esA, ok := state.GetEntityState(entA)
			if ok {
				if _, taken := esA.Relationships[portA]; taken {
					continue
				}
			}
			for _, entB := range s.order[i+1:] {
				for _, portB := range ports(s.specs[entB].Kind) {
					esB, ok := state.GetEntityState(entB)
					if ok {
						if _, taken := esB.Relationships[portB]; taken {
							continue
						}
					}
					actions = append(actions, symbolic.NewAction("connect", entA, portA, entB, portB))
				}
			}
		}
	}

	for _, id := range s.order {
		if s.specs[id].Kind != kindSwitch {
			continue
		}
		es, ok := state.GetEntityState(id)
		current := ""
		if ok {
			current = es.GetPropertyValue("position")
		}
		for _, pos := range []string{"0", "1"} {
			if pos != current {
				actions = append(actions, symbolic.NewAction("switch", id, pos))
			}
		}
	}
	return actions
}

// GetSystemInfo renders the component list with each entity's live
// properties and wiring.
func (s *System) GetSystemInfo(state *symbolic.EnvironmentState, infoId string) string {
	if infoId != "" {
		return ""
	}
	var b strings.Builder
	for _, id := range s.order {
		es, ok := state.GetEntityState(id)
		if !ok {
			continue
		}
		b.WriteString(id)
		b.WriteString(" (")
		b.WriteString(es.TypeName)
		b.WriteString("):")

		propKeys := make([]string, 0, len(es.PropertyValues))
		for k := range es.PropertyValues {
			propKeys = append(propKeys, k)
		}
		sort.Strings(propKeys)
		for _, k := range propKeys {
			b.WriteString(" ")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(es.PropertyValues[k])
		}

		linkKeys := make([]string, 0, len(es.Relationships))
		for k := range es.Relationships {
			linkKeys = append(linkKeys, k)
		}
		sort.Strings(linkKeys)
		for _, k := range linkKeys {
			rel := es.Relationships[k]
			b.WriteString(" ")
			b.WriteString(k)
			b.WriteString("->")
			b.WriteString(rel.TargetEntityId)
			b.WriteString(":")
			b.WriteString(rel.TargetLinkId)
		}
		b.WriteString("\n")
	}
	fmt := "shortCircuit=" + state.GetFeature("shortCircuit") + "\n"
	b.WriteString(fmt)
	return b.String()
}

// GetFailureCondition is undefined: a short circuit is already folded into
// the role's own failure condition, so led-circuit has no system-wide
// failure distinct from that.
func (*System) GetFailureCondition() condition.Condition { return condition.Condition{} }
