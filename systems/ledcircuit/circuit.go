package ledcircuit

import (
	"fmt"
	"strconv"
	"strings"
)

// Component kinds recognized in a circuit configuration.
const (
	kindPowerSupply = "PowerSupplyDC"
	kindLED         = "LED"
	kindResistor    = "Resistor"
	kindSwitch      = "Switch"
)

// safeResistanceOhms is the minimum resistance this circuit treats as
// current-limiting enough to protect an LED; below it, current through an
// LED is treated as burning it out.
const safeResistanceOhms = 100

type componentSpec struct {
	Kind   string
	Params []string
}

// ports lists the named connection points of a component kind.
func ports(kind string) []string {
	switch kind {
	case kindPowerSupply:
		return []string{"+", "-"}
	case kindLED:
		return []string{"Anode", "Cathode"}
	case kindResistor:
		return []string{"Pin1", "Pin2"}
	case kindSwitch:
		return []string{"In", "Out1"}
	}
	return nil
}

func isValidPort(kind, port string) bool {
	for _, p := range ports(kind) {
		if p == port {
			return true
		}
	}
	return false
}

func defaultProperties(kind string, params []string) map[string]string {
	param := func(i int) string {
		if i < len(params) {
			return params[i]
		}
		return ""
	}
	switch kind {
	case kindPowerSupply:
		return map[string]string{"voltage": param(0), "internalResistance": param(1)}
	case kindLED:
		return map[string]string{"color": param(0), "lit up": "false", "burnt out": "false"}
	case kindResistor:
		return map[string]string{"resistance": param(0), "tolerance": param(1), "connected": "false"}
	case kindSwitch:
		return map[string]string{
			"voltageRating": param(0), "currentRating": param(1),
			"position": "0", "connected": "false", "connections": "0",
		}
	}
	return map[string]string{}
}

// parseConfig parses one component per line: "<Kind> <Id> <params...>",
// e.g. "Resistor R1 2200 500". Returns components in declaration order.
func parseConfig(config string) (map[string]componentSpec, []string, error) {
	specs := map[string]componentSpec{}
	var order []string
	for _, line := range strings.Split(config, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("ledcircuit: malformed line %q", line)
		}
		kind, id := fields[0], fields[1]
		if ports(kind) == nil {
			return nil, nil, fmt.Errorf("ledcircuit: unknown component kind %q", kind)
		}
		if _, exists := specs[id]; exists {
			return nil, nil, fmt.Errorf("ledcircuit: duplicate component id %q", id)
		}
		specs[id] = componentSpec{Kind: kind, Params: fields[2:]}
		order = append(order, id)
	}
	if len(order) == 0 {
		return nil, nil, fmt.Errorf("ledcircuit: configuration defines no components")
	}
	return specs, order, nil
}

func formatConfig(specs map[string]componentSpec, order []string) string {
	var b strings.Builder
	for _, id := range order {
		spec := specs[id]
		b.WriteString(spec.Kind)
		b.WriteByte(' ')
		b.WriteString(id)
		for _, p := range spec.Params {
			b.WriteByte(' ')
			b.WriteString(p)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// node identifies one connection point as "entityId:port".
func node(entityId, port string) string {
	return entityId + ":" + port
}

func splitNode(n string) (entityId, port string) {
	i := strings.LastIndex(n, ":")
	if i < 0 {
		return n, ""
	}
	return n[:i], n[i+1:]
}

// findPath runs a breadth-first search over graph from start to end,
// returning the sequence of nodes visited if a path exists.
func findPath(graph map[string][]string, start, end string) ([]string, bool) {
	if start == end {
		return []string{start}, true
	}
	visited := map[string]bool{start: true}
	parent := map[string]string{}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range graph[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = cur
			if next == end {
				path := []string{end}
				for at := end; at != start; {
					at = parent[at]
					path = append([]string{at}, path...)
				}
				return path, true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

func isSafeResistor(spec componentSpec) bool {
	if len(spec.Params) == 0 {
		return false
	}
	ohms, err := strconv.Atoi(spec.Params[0])
	if err != nil {
		return false
	}
	return ohms >= safeResistanceOhms
}
