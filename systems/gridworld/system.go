// Package gridworld implements the bonus-cell grid-world cyber-system: a
// pawn moves between adjacent free cells of a fixed rectangular map, racing
// to reach the end cell while avoiding traps and running out of unexplored
// neighbors. It is grounded on the original Gridworld cyber-system's
// ExecuteAction/GetAvailableActions/SynchronizeState logic, re-expressed
// over the purely functional cybersystem.System contract: the grid layout
// is the system's static, read-only configuration, while the pawn's
// position, bonus count and visit history all live in the environment
// state passed to ExecuteAction.
package gridworld

import (
	"fmt"
	"strconv"
	"strings"

	"cyberxp/condition"
	"cyberxp/cybersystem"
	"cyberxp/symbolic"
	"cyberxp/xp"
)

const (
	roleName       = "Pawn"
	pawnEntityId   = "pawn"
	pawnEntityType = "Position"
)

// System implements cybersystem.System for the grid-world scenario. Once
// configured, its grid is read-only, so a single *System may safely back
// any number of concurrent assistants/episodes.
type System struct {
	grid               *grid
	startCol, startRow int
	roles              map[string]*xp.RoleInfo
	values             *ValueGrid
}

// New returns a grid-world system configured with the built-in debug track.
// Call SetConfiguration before Initialize to use a different map.
func New() *System {
	s := &System{}
	s.SetConfiguration(debugTrack)
	return s
}

func (*System) Name() string { return "gridworld" }

var _ cybersystem.System = (*System)(nil)

func init() {
	cybersystem.Register("gridworld", func() cybersystem.System { return New() })
}

// SetConfiguration parses config as a grid-world map (see grid.go) and, on
// success, replaces this system's layout.
func (s *System) SetConfiguration(config string) bool {
	if config == "" {
		return false
	}
	g, col, row, err := parseGrid(config)
	if err != nil {
		return false
	}
	s.grid = g
	s.startCol, s.startRow = col, row
	return true
}

// GetConfiguration returns the plain-text map this system was configured
// with.
func (s *System) GetConfiguration() string {
	if s.grid == nil {
		return ""
	}
	return s.grid.String()
}

func (*System) ReadEntityConfiguration(string) string        { return "" }
func (*System) WriteEntityConfiguration(string, string) bool { return true }
func (*System) ConfigureEntity(string, string, string) bool  { return true }
func (*System) RemoveEntity(string) bool                     { return false }

// Initialize registers the pawn entity type and the single "Pawn" role,
// and returns the state with the pawn at the grid's start cell.
func (s *System) Initialize(model *symbolic.Model) (*symbolic.EnvironmentState, error) {
	if s.grid == nil {
		return nil, fmt.Errorf("gridworld: not configured")
	}

	model.SetEntityStateType(symbolic.NewEntityStateType(
		model.Name(), pawnEntityType, "",
		map[string]string{"column": "0", "row": "0", "state": "free", "unexplored": ""},
		map[string][]string{"state": {"free", "trap", "end"}},
		nil,
	))

	success := condition.Condition{}
	success.SetEntityCondition(condition.EntityCondition{
		EntityId:           pawnEntityId,
		PropertyConditions: []condition.PropertyCondition{condition.NewPropertyCondition("state", "end")},
	})
	failure := condition.Condition{}
	failure.SetEntityCondition(condition.EntityCondition{
		EntityId:           pawnEntityId,
		PropertyConditions: []condition.PropertyCondition{condition.NewPropertyCondition("state", "trap")},
	})
	deadlock := condition.Condition{}
	deadlock.SetEntityCondition(condition.EntityCondition{
		EntityId:           pawnEntityId,
		PropertyConditions: []condition.PropertyCondition{condition.NewPropertyCondition("unexplored", "0")},
	})
	rewards := xp.StateRewardRules{
		ResultRewards: map[xp.ActionResult]float64{
			xp.InProgress: -1,
			xp.Succeeded:  100,
			xp.Failed:     -100,
			xp.Deadlock:   -10,
		},
		FeatureRewards: []xp.FeatureReward{
			{FeatureName: "bonus", Op: condition.Different, Value: "0", Reward: 25},
		},
	}
	s.roles = map[string]*xp.RoleInfo{roleName: xp.NewRoleInfo(roleName, success, failure, deadlock, rewards)}

	visited := newVisitedBitmap(s.grid)
	visited = markVisited(visited, s.grid, s.startCol, s.startRow)
	s.values = NewValueGrid(s.grid.Columns, s.grid.Rows)

	state := symbolic.NewEnvironmentState()
	state.SetFeature("bonus", "0")
	state.SetFeature("visited", visited)
	state.SetEntityState(pawnEntityId, s.pawnEntityState(s.startCol, s.startRow, visited))
	return state, nil
}

func (s *System) Roles() map[string]*xp.RoleInfo { return s.roles }

// Values returns the live per-cell value cache built by Initialize. It is
// nil until Initialize has run.
func (s *System) Values() *ValueGrid { return s.values }

// PawnPosition exposes the pawn's (column, row) encoded in state, so a
// training loop can record a value-function estimate against the cell the
// pawn currently occupies.
func (s *System) PawnPosition(state *symbolic.EnvironmentState) (col, row int) {
	return pawnPosition(state)
}

func newVisitedBitmap(g *grid) string {
	return strings.Repeat("0", g.Columns*g.Rows)
}

func markVisited(visited string, g *grid, col, row int) string {
	idx := row*g.Columns + col
	b := []byte(visited)
	b[idx] = '1'
	return string(b)
}

func isVisited(visited string, g *grid, col, row int) bool {
	return visited[row*g.Columns+col] == '1'
}

func stateLabel(cell byte) string {
	switch cell {
	case cellEnd:
		return "end"
	case cellTrap:
		return "trap"
	default:
		return "free"
	}
}

// isUnexplored reports whether (col, row) is a neighbor worth still
// visiting: in bounds, not the pawn's own cell, not a wall or the start
// cell, and not already visited.
func isUnexplored(g *grid, visited string, pawnCol, pawnRow, col, row int) bool {
	if col == pawnCol && row == pawnRow {
		return false
	}
	cell := g.GetCell(col, row)
	if cell == cellWall || cell == cellStart {
		return false
	}
	return !isVisited(visited, g, col, row)
}

func countUnexplored(g *grid, visited string, col, row int) int {
	count := 0
	if row > 0 && isUnexplored(g, visited, col, row, col, row-1) {
		count++
	}
	if row < g.Rows-1 && isUnexplored(g, visited, col, row, col, row+1) {
		count++
	}
	if col > 0 && isUnexplored(g, visited, col, row, col-1, row) {
		count++
	}
	if col < g.Columns-1 && isUnexplored(g, visited, col, row, col+1, row) {
		count++
	}
	return count
}

func (s *System) pawnEntityState(col, row int, visited string) *symbolic.EntityState {
	es := symbolic.NewEntityState(pawnEntityType, map[string]string{
		"column":     strconv.Itoa(col),
		"row":        strconv.Itoa(row),
		"state":      stateLabel(s.grid.GetCell(col, row)),
		"unexplored": strconv.Itoa(countUnexplored(s.grid, visited, col, row)),
	})
	return es
}

func pawnPosition(state *symbolic.EnvironmentState) (col, row int) {
	es, ok := state.GetEntityState(pawnEntityId)
	if !ok {
		return 0, 0
	}
	col, _ = strconv.Atoi(es.GetPropertyValue("column"))
	row, _ = strconv.Atoi(es.GetPropertyValue("row"))
	return col, row
}

type direction struct {
	name       string
	dCol, dRow int
}

var directions = []direction{
	{"right", 1, 0},
	{"left", -1, 0},
	{"down", 0, 1},
	{"up", 0, -1},
}

func (s *System) canMove(col, row int, d direction) bool {
	nc, nr := col+d.dCol, row+d.dRow
	if !s.grid.InBounds(nc, nr) {
		return false
	}
	return s.grid.GetCell(nc, nr) != cellWall
}

// ExecuteAction applies a movement action ("right"/"left"/"down"/"up") to
// the pawn, rejecting it if it would cross a wall or the grid boundary.
func (s *System) ExecuteAction(state *symbolic.EnvironmentState, action *symbolic.Action) (*symbolic.EnvironmentState, bool) {
	var d *direction
	for i := range directions {
		if directions[i].name == action.TypeId {
			d = &directions[i]
			break
		}
	}
	if d == nil {
		return nil, false
	}

	col, row := pawnPosition(state)
	if !s.canMove(col, row, *d) {
		return nil, false
	}
	nc, nr := col+d.dCol, row+d.dRow

	visited := state.GetFeature("visited")
	if visited == "" {
		visited = newVisitedBitmap(s.grid)
	}
	visited = markVisited(visited, s.grid, nc, nr)

	bonus, _ := strconv.Atoi(state.GetFeature("bonus"))
	if s.grid.GetCell(nc, nr) == cellBonus {
		bonus++
	}

	successor := state.Clone()
	successor.SetFeature("visited", visited)
	successor.SetFeature("bonus", strconv.Itoa(bonus))
	successor.SetEntityState(pawnEntityId, s.pawnEntityState(nc, nr, visited))
	return successor, true
}

// GetAvailableActions enumerates the directions the pawn may move from
// state. With smartSelection, a direction leading back into an already
// visited cell is excluded, so a trained policy does not simply backtrack.
func (s *System) GetAvailableActions(roleId string, state *symbolic.EnvironmentState, smartSelection bool) []*symbolic.Action {
	if roleId != roleName {
		return nil
	}
	col, row := pawnPosition(state)
	visited := state.GetFeature("visited")

	var actions []*symbolic.Action
	for _, d := range directions {
		if !s.canMove(col, row, d) {
			continue
		}
		if smartSelection && isVisited(visited, s.grid, col+d.dCol, row+d.dRow) {
			continue
		}
		actions = append(actions, symbolic.NewAction(d.name))
	}
	return actions
}

// GetSystemInfo renders the grid with the pawn's current position, its
// explored trail, and a status line, matching the original console view.
func (s *System) GetSystemInfo(state *symbolic.EnvironmentState, infoId string) string {
	if infoId != "" {
		return ""
	}
	col, row := pawnPosition(state)
	visited := state.GetFeature("visited")

	var b strings.Builder
	b.WriteByte(' ')
	b.WriteString(strings.Repeat("_", s.grid.Columns))
	b.WriteString(" \n")

	for r := 0; r < s.grid.Rows; r++ {
		b.WriteByte('|')
		for c := 0; c < s.grid.Columns; c++ {
			switch {
			case r == row && c == col:
				b.WriteByte('*')
			case isVisited(visited, s.grid, c, r):
				switch s.grid.GetCell(c, r) {
				case cellStart:
					b.WriteByte(':')
				case cellBonus:
					b.WriteByte(';')
				default:
					b.WriteByte('.')
				}
			default:
				b.WriteByte(s.grid.GetCell(c, r))
			}
		}
		b.WriteString("|\n")
	}
	b.WriteByte('\'')
	b.WriteString(strings.Repeat("-", s.grid.Columns))
	b.WriteString("'\n")

	unexplored := countUnexplored(s.grid, visited, col, row)
	dirWord := "directions"
	if unexplored == 1 {
		dirWord = "direction"
	}
	fmt.Fprintf(&b, "(%d,%d) = '%c' %d %s bonus=%s\n",
		col, row, s.grid.GetCell(col, row), unexplored, dirWord, state.GetFeature("bonus"))
	return b.String()
}

// GetFailureCondition is undefined: the pawn's trap cell is captured by the
// Pawn role's own failure condition and running out of unexplored neighbors
// by its deadlock condition, so grid-world has no system-wide failure
// distinct from those.
func (*System) GetFailureCondition() condition.Condition { return condition.Condition{} }
