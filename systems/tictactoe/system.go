// Package tictactoe implements the tic-tac-toe cyber-system: two players
// alternately mark one of nine board cells, racing to complete a line.
// It is grounded on the original TicTacToeCybSys scenario's smart-action
// heuristics (force a winning move, then force blocking the opponent's)
// and its "can win" reward shaping, re-expressed over the purely functional
// cybersystem.System contract.
package tictactoe

import (
	"strconv"

	"cyberxp/condition"
	"cyberxp/cybersystem"
	"cyberxp/symbolic"
	"cyberxp/xp"
)

var _ cybersystem.System = (*System)(nil)

const (
	roleP1 = "player1"
	roleP2 = "player2"

	boardEntityId = "board"
	boardType     = "Board"
)

// System implements cybersystem.System for tic-tac-toe.
type System struct {
	roles map[string]*xp.RoleInfo
}

// New returns an uninitialized tic-tac-toe system.
func New() *System {
	return &System{}
}

func (*System) Name() string { return "tictactoe" }

func init() {
	cybersystem.Register("tictactoe", func() cybersystem.System { return New() })
}

func roleMark(roleId string) (byte, bool) {
	switch roleId {
	case roleP1:
		return markX, true
	case roleP2:
		return markO, true
	}
	return 0, false
}

func markToParam(mark byte) string {
	if mark == markX {
		return "1"
	}
	return "2"
}

func paramToMark(param string) byte {
	switch param {
	case "1":
		return markX
	case "2":
		return markO
	}
	return 0
}

func markToWinnerFeature(mark byte) string {
	if mark == markX {
		return "p1"
	}
	return "p2"
}

// Initialize registers the Board entity type and both player roles, and
// returns the empty-board initial state.
func (s *System) Initialize(model *symbolic.Model) (*symbolic.EnvironmentState, error) {
	model.SetEntityStateType(symbolic.NewEntityStateType(
		model.Name(), boardType, "",
		map[string]string{"state": emptyBoard},
		nil, nil,
	))

	s.roles = map[string]*xp.RoleInfo{
		roleP1: buildRole(roleP1, "p1", "p2", "canWin1"),
		roleP2: buildRole(roleP2, "p2", "p1", "canWin2"),
	}

	state := symbolic.NewEnvironmentState()
	state.SetEntityState(boardEntityId, symbolic.NewEntityState(boardType, map[string]string{"state": emptyBoard}))
	for k, v := range computeFeatures(emptyBoard) {
		state.SetFeature(k, v)
	}
	return state, nil
}

func buildRole(roleName, winFeature, loseFeature, canWinFeature string) *xp.RoleInfo {
	success := condition.Condition{}
	success.SetFeatureCondition(condition.NewFeatureCondition("winner", winFeature))

	failure := condition.Condition{}
	failure.SetFeatureCondition(condition.NewFeatureCondition("winner", loseFeature))

	deadlock := condition.Condition{}
	deadlock.SetFeatureCondition(condition.NewFeatureCondition("winner", "draw"))

	rewards := xp.StateRewardRules{
		ResultRewards: map[xp.ActionResult]float64{
			xp.InProgress: -1,
			xp.Succeeded:  1000,
			xp.Failed:     -1000,
			xp.Deadlock:   -10,
		},
		FeatureRewards: []xp.FeatureReward{
			{FeatureName: canWinFeature, Op: condition.GreaterOrEqual, Value: "1", Reward: 25},
		},
	}
	return xp.NewRoleInfo(roleName, success, failure, deadlock, rewards)
}

func (s *System) Roles() map[string]*xp.RoleInfo { return s.roles }

func boardState(state *symbolic.EnvironmentState) string {
	es, ok := state.GetEntityState(boardEntityId)
	if !ok {
		return emptyBoard
	}
	b := es.GetPropertyValue("state")
	if len(b) != 9 {
		return emptyBoard
	}
	return b
}

// ExecuteAction applies a "move" action: Params[0] is the 1-indexed cell,
// Params[1] identifies the acting mark ("1" for player1/X, "2" for
// player2/O). The move is rejected if the game already ended, if it is not
// that mark's turn, or if the cell is occupied.
func (*System) ExecuteAction(state *symbolic.EnvironmentState, action *symbolic.Action) (*symbolic.EnvironmentState, bool) {
	if action.TypeId != "move" || len(action.Params) != 2 {
		return nil, false
	}
	posOneIndexed, err := strconv.Atoi(action.Params[0])
	if err != nil {
		return nil, false
	}
	pos := posOneIndexed - 1
	if pos < 0 || pos > 8 {
		return nil, false
	}
	mark := paramToMark(action.Params[1])
	if mark == 0 {
		return nil, false
	}

	board := boardState(state)
	if winner(board) != 0 || isFull(board) {
		return nil, false
	}
	if currentTurn(board) != mark {
		return nil, false
	}
	if board[pos] != cellEmpty {
		return nil, false
	}

	next := place(board, pos, mark)
	successor := state.Clone()
	successor.SetEntityState(boardEntityId, symbolic.NewEntityState(boardType, map[string]string{"state": next}))
	for k, v := range computeFeatures(next) {
		successor.SetFeature(k, v)
	}
	return successor, true
}

func computeFeatures(board string) map[string]string {
	w := winner(board)
	features := map[string]string{
		"canWin1": strconv.Itoa(len(winningMoves(board, markX))),
		"canWin2": strconv.Itoa(len(winningMoves(board, markO))),
	}
	switch {
	case w != 0:
		features["winner"] = markToWinnerFeature(w)
		features["ended"] = "true"
	case isFull(board):
		features["winner"] = "draw"
		features["ended"] = "true"
	default:
		features["winner"] = "none"
		features["ended"] = "false"
	}
	if w == 0 && !isFull(board) {
		features["turn"] = markToWinnerFeature(currentTurn(board))
	}
	return features
}

// GetAvailableActions enumerates the legal moves for roleId from state. With
// smartSelection, a forced win is returned alone if one exists, then a
// forced block of the opponent's winning move, falling back to every empty
// cell only when neither applies.
func (*System) GetAvailableActions(roleId string, state *symbolic.EnvironmentState, smartSelection bool) []*symbolic.Action {
	mark, ok := roleMark(roleId)
	if !ok {
		return nil
	}
	board := boardState(state)
	if winner(board) != 0 || isFull(board) {
		return nil
	}
	if currentTurn(board) != mark {
		return nil
	}

	if smartSelection {
		if wins := winningMoves(board, mark); len(wins) > 0 {
			return actionsAt(wins, mark)
		}
		if blocks := winningMoves(board, opponent(mark)); len(blocks) > 0 {
			return actionsAt(blocks, mark)
		}
	}
	return actionsAt(emptyPositions(board), mark)
}

func actionsAt(positions []int, mark byte) []*symbolic.Action {
	actions := make([]*symbolic.Action, 0, len(positions))
	for _, pos := range positions {
		actions = append(actions, symbolic.NewAction("move", strconv.Itoa(pos+1), markToParam(mark)))
	}
	return actions
}

// SetConfiguration, GetConfiguration, ReadEntityConfiguration,
// WriteEntityConfiguration, ConfigureEntity and RemoveEntity are no-ops:
// tic-tac-toe's board is fixed and carries no external configuration.
func (*System) SetConfiguration(string) bool                          { return true }
func (*System) GetConfiguration() string                              { return "" }
func (*System) ReadEntityConfiguration(string) string                 { return "" }
func (*System) WriteEntityConfiguration(string, string) bool          { return false }
func (*System) ConfigureEntity(string, string, string) bool           { return false }
func (*System) RemoveEntity(string) bool                              { return false }

// GetSystemInfo renders the board. infoId "numbered" shows each empty cell's
// 1-indexed position instead of a blank, for a human picking a move; any
// other value (including "") renders the plain board.
func (*System) GetSystemInfo(state *symbolic.EnvironmentState, infoId string) string {
	return renderBoard(boardState(state), infoId == "numbered")
}

// GetFailureCondition is undefined: a loss for one player is a plain win for
// the other, already captured by each role's own failure condition, so
// tic-tac-toe has no system-wide failure distinct from that.
func (*System) GetFailureCondition() condition.Condition { return condition.Condition{} }
