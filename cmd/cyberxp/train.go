package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cyberxp"
	"cyberxp/arena"
	"cyberxp/assistant"
	"cyberxp/cybersystem"
	"cyberxp/rl"
	"cyberxp/server/views"
	"cyberxp/symbolic"
	"cyberxp/systems/gridworld"
	"cyberxp/xp"
)

// goalName is the single training goal every run pursues; none of the
// built-in systems defines more than one success condition per role, so a
// fixed goal name keeps the experience file layout predictable.
const goalName = "training"

// tally is the run-wide, worker-shared counter of terminal outcomes. Every
// worker goroutine increments it through atomic.Int64, so the dashboard's
// success/failure counts add up across the whole fleet rather than just
// whichever worker last published a snapshot.
type tally struct {
	successes atomic.Int64
	failures  atomic.Int64
}

func (t *tally) record(result xp.ActionResult) {
	switch result {
	case xp.Succeeded:
		t.successes.Add(1)
	case xp.Failed:
		t.failures.Add(1)
	}
}

// trainAll runs workers independent training workers against systemName,
// each with its own model, experience, and (for tic-tac-toe) its own pair of
// actors, coordinated only through ctx cancellation and the shared tally and
// snapshot channel. It mirrors the original framework's worker-pool trainer,
// generalized from one fixed track to any registered cyber-system.
//
// Only worker 0 publishes dashboard snapshots: once workers exceeds one,
// interleaving every worker's episodes into a single live view would just
// show noise, since each worker is an independent experiment with its own
// learned policy. Worker 0's progress stands in for the fleet; successes and
// failures reported in its snapshots are nonetheless the fleet-wide totals.
func trainAll(ctx context.Context, cc *cyberxp.Context, systemName string, workers int, rlCfg rl.RLConfig, snapshots chan<- views.Snapshot) error {
	var t tally
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			wlog := cc.Log.With("worker", w)
			modelName := fmt.Sprintf("%s-w%d", systemName, w)
			sys, err := cybersystem.Load(systemName)
			if err != nil {
				return fmt.Errorf("cyberxp: loading system %q: %w", systemName, err)
			}

			var publish chan<- views.Snapshot
			if w == 0 {
				publish = snapshots
			}
			if sys.Name() == "tictactoe" {
				return trainTicTacToe(gctx, wlog, sys, modelName, rlCfg, &t, publish)
			}
			return trainSingleActor(gctx, wlog, sys, modelName, rlCfg, &t, publish)
		})
	}
	return g.Wait()
}

// trainSingleActor drives one assistant through *episodes episodes of sys,
// assuming sys exposes exactly one role (true of gridworld and ledcircuit).
// When publish is non-nil, it also reports progress snapshots and, for
// gridworld, the live per-cell value grid.
func trainSingleActor(ctx context.Context, log *zap.SugaredLogger, sys cybersystem.System, modelName string, rlCfg rl.RLConfig, t *tally, publish chan<- views.Snapshot) error {
	model := symbolic.GetModel(modelName)
	if _, err := sys.Initialize(model); err != nil {
		return fmt.Errorf("cyberxp: initializing %s: %w", sys.Name(), err)
	}
	roles := sys.Roles()
	if len(roles) != 1 {
		return fmt.Errorf("cyberxp: %s does not expose exactly one role for single-actor training", sys.Name())
	}
	var role *xp.RoleInfo
	for _, r := range roles {
		role = r
	}

	agent := assistant.MakeAgent(rlCfg)
	a := assistant.New(sys, model, role, agent, log)
	a.SetCurrentGoal(goalName)
	loadExperience(log, a, suffixPath(*loadPath, modelName))

	grid, _ := sys.(*gridworld.System)

	aa := assistant.NewAutonomousAgent(a)
	trainErr := aa.Train(ctx, *episodes, func(i int, result xp.ActionResult) {
		t.record(result)
		if grid != nil && grid.Values() != nil && a.CurrentState() != nil {
			col, row := grid.PawnPosition(a.CurrentState())
			if best := bestValueAt(a); best != nil {
				grid.Values().Update(col, row, *best)
			}
		}
		if publish != nil && (i%10 == 0 || i == *episodes-1) {
			publishProgress(ctx, publish, a, grid, i+1, result, t, rlCfg.Epsilon)
		}
	})
	if saveErr := saveExperience(log, a, suffixPath(*persistPath, modelName)); saveErr != nil {
		return saveErr
	}
	return trainErr
}

// bestValueAt returns the highest state-action value the assistant's
// current experience has recorded for its current state, over every action
// available there, or nil if nothing has been learned yet.
func bestValueAt(a *assistant.Assistant) *float64 {
	exp := a.CurrentExperience()
	state := a.CurrentState()
	if exp == nil || state == nil {
		return nil
	}
	available := a.AvailableActions(state)
	if len(available) == 0 {
		return nil
	}
	best := exp.GetStateActionValue(xp.StateActionRef{State: state, Action: available[0]})
	for _, act := range available[1:] {
		if v := exp.GetStateActionValue(xp.StateActionRef{State: state, Action: act}); v > best {
			best = v
		}
	}
	return &best
}

// trainTicTacToe drives two assistants, one per player role, through
// *episodes complete games over a shared arena. Player1 moves first every
// episode, matching the board's X-goes-first rule, so the fixed calling
// order below always falls on the actor whose turn it actually is: a "no
// actions available" response is therefore always a finished game, never a
// skipped turn.
func trainTicTacToe(ctx context.Context, log *zap.SugaredLogger, sys cybersystem.System, modelName string, rlCfg rl.RLConfig, t *tally, publish chan<- views.Snapshot) error {
	model := symbolic.GetModel(modelName)
	if _, err := sys.Initialize(model); err != nil {
		return fmt.Errorf("cyberxp: initializing %s: %w", sys.Name(), err)
	}
	roles := sys.Roles()
	role1, ok := roles["player1"]
	if !ok {
		return fmt.Errorf("cyberxp: tictactoe has no player1 role")
	}
	role2, ok := roles["player2"]
	if !ok {
		return fmt.Errorf("cyberxp: tictactoe has no player2 role")
	}

	a1 := assistant.New(sys, model, role1, assistant.MakeAgent(rlCfg), log)
	a2 := assistant.New(sys, model, role2, assistant.MakeAgent(rlCfg), log)
	a1.SetCurrentGoal(goalName)
	a2.SetCurrentGoal(goalName)
	loadExperience(log, a1, suffixPath(suffixPath(*loadPath, modelName), "player1"))
	loadExperience(log, a2, suffixPath(suffixPath(*loadPath, modelName), "player2"))

	ring := arena.NewSharedArena()
	ring.AddActor(a1)
	ring.AddActor(a2)

	for i := 0; i < *episodes; i++ {
		select {
		case <-ctx.Done():
			return saveTicTacToeExperience(log, a1, a2, modelName)
		default:
		}

		if err := ring.NewEpisode(); err != nil {
			return err
		}
		result, err := runTicTacToeEpisode(a1, a2)
		if err != nil {
			return err
		}
		t.record(result)
		if publish != nil && (i%10 == 0 || i == *episodes-1) {
			publishProgress(ctx, publish, a1, nil, i+1, result, t, rlCfg.Epsilon)
		}
	}
	return saveTicTacToeExperience(log, a1, a2, modelName)
}

// runTicTacToeEpisode alternates TakeAction calls between a1 and a2,
// stopping as soon as either side's own move reaches a terminal result.
func runTicTacToeEpisode(a1, a2 *assistant.Assistant) (xp.ActionResult, error) {
	for {
		result, err := a1.TakeAction()
		if err != nil {
			return result, err
		}
		if result.Terminal() {
			return result, nil
		}

		result, err = a2.TakeAction()
		if err != nil {
			return result, err
		}
		if result.Terminal() {
			return result, nil
		}
	}
}

func saveTicTacToeExperience(log *zap.SugaredLogger, a1, a2 *assistant.Assistant, modelName string) error {
	base := suffixPath(*persistPath, modelName)
	if err := saveExperience(log, a1, suffixPath(base, "player1")); err != nil {
		return err
	}
	return saveExperience(log, a2, suffixPath(base, "player2"))
}

// publishProgress sends a snapshot of a's current goal for the dashboard to
// render, giving up if ctx is cancelled first. When grid is non-nil, its
// live value cache is appended to the system info text.
func publishProgress(
	ctx context.Context,
	snapshots chan<- views.Snapshot,
	a *assistant.Assistant,
	grid *gridworld.System,
	episodeCount int,
	result xp.ActionResult,
	t *tally,
	epsilon float64,
) {
	info := a.PrintHints()
	if grid != nil && grid.Values() != nil {
		info = info + "\nvalue grid:\n" + grid.Values().String()
	}
	snap := views.Snapshot{
		GoalName:     goalName,
		EpisodeCount: episodeCount,
		LastResult:   result,
		Successes:    int(t.successes.Load()),
		Failures:     int(t.failures.Load()),
		Epsilon:      epsilon,
		SystemInfo:   info,
	}
	if exp := a.CurrentExperience(); exp != nil && len(exp.Episodes) > 0 {
		last := exp.Episodes[len(exp.Episodes)-1]
		snap.StepCount = len(last.TransitionSequence)
		snap.LastReward = last.Performance
	}

	select {
	case snapshots <- snap:
	case <-ctx.Done():
	}
}

func loadExperience(log *zap.SugaredLogger, a *assistant.Assistant, path string) {
	if path == "" {
		return
	}
	if err := a.LoadExperience(path); err != nil {
		log.Warnw("could not load prior experience", "path", path, "error", err)
	}
}

func saveExperience(log *zap.SugaredLogger, a *assistant.Assistant, path string) error {
	if path == "" {
		return nil
	}
	if a.CurrentExperience() == nil {
		return nil
	}
	if err := a.SaveExperience(path); err != nil {
		return fmt.Errorf("cyberxp: saving experience to %s: %w", path, err)
	}
	log.Infow("saved learned experience", "path", path, "episodes", len(a.CurrentExperience().Episodes))
	return nil
}

// suffixPath inserts suffix before path's extension, e.g.
// suffixPath("xp.json", "player1") -> "xp.player1.json". An empty path
// passes through unchanged so callers can always call this unconditionally.
func suffixPath(path, suffix string) string {
	if path == "" {
		return ""
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "." + suffix + ext
}
