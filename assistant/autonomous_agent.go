package assistant

import (
	"context"
	"fmt"

	"cyberxp/xp"
)

// TrainMode is a bitmask selecting which parts of the training loop run.
type TrainMode int

const (
	// JustAct runs the action pipeline without invoking the agent's Learn
	// step, useful for evaluating a frozen policy. It reads better at call
	// sites than the zero value it names (Mode: JustAct vs Mode: 0).
	JustAct TrainMode = 0
	// Learn invokes the agent's Learn step after every transition.
	Learn TrainMode = 1
)

// ProgressFunc is called after every completed episode during Train.
type ProgressFunc func(episodeIndex int, result xp.ActionResult)

// AutonomousAgent drives an Assistant through many complete episodes
// without a human in the loop. Loop and deadlock detection live on the
// Assistant itself (they apply identically to arena-shared actors); this
// type only adds the hard per-episode step ceiling and the learn/just-act
// switch.
type AutonomousAgent struct {
	Assistant          *Assistant
	Mode               TrainMode
	MaxStepsPerEpisode int
}

// NewAutonomousAgent wraps assistant with the default mode (learning
// enabled) and a generous step ceiling.
func NewAutonomousAgent(a *Assistant) *AutonomousAgent {
	return &AutonomousAgent{
		Assistant:          a,
		Mode:               Learn,
		MaxStepsPerEpisode: 10000,
	}
}

// RunEpisode drives the assistant from a fresh initial state to a terminal
// result, or until MaxStepsPerEpisode is exceeded (reported as xp.Deadlock);
// the Assistant's own deadlock tracking ends any genuine loop well before
// that ceiling is reached.
func (aa *AutonomousAgent) RunEpisode() (xp.ActionResult, error) {
	if err := aa.Assistant.StartEpisode(); err != nil {
		return xp.Denied, err
	}
	aa.Assistant.SetLearn(aa.Mode&Learn != 0)

	for step := 0; step < aa.MaxStepsPerEpisode; step++ {
		result, err := aa.Assistant.TakeAction()
		if err != nil {
			return result, err
		}
		if result == xp.Denied {
			return xp.Deadlock, nil
		}
		if result.Terminal() {
			return result, nil
		}
	}
	return xp.Deadlock, nil
}

// Train runs up to maxEpisodes complete episodes, calling progress after
// each, and stops early if ctx is canceled.
func (aa *AutonomousAgent) Train(ctx context.Context, maxEpisodes int, progress ProgressFunc) error {
	for i := 0; i < maxEpisodes; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("assistant: training stopped: %w", ctx.Err())
		default:
		}
		result, err := aa.RunEpisode()
		if err != nil {
			return err
		}
		if progress != nil {
			progress(i, result)
		}
	}
	return nil
}
