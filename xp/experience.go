package xp

import "cyberxp/symbolic"

// ExperienceLevel marks how far an Experience has progressed, mirroring the
// source framework's trainee/assistant/trainer staging.
type ExperienceLevel int

const (
	LevelNone ExperienceLevel = iota
	LevelTrainee
	LevelAssistant
	LevelTrainer
)

func (l ExperienceLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelTrainee:
		return "trainee"
	case LevelAssistant:
		return "assistant"
	case LevelTrainer:
		return "trainer"
	default:
		return "unknown"
	}
}

// StateActionRef is a Q-table key: a canonical state paired with a
// canonical action, both interned by the owning model so the map key
// compares by pointer identity.
type StateActionRef struct {
	State  *symbolic.EnvironmentState
	Action *symbolic.Action
}

// Experience accumulates everything learned for one (model, role, goal)
// combination: every recorded episode, the failed-transition set, the best
// episode(s) seen, and the state-action value table.
type Experience struct {
	ModelName string
	RoleName  string
	GoalName  string

	Episodes          []*Episode
	FailedTransitions []Transition
	BestEpisode       *Episode
	BestEpisodes      []*Episode
	StateActionValues map[StateActionRef]float64
	Level             ExperienceLevel

	// IgnoreSystemFailure suppresses the cyber-system-level failure
	// override (the owning cyber-system's GetFailureCondition) so only
	// the role's own conditions classify a state. Off by default.
	IgnoreSystemFailure bool
}

// NewExperience creates an empty experience for the given model/role/goal.
func NewExperience(modelName, roleName, goalName string) *Experience {
	return &Experience{
		ModelName:         modelName,
		RoleName:          roleName,
		GoalName:          goalName,
		StateActionValues: map[StateActionRef]float64{},
		Level:             LevelNone,
	}
}

// GetStateActionValue returns the Q-value for ref, defaulting to 0.0 for an
// action never explicitly set.
func (e *Experience) GetStateActionValue(ref StateActionRef) float64 {
	return e.StateActionValues[ref]
}

// SetStateActionValue stores a Q-value for ref. A value of exactly 0.0 is
// only stored if ref already has an entry, since the zero value is already
// what GetStateActionValue returns for an absent entry — storing it
// unconditionally would bloat the table with no change in behavior.
func (e *Experience) SetStateActionValue(ref StateActionRef, value float64) {
	if value == 0.0 {
		if _, exists := e.StateActionValues[ref]; !exists {
			return
		}
	}
	e.StateActionValues[ref] = value
}

// CheckDuplicateEpisode reports whether an episode equal to ep has already
// been recorded.
func (e *Experience) CheckDuplicateEpisode(ep *Episode) (*Episode, bool) {
	for _, existing := range e.Episodes {
		if existing.Equal(ep) {
			return existing, true
		}
	}
	return nil, false
}

// StoreEpisode records ep, unless it duplicates an already-recorded episode
// (in which case the existing episode's RepetitionsCount is incremented and
// ep is discarded). Failed episodes additionally contribute their final
// transition to FailedTransitions, deduplicated the same way. Successful
// episodes update BestEpisode/BestEpisodes: a strictly better performance
// replaces the list outright, a tying performance is appended alongside it.
// Reports whether ep was newly stored.
func (e *Experience) StoreEpisode(ep *Episode) bool {
	if existing, dup := e.CheckDuplicateEpisode(ep); dup {
		existing.RepetitionsCount++
		return false
	}

	if ep.Result == Failed && len(ep.TransitionSequence) > 0 {
		last := ep.TransitionSequence[len(ep.TransitionSequence)-1]
		dup := false
		for _, t := range e.FailedTransitions {
			if t.Equal(last) {
				dup = true
				break
			}
		}
		if !dup {
			e.FailedTransitions = append(e.FailedTransitions, last)
		}
	}

	e.Episodes = append(e.Episodes, ep)

	if ep.Result == Succeeded {
		switch {
		case e.BestEpisode == nil || ep.Performance > e.BestEpisode.Performance:
			e.BestEpisodes = []*Episode{ep}
			e.BestEpisode = ep
		case ep.Performance == e.BestEpisode.Performance:
			e.BestEpisodes = append(e.BestEpisodes, ep)
		}
	}
	return true
}

// Clear resets this experience to its empty state. Callers that also hold
// the owning RoleInfo and Model should clear those too (RoleInfo.Clear,
// Model.ClearStoredStates), since an Experience does not itself hold
// references to either.
func (e *Experience) Clear() {
	e.Episodes = nil
	e.FailedTransitions = nil
	e.BestEpisode = nil
	e.BestEpisodes = nil
	e.StateActionValues = map[StateActionRef]float64{}
	e.Level = LevelNone
}
