// Package persist encodes and decodes an Experience to and from JSON,
// compacting episodes down to index pairs into the owning Model's canonical
// state and action registries rather than serializing full state dumps.
package persist

import (
	"encoding/json"
	"fmt"
	"os"

	"cyberxp/symbolic"
	"cyberxp/xp"
)

type transitionDTO struct {
	StartIndex  int `json:"start"`
	EndIndex    int `json:"end"`
	ActionIndex int `json:"action"`
}

type episodeDTO struct {
	Transitions      []transitionDTO `json:"transitions"`
	InitialIndex     int             `json:"initial"`
	LastIndex        int             `json:"last"`
	Result           xp.ActionResult `json:"result"`
	Performance      float64         `json:"performance"`
	RepetitionsCount int             `json:"repetitions"`
}

type stateActionValueDTO struct {
	StateIndex  int     `json:"state"`
	ActionIndex int     `json:"action"`
	Value       float64 `json:"value"`
}

type experienceDTO struct {
	ModelName          string                `json:"model"`
	RoleName           string                `json:"role"`
	GoalName           string                `json:"goal"`
	Episodes           []episodeDTO          `json:"episodes"`
	FailedTransitions  []transitionDTO       `json:"failedTransitions"`
	BestEpisodeIndex   int                   `json:"bestEpisode"`
	BestEpisodeIndexes []int                 `json:"bestEpisodes"`
	StateActionValues  []stateActionValueDTO `json:"stateActionValues"`
	Level              xp.ExperienceLevel    `json:"level"`
}

// Encode serializes exp to JSON, resolving every state and action it
// references through model into a stable integer index.
func Encode(model *symbolic.Model, exp *xp.Experience) ([]byte, error) {
	dto := experienceDTO{
		ModelName:        exp.ModelName,
		RoleName:         exp.RoleName,
		GoalName:         exp.GoalName,
		Level:            exp.Level,
		BestEpisodeIndex: -1,
	}

	episodeIndex := make(map[*xp.Episode]int, len(exp.Episodes))
	for i, ep := range exp.Episodes {
		episodeIndex[ep] = i
		edto, err := encodeEpisode(model, ep)
		if err != nil {
			return nil, fmt.Errorf("persist: encoding episode %d: %w", i, err)
		}
		dto.Episodes = append(dto.Episodes, edto)
	}

	if exp.BestEpisode != nil {
		if idx, ok := episodeIndex[exp.BestEpisode]; ok {
			dto.BestEpisodeIndex = idx
		}
	}
	for _, ep := range exp.BestEpisodes {
		if idx, ok := episodeIndex[ep]; ok {
			dto.BestEpisodeIndexes = append(dto.BestEpisodeIndexes, idx)
		}
	}

	for i, t := range exp.FailedTransitions {
		tdto, err := encodeTransition(model, t)
		if err != nil {
			return nil, fmt.Errorf("persist: encoding failed transition %d: %w", i, err)
		}
		dto.FailedTransitions = append(dto.FailedTransitions, tdto)
	}

	for ref, value := range exp.StateActionValues {
		si, ok := model.IndexOfState(ref.State)
		if !ok {
			continue
		}
		ai, ok := model.IndexOfAction(ref.Action)
		if !ok {
			continue
		}
		dto.StateActionValues = append(dto.StateActionValues, stateActionValueDTO{
			StateIndex:  si,
			ActionIndex: ai,
			Value:       value,
		})
	}

	return json.MarshalIndent(dto, "", "  ")
}

// Decode rebuilds an Experience from data, resolving every encoded index
// back through model. Q-table entries and episode initial/last states whose
// indices model does not currently recognize are dropped; an unrecognized
// index inside an episode transition or a failed transition makes Decode
// return an error.
func Decode(model *symbolic.Model, data []byte) (*xp.Experience, error) {
	var dto experienceDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("persist: decoding experience: %w", err)
	}

	exp := xp.NewExperience(dto.ModelName, dto.RoleName, dto.GoalName)
	exp.Level = dto.Level

	episodes := make([]*xp.Episode, 0, len(dto.Episodes))
	for i, edto := range dto.Episodes {
		ep, err := decodeEpisode(model, edto)
		if err != nil {
			return nil, fmt.Errorf("persist: decoding episode %d: %w", i, err)
		}
		episodes = append(episodes, ep)
	}
	exp.Episodes = episodes

	if dto.BestEpisodeIndex >= 0 && dto.BestEpisodeIndex < len(episodes) {
		exp.BestEpisode = episodes[dto.BestEpisodeIndex]
	}
	for _, idx := range dto.BestEpisodeIndexes {
		if idx >= 0 && idx < len(episodes) {
			exp.BestEpisodes = append(exp.BestEpisodes, episodes[idx])
		}
	}

	for i, tdto := range dto.FailedTransitions {
		t, err := decodeTransition(model, tdto)
		if err != nil {
			return nil, fmt.Errorf("persist: decoding failed transition %d: %w", i, err)
		}
		exp.FailedTransitions = append(exp.FailedTransitions, t)
	}

	for _, v := range dto.StateActionValues {
		s, ok := model.StateAt(v.StateIndex)
		if !ok {
			continue
		}
		a, ok := model.ActionAt(v.ActionIndex)
		if !ok {
			continue
		}
		exp.StateActionValues[xp.StateActionRef{State: s, Action: a}] = v.Value
	}

	return exp, nil
}

// SaveToFile encodes exp and writes it to path.
func SaveToFile(model *symbolic.Model, exp *xp.Experience, path string) error {
	data, err := Encode(model, exp)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("persist: writing %s: %w", path, err)
	}
	return nil
}

// LoadFromFile reads path and decodes an Experience from it.
func LoadFromFile(model *symbolic.Model, path string) (*xp.Experience, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persist: reading %s: %w", path, err)
	}
	return Decode(model, data)
}

func encodeTransition(model *symbolic.Model, t xp.Transition) (transitionDTO, error) {
	si, ok := model.IndexOfState(t.StartState)
	if !ok {
		return transitionDTO{}, fmt.Errorf("start state not canonical in model %q", model.Name())
	}
	ei, ok := model.IndexOfState(t.EndState)
	if !ok {
		return transitionDTO{}, fmt.Errorf("end state not canonical in model %q", model.Name())
	}
	ai, ok := model.IndexOfAction(t.ActionTaken)
	if !ok {
		return transitionDTO{}, fmt.Errorf("action not canonical in model %q", model.Name())
	}
	return transitionDTO{StartIndex: si, EndIndex: ei, ActionIndex: ai}, nil
}

func decodeTransition(model *symbolic.Model, tdto transitionDTO) (xp.Transition, error) {
	start, ok := model.StateAt(tdto.StartIndex)
	if !ok {
		return xp.Transition{}, fmt.Errorf("start index %d out of range", tdto.StartIndex)
	}
	end, ok := model.StateAt(tdto.EndIndex)
	if !ok {
		return xp.Transition{}, fmt.Errorf("end index %d out of range", tdto.EndIndex)
	}
	action, ok := model.ActionAt(tdto.ActionIndex)
	if !ok {
		return xp.Transition{}, fmt.Errorf("action index %d out of range", tdto.ActionIndex)
	}
	return xp.Transition{StartState: start, EndState: end, ActionTaken: action}, nil
}

func encodeEpisode(model *symbolic.Model, ep *xp.Episode) (episodeDTO, error) {
	edto := episodeDTO{
		Result:           ep.Result,
		Performance:      ep.Performance,
		RepetitionsCount: ep.RepetitionsCount,
	}
	for i, t := range ep.TransitionSequence {
		tdto, err := encodeTransition(model, t)
		if err != nil {
			return episodeDTO{}, fmt.Errorf("transition %d: %w", i, err)
		}
		edto.Transitions = append(edto.Transitions, tdto)
	}
	edto.InitialIndex, edto.LastIndex = -1, -1
	if ep.InitialState != nil {
		if idx, ok := model.IndexOfState(ep.InitialState); ok {
			edto.InitialIndex = idx
		}
	}
	if ep.LastState != nil {
		if idx, ok := model.IndexOfState(ep.LastState); ok {
			edto.LastIndex = idx
		}
	}
	return edto, nil
}

func decodeEpisode(model *symbolic.Model, edto episodeDTO) (*xp.Episode, error) {
	transitions := make([]xp.Transition, 0, len(edto.Transitions))
	for i, tdto := range edto.Transitions {
		t, err := decodeTransition(model, tdto)
		if err != nil {
			return nil, fmt.Errorf("transition %d: %w", i, err)
		}
		transitions = append(transitions, t)
	}
	ep := xp.NewEpisode(transitions, edto.Result, edto.Performance)
	ep.RepetitionsCount = edto.RepetitionsCount
	if edto.InitialIndex >= 0 {
		if s, ok := model.StateAt(edto.InitialIndex); ok {
			ep.InitialState = s
		}
	}
	if edto.LastIndex >= 0 {
		if s, ok := model.StateAt(edto.LastIndex); ok {
			ep.LastState = s
		}
	}
	return ep, nil
}
