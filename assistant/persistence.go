package assistant

import (
	"fmt"

	"cyberxp/persist"
)

// SaveExperience writes this assistant's current-goal Experience to path as
// JSON, via the persist package's Model-keyed encoding.
func (a *Assistant) SaveExperience(path string) error {
	exp := a.CurrentExperience()
	if exp == nil {
		return fmt.Errorf("assistant: no experience for goal %q", a.GoalName)
	}
	return persist.SaveToFile(a.Model, exp, path)
}

// LoadExperience replaces this assistant's current-goal Experience with the
// one persisted at path, decoded against this assistant's Model.
func (a *Assistant) LoadExperience(path string) error {
	if a.GoalName == "" {
		return fmt.Errorf("assistant: no current goal set")
	}
	exp, err := persist.LoadFromFile(a.Model, path)
	if err != nil {
		return err
	}
	a.Experiences[a.GoalName] = exp
	return nil
}
