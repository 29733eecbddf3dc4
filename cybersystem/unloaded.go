package cybersystem

import (
	"cyberxp/condition"
	"cyberxp/symbolic"
	"cyberxp/xp"
)

// Unloaded is a trivial System that enumerates no actions, accepts no
// actions, and reports nothing. It models the "no cyber-system loaded yet"
// state callers must be able to hold a reference to before Loader.Load
// succeeds, without special-casing a nil System throughout the codebase.
type Unloaded struct{}

func (Unloaded) Name() string { return "unloaded" }
func (Unloaded) Initialize(*symbolic.Model) (*symbolic.EnvironmentState, error) {
	return symbolic.NewEnvironmentState(), nil
}
func (Unloaded) Roles() map[string]*xp.RoleInfo { return nil }
func (Unloaded) GetFailureCondition() condition.Condition { return condition.Condition{} }
func (Unloaded) ExecuteAction(*symbolic.EnvironmentState, *symbolic.Action) (*symbolic.EnvironmentState, bool) {
	return nil, false
}
func (Unloaded) GetAvailableActions(string, *symbolic.EnvironmentState, bool) []*symbolic.Action {
	return nil
}
func (Unloaded) SetConfiguration(string) bool                    { return false }
func (Unloaded) GetConfiguration() string                        { return "" }
func (Unloaded) ReadEntityConfiguration(string) string            { return "" }
func (Unloaded) WriteEntityConfiguration(string, string) bool     { return false }
func (Unloaded) ConfigureEntity(string, string, string) bool      { return false }
func (Unloaded) RemoveEntity(string) bool                         { return false }
func (Unloaded) GetSystemInfo(*symbolic.EnvironmentState, string) string { return "" }

var _ System = Unloaded{}
