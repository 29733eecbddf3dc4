package symbolic

import (
	"sort"
	"strings"

	"cyberxp/condition"
)

// EnvironmentState is one snapshot of the full environment: every entity's
// state, keyed by entity id, plus scalar, entity-less features.
type EnvironmentState struct {
	EntityStates map[string]*EntityState
	Features     map[string]string
}

// NewEnvironmentState returns an empty environment state.
func NewEnvironmentState() *EnvironmentState {
	return &EnvironmentState{
		EntityStates: map[string]*EntityState{},
		Features:     map[string]string{},
	}
}

// SetEntityState sets (or replaces) the state of the entity with the given id.
func (s *EnvironmentState) SetEntityState(entityId string, es *EntityState) {
	s.EntityStates[entityId] = es
}

// GetEntityState returns the state of the entity with the given id.
func (s *EnvironmentState) GetEntityState(entityId string) (*EntityState, bool) {
	es, ok := s.EntityStates[entityId]
	return es, ok
}

// SetFeature sets (or replaces) a scalar feature.
func (s *EnvironmentState) SetFeature(name, value string) {
	s.Features[name] = value
}

// GetFeature returns a feature's value, or "" if unset.
func (s *EnvironmentState) GetFeature(name string) string {
	return s.Features[name]
}

// Clone returns a deep copy of s, safe to mutate independently.
func (s *EnvironmentState) Clone() *EnvironmentState {
	clone := NewEnvironmentState()
	for id, es := range s.EntityStates {
		clone.EntityStates[id] = es.Clone()
	}
	for k, v := range s.Features {
		clone.Features[k] = v
	}
	return clone
}

// Key returns a deterministic string encoding of s, stable regardless of map
// iteration order, used both for equality and for canonical interning.
func (s *EnvironmentState) Key() string {
	var b strings.Builder

	entityIds := make([]string, 0, len(s.EntityStates))
	for id := range s.EntityStates {
		entityIds = append(entityIds, id)
	}
	sort.Strings(entityIds)
	for _, id := range entityIds {
		b.WriteString("@")
		b.WriteString(id)
		b.WriteByte(':')
		b.WriteString(s.EntityStates[id].Key())
	}

	featureKeys := make([]string, 0, len(s.Features))
	for k := range s.Features {
		featureKeys = append(featureKeys, k)
	}
	sort.Strings(featureKeys)
	for _, k := range featureKeys {
		b.WriteString("#")
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s.Features[k])
	}
	return b.String()
}

// Equal reports whether s and other encode the same environment state.
func (s *EnvironmentState) Equal(other *EnvironmentState) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	return s.Key() == other.Key()
}

// Entities projects EntityStates down to the shape condition.Condition
// evaluates against.
func (s *EnvironmentState) Entities() map[string]condition.Entity {
	out := make(map[string]condition.Entity, len(s.EntityStates))
	for id, es := range s.EntityStates {
		out[id] = condition.Entity{
			Properties:    es.PropertyValues,
			Relationships: es.RelationshipTargets(),
		}
	}
	return out
}

// ConditionEnvironment projects s down to a condition.Environment, the
// generic shape the predicate layer evaluates against.
func (s *EnvironmentState) ConditionEnvironment() condition.Environment {
	return condition.Environment{
		Features: s.Features,
		Entities: s.Entities(),
	}
}
