package symbolic

import (
	"sort"
	"strings"
)

// RelationshipTarget is the entity and link an entity's own link is bound to.
type RelationshipTarget struct {
	TargetEntityId string
	TargetLinkId   string
}

// EntityState is a concrete observation of one entity: its type, its
// property values, and the relationships bound to its links.
type EntityState struct {
	TypeName       string
	PropertyValues map[string]string
	Relationships  map[string]RelationshipTarget
}

// NewEntityState creates an EntityState of the given type, seeded with a
// copy of defaults so later mutation never perturbs the type's defaults.
func NewEntityState(typeName string, defaults map[string]string) *EntityState {
	values := make(map[string]string, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}
	return &EntityState{
		TypeName:       typeName,
		PropertyValues: values,
		Relationships:  map[string]RelationshipTarget{},
	}
}

// SetPropertyValue sets a property, overwriting any prior value.
func (es *EntityState) SetPropertyValue(name, value string) {
	es.PropertyValues[name] = value
}

// GetPropertyValue returns a property's value, or "" if unset.
func (es *EntityState) GetPropertyValue(name string) string {
	return es.PropertyValues[name]
}

// SetRelationship binds linkId to a target entity and (optionally) one of
// its links.
func (es *EntityState) SetRelationship(linkId, targetEntityId, targetLinkId string) {
	es.Relationships[linkId] = RelationshipTarget{TargetEntityId: targetEntityId, TargetLinkId: targetLinkId}
}

// RelationshipTargets projects Relationships down to a plain link-id ->
// target-entity-id map, the shape condition.RelationshipCondition evaluates.
func (es *EntityState) RelationshipTargets() map[string]string {
	out := make(map[string]string, len(es.Relationships))
	for link, target := range es.Relationships {
		out[link] = target.TargetEntityId
	}
	return out
}

// Clone returns a deep copy of es.
func (es *EntityState) Clone() *EntityState {
	clone := &EntityState{
		TypeName:       es.TypeName,
		PropertyValues: make(map[string]string, len(es.PropertyValues)),
		Relationships:  make(map[string]RelationshipTarget, len(es.Relationships)),
	}
	for k, v := range es.PropertyValues {
		clone.PropertyValues[k] = v
	}
	for k, v := range es.Relationships {
		clone.Relationships[k] = v
	}
	return clone
}

// Key returns a deterministic string encoding of es, stable regardless of
// map iteration order, used both for equality and for canonical interning.
func (es *EntityState) Key() string {
	var b strings.Builder
	b.WriteString(es.TypeName)

	propKeys := make([]string, 0, len(es.PropertyValues))
	for k := range es.PropertyValues {
		propKeys = append(propKeys, k)
	}
	sort.Strings(propKeys)
	for _, k := range propKeys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(es.PropertyValues[k])
	}

	relKeys := make([]string, 0, len(es.Relationships))
	for k := range es.Relationships {
		relKeys = append(relKeys, k)
	}
	sort.Strings(relKeys)
	for _, k := range relKeys {
		rel := es.Relationships[k]
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteString("->")
		b.WriteString(rel.TargetEntityId)
		b.WriteByte(':')
		b.WriteString(rel.TargetLinkId)
	}
	return b.String()
}

// Equal reports whether es and other encode the same state.
func (es *EntityState) Equal(other *EntityState) bool {
	if es == other {
		return true
	}
	if es == nil || other == nil {
		return false
	}
	return es.Key() == other.Key()
}
